package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Zila-itc/vide-code-rules/internal/rules/store"
)

func newBackupsCommand(app *App, stdout io.Writer) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List switch backups for a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := app.Switcher.ListBackups(dir)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Fprintf(stdout, "No backups found in %s\n", dir)
				return nil
			}
			for _, backup := range backups {
				fmt.Fprintf(stdout, "%s  %s\n", backup.Name, backup.Timestamp.Format("2006-01-02 15:04:05 UTC"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Target project directory")
	cmd.AddCommand(newPruneBackupsCommand(app))
	return cmd
}

func newPruneBackupsCommand(app *App) *cobra.Command {
	var dir string
	var olderThan string
	var force bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old switch backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			duration, err := ParseRetentionInterval(olderThan)
			if err != nil {
				return err
			}

			if !force {
				confirm, err := app.Prompter.Confirm(fmt.Sprintf("Delete backups older than %s?", olderThan), false)
				if err != nil {
					return err
				}
				if !confirm {
					app.Notifier.Successf("Prune cancelled.")
					return nil
				}
			}

			removed, err := app.Switcher.PruneBackups(dir, duration)
			if err != nil {
				return err
			}
			app.Notifier.Successf("Removed %d backup(s).", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Target project directory")
	cmd.Flags().StringVar(&olderThan, "older-than", "30d", "Age threshold (e.g. 30d, 12h)")
	cmd.Flags().BoolVar(&force, "force", false, "Do not prompt for confirmation")
	return cmd
}

func newRestoreCommand(app *App) *cobra.Command {
	var dir string
	var force bool

	cmd := &cobra.Command{
		Use:   "restore [backup-name]",
		Short: "Re-apply a switch backup to a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				backups, err := app.Switcher.ListBackups(dir)
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					return fmt.Errorf("no backups found in %s", dir)
				}
				items := make([]string, 0, len(backups))
				for _, backup := range backups {
					items = append(items, backup.Name)
				}
				_, selected, err := app.Prompter.Select("Select backup to restore", items, "")
				if err != nil {
					return err
				}
				name = selected
			}

			if !force {
				confirm, err := app.Prompter.Confirm(
					fmt.Sprintf("Replace the AI configuration in %s with backup %s?", dir, name), false)
				if err != nil {
					return err
				}
				if !confirm {
					app.Notifier.Successf("Restore cancelled.")
					return nil
				}
			}

			if err := app.Switcher.Restore(dir, name); err != nil {
				return err
			}
			app.Notifier.Successf("Restored backup %s into %s", name, dir)
			app.refresh()
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Target project directory")
	cmd.Flags().BoolVar(&force, "force", false, "Do not prompt for confirmation")
	return cmd
}

func newExportCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export the profile store to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat := store.FormatForPath(args[0])
			if format != "" {
				switch format {
				case string(store.FormatJSON):
					outFormat = store.FormatJSON
				case string(store.FormatYAML):
					outFormat = store.FormatYAML
				default:
					return fmt.Errorf("unsupported format %q (json or yaml)", format)
				}
			}
			if err := app.Store.Export(args[0], outFormat); err != nil {
				return err
			}
			app.Notifier.Successf("Exported profiles to %s", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Export format: json or yaml (default: from extension)")
	return cmd
}

func newImportCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the profile store with an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				confirm, err := app.Prompter.Confirm("Importing replaces all stored profiles. Continue?", false)
				if err != nil {
					return err
				}
				if !confirm {
					app.Notifier.Successf("Import cancelled.")
					return nil
				}
			}
			if err := app.Store.Import(args[0]); err != nil {
				return err
			}
			app.Notifier.Successf("Imported profiles from %s", args[0])
			app.refresh()
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Do not prompt for confirmation")
	return cmd
}
