package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zila-itc/vide-code-rules/internal/rules/catalog"
	"github.com/Zila-itc/vide-code-rules/internal/rules/domain"
	"github.com/Zila-itc/vide-code-rules/internal/rules/switcher"
)

func newSwitchCommand(app *App) *cobra.Command {
	var dir string
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "switch [name]",
		Short: "Switch a directory to a stored profile",
		Long: "switch backs up the directory's AI configuration files, clears every known\n" +
			"tool footprint, and writes the chosen profile's files in their place.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				selected, err := selectProfileName(app, "Select profile to activate")
				if err != nil {
					return err
				}
				name = selected
			}

			// Resolve the record up front so the switch never races a
			// concurrent store edit between check and use.
			profile, err := app.Store.Get(name)
			if err != nil {
				return err
			}

			result, err := app.Switcher.Switch(dir, profile, switcher.Options{Backup: !noBackup})
			if err != nil {
				if errors.Is(err, domain.ErrClearFailed) || errors.Is(err, domain.ErrWriteFailed) {
					hint := "no backup was taken"
					if result.BackupDir != "" {
						hint = "consult the backup at " + result.BackupDir
					}
					app.Notifier.Errorf("%v — the directory may be in a mixed state; %s", err, hint)
				}
				return err
			}

			if result.BackupDir != "" {
				app.Notifier.Successf("Backed up existing configuration to %s", result.BackupDir)
			}
			app.Notifier.Successf("Switched %s to profile: %s (%d file(s) written)", dir, name, result.Written)
			app.refresh()
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Target project directory")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip the pre-switch backup")
	return cmd
}

func newDetectCommand(app *App, stdout io.Writer) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Report which tools are configured in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			detected := app.Detector.Detect(dir)
			if len(detected) == 0 {
				fmt.Fprintf(stdout, "No known AI tool configuration found in %s\n", dir)
				return nil
			}

			names := make([]string, 0, len(detected))
			for _, tool := range detected {
				names = append(names, string(tool))
			}
			fmt.Fprintf(stdout, "Detected: %s\n", strings.Join(names, ", "))

			profiles, err := app.Store.Load()
			if err != nil {
				return err
			}
			if match, ok := app.Detector.FindMatchingProfile(dir, profiles); ok {
				fmt.Fprintf(stdout, "Matching profile: %s\n", match.Name)
			} else {
				fmt.Fprintln(stdout, "No stored profile matches the detected tools.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to inspect")
	return cmd
}

func newCaptureCommand(app *App) *cobra.Command {
	var dir string
	var toolFlag string
	var description string

	cmd := &cobra.Command{
		Use:   "capture <name>",
		Short: "Save a directory's current AI configuration as a new profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trimmed, err := domain.ValidateName(args[0])
			if err != nil {
				return err
			}

			files, texts, err := app.Detector.Snapshot(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 && len(texts) == 0 {
				return fmt.Errorf("no AI configuration files found in %s", dir)
			}

			tool, err := resolveCaptureTool(app, dir, toolFlag)
			if err != nil {
				return err
			}

			profile := &domain.Profile{
				Name:        trimmed,
				Description: description,
				AITool:      tool,
				Files:       files,
				RulesText:   texts[catalog.RulesFileName],
				IgnoreText:  texts[catalog.IgnoreFileName],
				MemoryText:  texts[catalog.MemoryFileName],
			}
			if err := app.Store.Create(profile); err != nil {
				return err
			}
			app.Notifier.Successf("Captured %d file(s) from %s into profile: %s", len(files)+len(texts), dir, trimmed)
			app.refresh()
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to capture")
	cmd.Flags().StringVar(&toolFlag, "tool", "", "AI tool identifier; defaults to the first detected tool")
	cmd.Flags().StringVar(&description, "description", "", "Profile description")
	return cmd
}

// resolveCaptureTool picks the captured profile's tool: the explicit flag
// when given, otherwise the first detected tool, otherwise a prompt.
func resolveCaptureTool(app *App, dir, flag string) (catalog.ToolID, error) {
	if flag != "" {
		return resolveTool(app, flag)
	}
	if detected := app.Detector.Detect(dir); len(detected) > 0 {
		return detected[0], nil
	}
	return selectTool(app)
}
