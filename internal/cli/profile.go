package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zila-itc/vide-code-rules/internal/rules/domain"
)

// textFlags carries the free-text fields shared by create and update.
type textFlags struct {
	description string
	rules       string
	ignore      string
	memory      string
}

func (f *textFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "Profile description")
	cmd.Flags().StringVar(&f.rules, "rules", "", "Rules text written to .rules on switch")
	cmd.Flags().StringVar(&f.ignore, "ignore", "", "Ignore text written to .aiignore on switch")
	cmd.Flags().StringVar(&f.memory, "memory", "", "Memory text written to memory_bank on switch")
}

func newCreateCommand(app *App) *cobra.Command {
	var toolFlag string
	var text textFlags

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				entered, err := app.Prompter.Prompt("Profile name")
				if err != nil {
					return err
				}
				name = entered
			}
			trimmed, err := domain.ValidateName(name)
			if err != nil {
				return err
			}

			tool, err := resolveTool(app, toolFlag)
			if err != nil {
				return err
			}

			description := text.description
			if description == "" && len(args) == 0 {
				// Interactive creation also asks for a description; an
				// empty answer is fine.
				if entered, err := app.Prompter.Prompt("Description (optional)"); err == nil {
					description = entered
				}
			}

			profile := &domain.Profile{
				Name:        trimmed,
				Description: strings.TrimSpace(description),
				AITool:      tool,
				RulesText:   text.rules,
				IgnoreText:  text.ignore,
				MemoryText:  text.memory,
			}
			if err := app.Store.Create(profile); err != nil {
				return err
			}
			app.Notifier.Successf("Created profile: %s (%s)", trimmed, tool)
			app.refresh()
			return nil
		},
	}

	cmd.Flags().StringVar(&toolFlag, "tool", "", "AI tool identifier ("+toolList()+")")
	text.register(cmd)
	return cmd
}

func newUpdateCommand(app *App) *cobra.Command {
	var toolFlag string
	var text textFlags

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update an existing profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.Store.Get(args[0])
			if err != nil {
				return err
			}

			if toolFlag != "" {
				tool, err := resolveTool(app, toolFlag)
				if err != nil {
					return err
				}
				profile.AITool = tool
			}
			if cmd.Flags().Changed("description") {
				profile.Description = text.description
			}
			if cmd.Flags().Changed("rules") {
				profile.RulesText = text.rules
			}
			if cmd.Flags().Changed("ignore") {
				profile.IgnoreText = text.ignore
			}
			if cmd.Flags().Changed("memory") {
				profile.MemoryText = text.memory
			}

			if err := app.Store.Upsert(profile); err != nil {
				return err
			}
			app.Notifier.Successf("Updated profile: %s", profile.Name)
			app.refresh()
			return nil
		},
	}

	cmd.Flags().StringVar(&toolFlag, "tool", "", "AI tool identifier ("+toolList()+")")
	text.register(cmd)
	return cmd
}

func newDeleteCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			} else {
				selected, err := selectProfileName(app, "Select profile to delete")
				if err != nil {
					return err
				}
				name = selected
			}

			if !force {
				confirm, err := app.Prompter.Confirm(fmt.Sprintf("Delete profile %s?", name), false)
				if err != nil {
					return err
				}
				if !confirm {
					app.Notifier.Successf("Delete cancelled.")
					return nil
				}
			}

			removed, err := app.Store.Remove(name)
			if err != nil {
				return err
			}
			if !removed {
				app.Notifier.Successf("Profile %s did not exist.", name)
				return nil
			}
			app.Notifier.Successf("Deleted profile: %s", name)
			app.refresh()
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Do not prompt for confirmation")
	return cmd
}

func newRenameCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a stored profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.Rename(args[0], args[1]); err != nil {
				return err
			}
			app.Notifier.Successf("Renamed profile: %s -> %s", args[0], args[1])
			app.refresh()
			return nil
		},
	}
}
