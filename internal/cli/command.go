package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zila-itc/vide-code-rules/internal/rules/catalog"
	"github.com/Zila-itc/vide-code-rules/internal/rules/detect"
	"github.com/Zila-itc/vide-code-rules/internal/rules/store"
	"github.com/Zila-itc/vide-code-rules/internal/rules/switcher"
)

// App bundles the core components and UI collaborators the commands need.
type App struct {
	Store    *store.Store
	Detector *detect.Detector
	Switcher *switcher.Switcher
	Prompter Prompter
	Notifier Notifier
	Refresh  Refresher
}

func (a *App) refresh() {
	if a.Refresh != nil {
		a.Refresh()
	}
}

// WriterNotifier is the default Notifier, printing to a pair of streams.
type WriterNotifier struct {
	Out io.Writer
	Err io.Writer
}

func (n WriterNotifier) Successf(format string, args ...interface{}) {
	fmt.Fprintf(n.Out, format+"\n", args...)
}

func (n WriterNotifier) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(n.Err, "Error: "+format+"\n", args...)
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(app *App, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "viderules",
		Short:         "AI coding-assistant configuration profiles",
		Long:          "viderules maintains named configuration profiles for AI coding assistants and switches the active profile in a project directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.AddCommand(newListCommand(app, stdout))
	cmd.AddCommand(newShowCommand(app, stdout))
	cmd.AddCommand(newCreateCommand(app))
	cmd.AddCommand(newUpdateCommand(app))
	cmd.AddCommand(newDeleteCommand(app))
	cmd.AddCommand(newRenameCommand(app))
	cmd.AddCommand(newSwitchCommand(app))
	cmd.AddCommand(newDetectCommand(app, stdout))
	cmd.AddCommand(newCaptureCommand(app))
	cmd.AddCommand(newBackupsCommand(app, stdout))
	cmd.AddCommand(newRestoreCommand(app))
	cmd.AddCommand(newExportCommand(app))
	cmd.AddCommand(newImportCommand(app))

	return cmd
}

func newListCommand(app *App, stdout io.Writer) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := app.Store.Load()
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Fprintln(stdout, "No profiles stored yet. Use 'viderules create' to add one.")
				return nil
			}

			activeName := ""
			if dir != "" {
				if match, ok := app.Detector.FindMatchingProfile(dir, profiles); ok {
					activeName = match.Name
				}
			}

			names := make([]string, 0, len(profiles))
			for name := range profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				profile := profiles[name]
				marker := " "
				qualifier := ""
				if name == activeName {
					marker = "*"
					qualifier = " (detected)"
				}
				fmt.Fprintf(stdout, "%s [%s] %s%s\n", marker, name, profile.AITool, qualifier)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Mark the profile matching this directory's detected tools")
	return cmd
}

func newShowCommand(app *App, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.Store.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Name:        %s\n", profile.Name)
			fmt.Fprintf(stdout, "Tool:        %s\n", profile.AITool)
			if profile.Description != "" {
				fmt.Fprintf(stdout, "Description: %s\n", profile.Description)
			}
			fmt.Fprintf(stdout, "Updated:     %s\n", profile.UpdatedAt.Format("2006-01-02 15:04:05"))

			if len(profile.Files) > 0 {
				keys := make([]string, 0, len(profile.Files))
				for key := range profile.Files {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				fmt.Fprintln(stdout, "Files:")
				for _, key := range keys {
					fmt.Fprintf(stdout, "  %s\n", key)
				}
			}
			for _, field := range []struct{ label, text string }{
				{"Rules", profile.RulesText},
				{"Ignore", profile.IgnoreText},
				{"Memory", profile.MemoryText},
			} {
				if field.text != "" {
					fmt.Fprintf(stdout, "%s: %d byte(s)\n", field.label, len(field.text))
				}
			}
			return nil
		},
	}
}

// selectProfileName prompts for one of the stored profile names.
func selectProfileName(app *App, label string) (string, error) {
	names, err := app.Store.Names()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no profiles stored yet")
	}
	_, selected, err := app.Prompter.Select(label, names, "")
	if err != nil {
		return "", err
	}
	return selected, nil
}

// selectTool prompts for a supported tool identifier.
func selectTool(app *App) (catalog.ToolID, error) {
	items := make([]string, 0, len(catalog.All()))
	for _, tool := range catalog.All() {
		items = append(items, string(tool))
	}
	_, selected, err := app.Prompter.Select("Select AI tool", items, string(catalog.ToolCursor))
	if err != nil {
		return "", err
	}
	return catalog.ToolID(selected), nil
}

func resolveTool(app *App, flag string) (catalog.ToolID, error) {
	if flag == "" {
		return selectTool(app)
	}
	tool := catalog.ToolID(strings.ToLower(strings.TrimSpace(flag)))
	if !catalog.Known(tool) {
		return "", fmt.Errorf("unknown tool %q (supported: %s)", flag, toolList())
	}
	return tool, nil
}

func toolList() string {
	items := make([]string, 0, len(catalog.All()))
	for _, tool := range catalog.All() {
		items = append(items, string(tool))
	}
	return strings.Join(items, ", ")
}
