package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Zila-itc/vide-code-rules/internal/cli"
	"github.com/Zila-itc/vide-code-rules/internal/logging"
	"github.com/Zila-itc/vide-code-rules/internal/rules/detect"
	"github.com/Zila-itc/vide-code-rules/internal/rules/store"
	"github.com/Zila-itc/vide-code-rules/internal/rules/storage"
	"github.com/Zila-itc/vide-code-rules/internal/rules/switcher"
)

func main() {
	// Configure the global logger before any component logger is derived
	// from it, so they all share the console writer.
	logging.Setup(0, os.Stderr)

	st := storage.New(afero.NewOsFs())

	app := &cli.App{
		Store:    store.New(st, store.DefaultPath(), logging.Component("store")),
		Detector: detect.New(st, logging.Component("detect")),
		Switcher: switcher.New(st, logging.Component("switcher")),
		Prompter: cli.NewTerminalPrompter(),
		Notifier: cli.WriterNotifier{Out: os.Stdout, Err: os.Stderr},
	}

	root := cli.NewRootCommand(app, os.Stdout, os.Stderr)

	var verbosity int
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v, -vv)")
	root.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		logging.Setup(verbosity, os.Stderr)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
