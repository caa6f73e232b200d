// ABOUTME: Entry point for the kanban CLI: loads .env and config, then runs one command or the shell.
// ABOUTME: Builds the cobra root command with global flags that override env and config.yaml.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	loadDotEnvAuto()

	configDir, err := defaultConfigDir()
	if err != nil {
		log.WithError(err).Warn("config directory unavailable, skipping config.yaml")
		configDir = ""
	}
	cfg, err := resolveConfig(configDir)
	a := newApp(os.Stdin, os.Stdout, os.Stderr, cfg)
	if err != nil {
		a.printError(err)
		os.Exit(1)
	}
	defer a.close()

	if err := a.execute(os.Args[1:]); err != nil {
		a.close()
		os.Exit(1)
	}
}

// rootFlags holds the global flag values for one command tree.
type rootFlags struct {
	home       string
	state      string
	idScheme   string
	noAutosave bool
	noIndex    bool
	noJournal  bool
	verbose    bool
}

// apply copies every flag the user set onto cfg.
func (f *rootFlags) apply(cmd *cobra.Command, cfg *config) {
	flags := cmd.Flags()
	if flags.Changed("home") {
		cfg.Home = f.home
	}
	if flags.Changed("state") {
		cfg.StateFile = f.state
	}
	if flags.Changed("id-scheme") {
		cfg.IDScheme = f.idScheme
	}
	if f.noAutosave {
		cfg.Autosave = false
	}
	if f.noIndex {
		cfg.Index = false
	}
	if f.noJournal {
		cfg.Journal = false
	}
	if f.verbose {
		cfg.LogLevel = log.DebugLevel.String()
	}
}

func newRootCmd(a *app) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "kanban",
		Short:         "Kanban boards with WIP limits, tags, and an activity log",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !a.opened {
				flags.apply(cmd, &a.cfg)
			}
			return a.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("kanban {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&flags.home, "home", "", "kanban home directory")
	pf.StringVar(&flags.state, "state", "", "state file path")
	pf.StringVar(&flags.idScheme, "id-scheme", idSchemeSequence, "card id scheme: sequence or ulid")
	pf.BoolVar(&flags.noAutosave, "no-autosave", false, "do not save after mutating commands")
	pf.BoolVar(&flags.noIndex, "no-index", false, "do not maintain the SQLite search index")
	pf.BoolVar(&flags.noJournal, "no-journal", false, "do not append activity to the journal")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == root {
			printHelp(cmd.OutOrStdout(), version)
			return
		}
		defaultHelp(cmd, args)
	})

	root.AddCommand(
		newBoardCmd(a),
		newColumnCmd(a),
		newCardCmd(a),
		newUserCmd(a),
		newFilterCmd(a),
		newTagsCmd(a),
		newHistoryCmd(a),
		newSaveCmd(a),
		newLoadCmd(a),
		newExportCmd(a),
		newSearchCmd(a),
	)
	return root
}
