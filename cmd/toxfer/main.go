// Command toxfer inspects and maintains the transfer record database of a
// chat client.
package main

import (
	"fmt"
	"os"

	"github.com/opd-ai/toxfer/config"
	"github.com/opd-ai/toxfer/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
}

// newRootCmd builds the top level `toxfer` command with its subcommands
// attached.
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "toxfer",
		Short:         "Inspect and maintain chat file transfers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default $HOME/.config/toxfer/config.yml)")
	flags.StringVar(&a.dbPath, "db", "", "record database, overrides database_path")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides log_level")

	root.AddCommand(a.recordsCmd())
	root.AddCommand(a.relayCmd())
	root.AddCommand(a.configCmd())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DatabasePath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.ConfigureLogger(logrus.StandardLogger()); err != nil {
		return err
	}
	logrus.SetOutput(os.Stderr)
	a.cfg = cfg
	return nil
}

func (a *app) openStore() (*storage.Store, error) {
	store, err := storage.OpenPath(a.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open record database: %w", err)
	}
	return store, nil
}

// Entry point of the application.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
