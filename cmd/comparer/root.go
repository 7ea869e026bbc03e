package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "comparer",
		Short: "Comparer - score and rank comparison tables",
		Long: `Comparer scores the items of a comparison table along typed, weighted
criteria and ranks them.

It scores local JSON files directly, and manages stored comparatives and
criteria templates through the backends named in the configuration file.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file with COMPARER_* overrides")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newWeightsCommand())
	cmd.AddCommand(newGenerateCommand())
	cmd.AddCommand(newTemplateCommand(opts))
	cmd.AddCommand(newComparativeCommand(opts))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
