package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cognicore/raffle/pkg/raffle/config"
)

// globalOptions are shared by every subcommand
type globalOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "raffle",
		Short: "Draw a random taglist and filter it by category",
		Long: `Raffle picks one taglist from the enabled rating pools using a seed,
then filters the tags through the category allow-list, the negative prompt
and the filter-out list.

Taglists are read from the lists directory or from a database produced by
"raffle import".`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to raffle YAML config")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newPickCmd(opts))
	cmd.AddCommand(newWeightsCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newCategoriesCmd(opts))

	return cmd
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

func (o *globalOptions) loadComponents(cmd *cobra.Command) (*config.Config, *config.Components, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	loader := &config.Loader{Config: cfg, Logger: slog.Default()}
	comp, err := loader.Load(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return cfg, comp, nil
}
