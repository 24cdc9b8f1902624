// Package cli implements the simfunc command line.
package cli

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries the global flags shared by all commands.
type app struct {
	configPath string
	verbose    bool
	envFile    string
	jsonOutput bool
	config     *fileConfig
}

// NewRootCmd builds the simfunc command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "simfunc",
		Short: "Score vector and text pairs with configurable similarity functions",
		Long: `simfunc scores pairs of vectors, or of texts through an embedding provider,
with built-in metrics or a learned linear similarity over combinations of
the two inputs, and manages stored checkpoints of learned parameters.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML or JSON config with similarity, store and provider sections")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file with API keys")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output as JSON")

	root.AddCommand(newDimCmd(a))
	root.AddCommand(newScoreCmd(a))
	root.AddCommand(newCheckpointCmd(a))
	root.AddCommand(newFunctionsCmd(a))

	return root
}

// setup loads the environment file and config and installs the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
