package cli

import (
	"context"

	"qaforge/internal/config"
	"qaforge/internal/errors"

	"github.com/spf13/cobra"
)

// Unexported context key types so no other package can collide with them.
type configKeyType struct{}
type loggerKeyType struct{}

var (
	configKey = configKeyType{}
	loggerKey = loggerKeyType{}
)

var rootCmd = &cobra.Command{
	Use:   "qaforge",
	Short: "A tool for generating interview questions using AI",
	Long: `Qaforge generates interview question and answer sets using AI.
Questions can be generated for a job role or from an uploaded resume,
and served over an HTTP API or produced directly from the command line.`,
}

// Execute runs the root command with the config and logger attached to the
// context, where every subcommand can reach them.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		panic("config not found in context")
	}
	return cfg
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	logger, ok := ctx.Value(loggerKey).(*errors.Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

func init() {
	rootCmd.AddCommand(roleCmd, resumeCmd, versionCmd, serveCmd)
}
