package cli

import (
	"fmt"

	"qaforge/internal/common"
	"qaforge/internal/types"

	"github.com/spf13/cobra"
)

var roleCmd = &cobra.Command{
	Use:   "role [job-role]",
	Short: "Generate interview questions for a job role",
	Long: `Generate interview question and answer pairs for a job role using
the local AI backend. The command takes one argument: the job role to
generate questions for, such as "Backend Engineer".`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if roleConfig.OutputFormat == "" {
			roleConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(roleConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRole,
}

var roleConfig common.CommandConfig

func init() {
	roleCmd.Flags().StringVarP(&roleConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	roleCmd.Flags().StringVar(&roleConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = roleCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRole(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	role := args[0]
	logger.Info("Starting question generation for role",
		"role", role,
		"output_format", roleConfig.OutputFormat)

	req := types.GenerationRequest{
		Kind:    types.KindRole,
		Subject: role,
	}

	if err := common.RunGenerationCommand(cmd.Context(), cfg, logger, roleConfig, req); err != nil {
		return fmt.Errorf("failed to generate questions for role: %w", err)
	}

	logger.Info("Question generation completed successfully")
	return nil
}
