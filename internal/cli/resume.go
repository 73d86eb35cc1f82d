package cli

import (
	"fmt"
	"path/filepath"

	"qaforge/internal/common"
	"qaforge/internal/extract"
	"qaforge/internal/types"
	"qaforge/internal/utils"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [resume-file]",
	Short: "Generate interview questions from a resume",
	Long: `Generate interview question and answer pairs from a resume file
using the cloud AI backend. The command takes one argument: the path to
the resume file. PDF, DOCX and plain text files are supported.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if resumeConfig.OutputFormat == "" {
			resumeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(resumeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runResume,
}

var resumeConfig common.CommandConfig

func init() {
	resumeCmd.Flags().StringVarP(&resumeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	resumeCmd.Flags().StringVar(&resumeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = resumeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runResume(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	path := args[0]
	filename := filepath.Base(path)

	fileProcessor := common.NewFileProcessor(logger)
	data, err := fileProcessor.ValidateAndReadResumeFile(path)
	if err != nil {
		return err
	}

	logger.Info("Starting question generation from resume",
		"file", filename,
		"size", utils.FormatFileSize(int64(len(data))),
		"output_format", resumeConfig.OutputFormat)

	resumeText, err := extract.ExtractText(filename, data)
	if err != nil {
		return err
	}

	logger.Debug("Resume text extracted", "chars", len(resumeText))

	req := types.GenerationRequest{
		Kind:       types.KindResume,
		Subject:    filename,
		ResumeText: resumeText,
		Filename:   filename,
	}

	if err := common.RunGenerationCommand(cmd.Context(), cfg, logger, resumeConfig, req); err != nil {
		return fmt.Errorf("failed to generate questions from resume: %w", err)
	}

	logger.Info("Question generation completed successfully")
	return nil
}
