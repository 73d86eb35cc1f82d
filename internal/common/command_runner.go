package common

import (
	"context"
	"fmt"
	"os"

	"qaforge/internal/ai"
	"qaforge/internal/config"
	"qaforge/internal/errors"
	"qaforge/internal/types"
)

// RunGenerationCommand encapsulates the common logic for CLI generation
// commands: build the service for the request kind, generate, report token
// usage, and write the formatted result.
func RunGenerationCommand(
	ctx context.Context,
	cfg *config.Config,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	req types.GenerationRequest,
) error {
	service, err := ai.NewService(cfg, req.Kind, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := service.Close(); err != nil && logger != nil {
			logger.Warn("Failed to close generation service", "error", err)
		}
	}()

	result, tokenUsage, strategy, err := service.GenerateQA(ctx, req)
	if err != nil {
		return err
	}

	// Report token usage
	if tokenUsage != nil {
		if logger != nil {
			logger.Info("Token usage", "input_tokens", tokenUsage.InputTokens, "output_tokens", tokenUsage.OutputTokens, "total_tokens", tokenUsage.TotalTokens)
		} else {
			fmt.Fprintf(os.Stderr, "Token usage: input=%d, output=%d, total=%d\n", tokenUsage.InputTokens, tokenUsage.OutputTokens, tokenUsage.TotalTokens)
		}
	}

	if logger != nil {
		logger.Debug("Generation completed",
			"status", string(result.Status),
			"parse_strategy", strategy,
			"questions", result.TotalQuestions)
	}

	outputHandler := NewOutputHandler(logger)
	return outputHandler.HandleOutput(result, cmdConfig)
}
