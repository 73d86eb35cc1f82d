package ai

import (
	"context"
	"fmt"

	"qaforge/internal/config"
	"qaforge/internal/errors"
	"qaforge/internal/types"
)

// Service handles question generation for one request kind. Construct it
// once per backend and reuse it so circuit breaker state accumulates
// across requests.
type Service struct {
	Backend Backend // Exported for access from server package
	prompts *PromptBuilder
	kind    types.RequestKind
	logger  *errors.Logger
}

// backendForKind returns the backend name serving a request kind. Role
// requests stay on the local model; resume requests carry candidate PII
// and structured output matters more, so they go to the cloud backend.
func backendForKind(kind types.RequestKind) string {
	if kind == types.KindResume {
		return "gemini"
	}
	return "ollama"
}

// NewService creates a generation service for the given request kind
func NewService(cfg *config.Config, kind types.RequestKind, logger *errors.Logger) (*Service, error) {
	var backend Backend
	var err error

	checkTimeout := cfg.Observability.HealthCheck.BackendCheckTimeout

	switch backendForKind(kind) {
	case "gemini":
		cloudCfg := cfg.GetCloudConfig()
		if cloudCfg.Disabled {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"Cloud backend is disabled; resume-based generation is unavailable", nil)
		}
		if cloudCfg.APIKey == "" {
			return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
				"Cloud backend API key is not configured", nil)
		}
		backend, err = NewGeminiBackend(&cloudCfg, checkTimeout, logger)
	case "ollama":
		localCfg := cfg.GetLocalConfig()
		backend, err = NewOllamaBackend(&localCfg, checkTimeout, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("No backend configured for request kind: %s", kind), nil)
	}

	if err != nil {
		return nil, err
	}

	backendCfg := cfg.GetLocalConfig()
	if backendForKind(kind) == "gemini" {
		backendCfg = cfg.GetCloudConfig()
	}

	logger.Debug("Initialized generation service",
		"kind", string(kind),
		"backend", backend.Name(),
		"model", backendCfg.Model,
		"temperature", *backendCfg.Temperature,
		"timeout", *backendCfg.Timeout,
		"max_retries", *backendCfg.MaxRetries)

	return &Service{
		Backend: backend,
		prompts: NewPromptBuilder(&cfg.AI),
		kind:    kind,
		logger:  logger,
	}, nil
}

// GenerateQA runs the full pipeline for one request: validate and build the
// prompt, call the backend, parse the reply, and stamp the result envelope.
// The returned strategy names the parse strategy that recovered the pairs,
// for metrics.
func (s *Service) GenerateQA(ctx context.Context, req types.GenerationRequest) (types.QAResult, *TokenUsage, string, error) {
	var prompt Prompt
	var err error

	switch req.Kind {
	case types.KindRole:
		prompt, err = s.prompts.BuildRolePrompt(req.Subject)
	case types.KindResume:
		prompt, err = s.prompts.BuildResumePrompt(req.ResumeText)
	default:
		err = errors.NewInternalError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Unknown request kind: %s", req.Kind), nil)
	}
	if err != nil {
		return types.QAResult{}, nil, StrategyNone, err
	}

	raw, tokenUsage, err := s.Backend.Generate(ctx, prompt)
	if err != nil {
		return types.QAResult{}, tokenUsage, StrategyNone, err
	}

	outcome := ParseResponse(raw, s.prompts.QuestionCount())
	if outcome.Status == types.StatusFailure {
		s.logger.Warn("No question/answer pairs recovered from backend reply",
			"kind", string(req.Kind),
			"backend", s.Backend.Name(),
			"reply_length", len(raw))
	}

	result := types.QAResult{
		Role:           req.Subject,
		Filename:       req.Filename,
		Type:           types.TypeForKind(req.Kind),
		Pairs:          outcome.Pairs,
		TotalQuestions: len(outcome.Pairs),
		Status:         outcome.Status,
	}
	if req.Kind == types.KindResume {
		result.Role = ""
	}

	return result, tokenUsage, outcome.Strategy, nil
}

// GetModelInfo returns information about the backend model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Backend.GetModelInfo(ctx)
}

// GetCircuitBreakerStats returns circuit breaker statistics for the backend
func (s *Service) GetCircuitBreakerStats() map[string]any {
	type statser interface {
		GetCircuitBreakerStats() map[string]any
	}
	if b, ok := s.Backend.(statser); ok {
		return b.GetCircuitBreakerStats()
	}
	return map[string]any{"enabled": false}
}

// Close releases backend resources
func (s *Service) Close() error {
	return s.Backend.Close()
}
