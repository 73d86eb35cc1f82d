package ai

import (
	"context"
	"fmt"
	"time"

	"qaforge/internal/config"
	qaforgeErrors "qaforge/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// GeminiBackend implements Backend for Google Gemini, used for resume-based
// generation where a structured response schema is available.
type GeminiBackend struct {
	client         *genai.Client
	config         *config.BackendAIConfig
	circuitBreaker *GenerationCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	checkTimeout   time.Duration
	logger         *qaforgeErrors.Logger
}

// Ensure GeminiBackend implements Backend
var _ Backend = (*GeminiBackend)(nil)

// NewGeminiBackend creates a Gemini backend. checkTimeout bounds model
// availability probes so a slow API call cannot stall health checks.
func NewGeminiBackend(cfg *config.BackendAIConfig, checkTimeout time.Duration, logger *qaforgeErrors.Logger) (*GeminiBackend, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeBackendFailed,
			"Failed to create Gemini client", err)
	}

	if checkTimeout <= 0 {
		checkTimeout = 10 * time.Second
	}

	return &GeminiBackend{
		client:         client,
		config:         cfg,
		circuitBreaker: NewGenerationCircuitBreaker("gemini", cfg, logger),
		modelBreaker:   NewModelCircuitBreaker("gemini", cfg, logger),
		checkTimeout:   checkTimeout,
		logger:         logger,
	}, nil
}

// Name implements Backend
func (g *GeminiBackend) Name() string {
	return "gemini"
}

// Generate implements Backend. The response schema constrains the model to
// a JSON array of question/answer objects, so the strict parse strategy
// normally wins downstream.
func (g *GeminiBackend) Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error) {
	tracer := otel.Tracer("qaforge.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.backend", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
		attribute.Int("input.prompt_length", len(prompt.User)),
	)

	genaiConfig := g.buildGenerationSchema()
	if prompt.System != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	callCtx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	var tokenUsage *TokenUsage
	result, err := g.circuitBreaker.Execute(func() (string, error) {
		response, err := executeWithRetry(callCtx, g.logger, "generate_questions", *g.config.MaxRetries,
			func() (*genai.GenerateContentResponse, error) {
				return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(prompt.User), genaiConfig)
			})
		if err != nil {
			return "", err
		}
		tokenUsage = extractTokenUsage(response)
		return response.Text(), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if isCircuitOpen(err) {
			return "", nil, qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeCircuitOpen,
				"Gemini backend circuit breaker is open", err)
		}
		return "", nil, qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeBackendFailed,
			"Failed to generate questions", err)
	}

	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.reply_length", len(result)),
	)
	return result, tokenUsage, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiBackend) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Backend:   "gemini",
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, g.checkTimeout)
	defer cancel()

	info, err := g.modelBreaker.ExecuteModel(func() (*ModelInfo, error) {
		model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
		if err != nil {
			return nil, err
		}
		return &ModelInfo{
			Name:        g.config.Model,
			Backend:     "gemini",
			DisplayName: model.DisplayName,
			Version:     model.Version,
			Available:   true,
		}, nil
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"backend", "gemini",
			"error", err.Error())
		return modelInfo
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"backend", "gemini",
		"display_name", info.DisplayName,
		"version", info.Version)

	return info
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiBackend) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"generation":       g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements Backend
func (g *GeminiBackend) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	// Probably needed in streaming mode
	return nil
}

// buildGenerationSchema constrains replies to a JSON array of pairs with
// exactly two string fields each
func (g *GeminiBackend) buildGenerationSchema() *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question": {Type: genai.TypeString},
					"answer":   {Type: genai.TypeString},
				},
				Required: []string{"question", "answer"},
			},
		},
	}

	// Apply temperature configuration if set
	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	return genaiConfig
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
