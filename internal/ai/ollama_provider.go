package ai

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"qaforge/internal/config"
	qaforgeErrors "qaforge/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// OllamaBackend implements Backend for a local Ollama instance, used for
// role-based generation. Ollama has no structured output mode, so replies
// lean on the lenient and heuristic parse strategies downstream.
type OllamaBackend struct {
	httpClient     *http.Client
	config         *config.BackendAIConfig
	circuitBreaker *GenerationCircuitBreaker
	checkTimeout   time.Duration
	logger         *qaforgeErrors.Logger
}

// Ensure OllamaBackend implements Backend
var _ Backend = (*OllamaBackend)(nil)

// ollamaGenerateRequest is the /api/generate request body
type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// ollamaGenerateResponse is the subset of the /api/generate reply we use
type ollamaGenerateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int64  `json:"prompt_eval_count"`
	EvalCount       int64  `json:"eval_count"`
}

// ollamaTagsResponse is the /api/tags reply listing installed models
type ollamaTagsResponse struct {
	Models []struct {
		Name       string `json:"name"`
		ModifiedAt string `json:"modified_at"`
	} `json:"models"`
}

// NewOllamaBackend creates an Ollama backend for the configured endpoint
func NewOllamaBackend(cfg *config.BackendAIConfig, checkTimeout time.Duration, logger *qaforgeErrors.Logger) (*OllamaBackend, error) {
	if cfg.Endpoint == "" {
		return nil, qaforgeErrors.NewConfigError(qaforgeErrors.ErrCodeInvalidConfig,
			"Ollama endpoint is not configured", nil)
	}

	if checkTimeout <= 0 {
		checkTimeout = 10 * time.Second
	}

	return &OllamaBackend{
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: NewGenerationCircuitBreaker("ollama", cfg, logger),
		checkTimeout:   checkTimeout,
		logger:         logger,
	}, nil
}

// Name implements Backend
func (o *OllamaBackend) Name() string {
	return "ollama"
}

// Generate implements Backend. The system instruction is folded into the
// prompt since /api/generate takes a single prompt string.
func (o *OllamaBackend) Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error) {
	tracer := otel.Tracer("qaforge.ai.ollama")
	ctx, span := tracer.Start(ctx, "ollama.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.backend", "ollama"),
		attribute.String("ai.model", o.config.Model),
		attribute.String("ai.endpoint", o.config.Endpoint),
		attribute.Int("input.prompt_length", len(prompt.User)),
	)

	fullPrompt := prompt.User
	if prompt.System != "" {
		fullPrompt = prompt.System + "\n\n" + prompt.User
	}

	body := ollamaGenerateRequest{
		Model:  o.config.Model,
		Prompt: fullPrompt,
		Stream: false,
	}
	if *o.config.Temperature > 0 {
		body.Options = map[string]any{
			"temperature": *o.config.Temperature,
		}
	}

	var tokenUsage *TokenUsage
	result, err := o.circuitBreaker.Execute(func() (string, error) {
		response, err := executeWithRetry(ctx, o.logger, "generate_questions", *o.config.MaxRetries,
			func() (*ollamaGenerateResponse, error) {
				return o.doGenerate(ctx, body)
			})
		if err != nil {
			return "", err
		}
		if response.PromptEvalCount > 0 || response.EvalCount > 0 {
			tokenUsage = &TokenUsage{
				InputTokens:  response.PromptEvalCount,
				OutputTokens: response.EvalCount,
				TotalTokens:  response.PromptEvalCount + response.EvalCount,
			}
		}
		return response.Response, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, o.classifyError(err)
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

// doGenerate performs one /api/generate round trip
func (o *OllamaBackend) doGenerate(ctx context.Context, body ollamaGenerateRequest) (*ollamaGenerateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.config.Endpoint+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Bound the body read; Ollama error bodies are short JSON blobs
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &backendHTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	var generateResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &generateResp, nil
}

// classifyError maps transport failures onto the backend error taxonomy
func (o *OllamaBackend) classifyError(err error) error {
	if isCircuitOpen(err) {
		return qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeCircuitOpen,
			"Ollama backend circuit breaker is open", err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeBackendTimeout,
			"Ollama request timed out", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeBackendTimeout,
			"Ollama request timed out", err)
	}

	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeBackendUnavailable,
			"Ollama is not reachable at "+o.config.Endpoint, err)
	}

	return qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeBackendFailed,
		"Failed to generate questions", err)
}

// GetModelInfo checks that Ollama is reachable and the configured model is
// installed, via the /api/tags listing
func (o *OllamaBackend) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      o.config.Model,
		Backend:   "ollama",
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, o.checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet,
		o.config.Endpoint+"/api/tags", nil)
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to build model check request: %v", err)
		return modelInfo
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to reach Ollama: %v", err)
		o.logger.Warn("Model availability check failed",
			"model", o.config.Model,
			"backend", "ollama",
			"endpoint", o.config.Endpoint,
			"error", err.Error())
		return modelInfo
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		modelInfo.Error = fmt.Sprintf("Ollama model listing returned HTTP %d", resp.StatusCode)
		return modelInfo
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to decode model listing: %v", err)
		return modelInfo
	}

	for _, model := range tags.Models {
		// Tags carry a ":latest" suffix the config usually omits
		if model.Name == o.config.Model || strings.TrimSuffix(model.Name, ":latest") == o.config.Model {
			modelInfo.Available = true
			modelInfo.DisplayName = model.Name
			break
		}
	}

	if !modelInfo.Available {
		modelInfo.Error = fmt.Sprintf("Model %q is not installed", o.config.Model)
		o.logger.Warn("Configured model not found in Ollama",
			"model", o.config.Model,
			"backend", "ollama",
			"installed_models", len(tags.Models))
		return modelInfo
	}

	o.logger.Debug("Model availability check successful",
		"model", o.config.Model,
		"backend", "ollama")

	return modelInfo
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (o *OllamaBackend) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"generation":      o.circuitBreaker.GetStats(),
		"overall_healthy": o.circuitBreaker.IsHealthy(),
	}
}

// Close implements Backend
func (o *OllamaBackend) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
