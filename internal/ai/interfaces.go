package ai

import (
	"context"
)

// Prompt carries the system instruction and user message for one generation
type Prompt struct {
	System string
	User   string
}

// Backend is a text-generation backend. Generate returns the raw model
// reply; structural validation is the parser's job, not the backend's.
// All methods return token usage information - callers can ignore it if not needed.
type Backend interface {
	Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Name() string
	Close() error
}

// ModelInfo represents information about a generation model
type ModelInfo struct {
	Name        string `json:"name"`
	Backend     string `json:"backend"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// TokenUsage represents token usage information from backend responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
