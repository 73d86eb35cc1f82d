package ai

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"qaforge/internal/config"
	qaforgeErrors "qaforge/internal/errors"
	"qaforge/internal/types"
)

// fakeBackend returns a canned reply without any network access
type fakeBackend struct {
	reply   string
	usage   *TokenUsage
	err     error
	prompts []Prompt
}

func (f *fakeBackend) Generate(_ context.Context, prompt Prompt) (string, *TokenUsage, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.usage, f.err
}

func (f *fakeBackend) GetModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake", Backend: "fake", Available: true}
}

func (f *fakeBackend) Name() string { return "fake" }
func (f *fakeBackend) Close() error { return nil }

func newTestService(kind types.RequestKind, backend Backend) *Service {
	return &Service{
		Backend: backend,
		prompts: NewPromptBuilder(testAIConfig()),
		kind:    kind,
		logger:  testLogger,
	}
}

func TestBackendForKind(t *testing.T) {
	if backendForKind(types.KindRole) != "ollama" {
		t.Error("Role requests should be served by the local backend")
	}
	if backendForKind(types.KindResume) != "gemini" {
		t.Error("Resume requests should be served by the cloud backend")
	}
}

func TestGenerateQARoleRequest(t *testing.T) {
	backend := &fakeBackend{
		reply: `[{"question":"Q1?","answer":"A1"},{"question":"Q2?","answer":"A2"},{"question":"Q3?","answer":"A3"},{"question":"Q4?","answer":"A4"},{"question":"Q5?","answer":"A5"}]`,
		usage: &TokenUsage{InputTokens: 100, OutputTokens: 200, TotalTokens: 300},
	}
	svc := newTestService(types.KindRole, backend)

	result, usage, strategy, err := svc.GenerateQA(context.Background(), types.GenerationRequest{
		Kind:    types.KindRole,
		Subject: "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("GenerateQA failed: %v", err)
	}

	if result.Role != "Backend Engineer" {
		t.Errorf("Expected role to be stamped, got %q", result.Role)
	}
	if result.Filename != "" {
		t.Errorf("Role results should not carry a filename, got %q", result.Filename)
	}
	if result.Type != "role_based" {
		t.Errorf("Expected type 'role_based', got %q", result.Type)
	}
	if result.TotalQuestions != 5 || len(result.Pairs) != 5 {
		t.Errorf("Expected 5 pairs, got total=%d len=%d", result.TotalQuestions, len(result.Pairs))
	}
	if result.Status != types.StatusSuccess {
		t.Errorf("Expected status success, got %q", result.Status)
	}
	if strategy != StrategyStrict {
		t.Errorf("Expected strict parse strategy, got %q", strategy)
	}
	if usage == nil || usage.TotalTokens != 300 {
		t.Errorf("Expected token usage to pass through, got %+v", usage)
	}

	if len(backend.prompts) != 1 {
		t.Fatalf("Expected exactly one backend call, got %d", len(backend.prompts))
	}
}

func TestGenerateQAResumeRequest(t *testing.T) {
	backend := &fakeBackend{
		reply: `[{"question":"Q1?","answer":"A1"}]`,
	}
	svc := newTestService(types.KindResume, backend)

	result, _, _, err := svc.GenerateQA(context.Background(), types.GenerationRequest{
		Kind:       types.KindResume,
		Subject:    "resume.pdf",
		ResumeText: "Senior Go developer with years of experience building services.",
		Filename:   "resume.pdf",
	})
	if err != nil {
		t.Fatalf("GenerateQA failed: %v", err)
	}

	if result.Role != "" {
		t.Errorf("Resume results should not carry a role, got %q", result.Role)
	}
	if result.Filename != "resume.pdf" {
		t.Errorf("Expected filename to be stamped, got %q", result.Filename)
	}
	if result.Type != "resume_based" {
		t.Errorf("Expected type 'resume_based', got %q", result.Type)
	}
	// One pair against an expected five is a partial result
	if result.Status != types.StatusPartial {
		t.Errorf("Expected status partial, got %q", result.Status)
	}
	if result.TotalQuestions != 1 {
		t.Errorf("TotalQuestions must equal len(Pairs), got %d", result.TotalQuestions)
	}
}

func TestGenerateQAValidationFailsBeforeBackendCall(t *testing.T) {
	backend := &fakeBackend{reply: "[]"}
	svc := newTestService(types.KindRole, backend)

	_, _, _, err := svc.GenerateQA(context.Background(), types.GenerationRequest{
		Kind:    types.KindRole,
		Subject: "x",
	})
	if err == nil {
		t.Fatal("Expected a validation error for a one-character role")
	}
	if !qaforgeErrors.IsType(err, qaforgeErrors.ErrorTypeValidation) {
		t.Errorf("Expected a validation error, got: %v", err)
	}
	if len(backend.prompts) != 0 {
		t.Error("Backend must not be called when validation fails")
	}
}

func TestGenerateQABackendErrorPropagates(t *testing.T) {
	backend := &fakeBackend{
		err: qaforgeErrors.NewBackendError(qaforgeErrors.ErrCodeBackendUnavailable,
			"Ollama is not reachable", nil),
	}
	svc := newTestService(types.KindRole, backend)

	_, _, strategy, err := svc.GenerateQA(context.Background(), types.GenerationRequest{
		Kind:    types.KindRole,
		Subject: "Backend Engineer",
	})
	if err == nil {
		t.Fatal("Expected the backend error to propagate")
	}
	if !qaforgeErrors.IsType(err, qaforgeErrors.ErrorTypeBackend) {
		t.Errorf("Expected a backend error, got: %v", err)
	}
	if strategy != StrategyNone {
		t.Errorf("No parsing happened, expected strategy %q, got %q", StrategyNone, strategy)
	}
}

func TestGenerateQAUnparsableReplyIsFailureNotError(t *testing.T) {
	backend := &fakeBackend{reply: "I cannot produce questions right now."}
	svc := newTestService(types.KindRole, backend)

	result, _, strategy, err := svc.GenerateQA(context.Background(), types.GenerationRequest{
		Kind:    types.KindRole,
		Subject: "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("Unparsable replies must not surface as errors, got: %v", err)
	}
	if result.Status != types.StatusFailure {
		t.Errorf("Expected status failure, got %q", result.Status)
	}
	if result.Pairs == nil || len(result.Pairs) != 0 {
		t.Errorf("Expected an empty non-nil pair slice, got %#v", result.Pairs)
	}
	if strategy != StrategyNone {
		t.Errorf("Expected strategy %q, got %q", StrategyNone, strategy)
	}
}

func TestNewServiceCloudConfiguration(t *testing.T) {
	base := func() *config.Config {
		cfg := &config.Config{}
		cfg.AI.Timeout = 60 * time.Second
		cfg.AI.MaxRetries = 2
		cfg.AI.Temperature = 0.7
		cfg.AI.QuestionCount = 5
		cfg.AI.MaxResumeChars = 6000
		cfg.AI.Local.Endpoint = "http://localhost:11434"
		cfg.AI.Local.Model = "llama3"
		cfg.AI.Cloud.Model = "gemini-2.0-flash"
		return cfg
	}

	t.Run("disabled cloud backend", func(t *testing.T) {
		cfg := base()
		cfg.AI.Cloud.Disabled = true

		_, err := NewService(cfg, types.KindResume, testLogger)
		if err == nil {
			t.Fatal("Expected a config error when the cloud backend is disabled")
		}
		if !qaforgeErrors.IsType(err, qaforgeErrors.ErrorTypeConfig) {
			t.Errorf("Expected a config error, got: %v", err)
		}
	})

	t.Run("missing API key", func(t *testing.T) {
		cfg := base()
		t.Setenv("GEMINI_API_KEY", "")

		_, err := NewService(cfg, types.KindResume, testLogger)
		if err == nil {
			t.Fatal("Expected a config error when the API key is missing")
		}
		var appErr *qaforgeErrors.AppError
		if !stderrors.As(err, &appErr) || appErr.Code != qaforgeErrors.ErrCodeMissingAPIKey {
			t.Errorf("Expected code %s, got: %v", qaforgeErrors.ErrCodeMissingAPIKey, err)
		}
	})

	t.Run("local backend needs no key", func(t *testing.T) {
		cfg := base()

		svc, err := NewService(cfg, types.KindRole, testLogger)
		if err != nil {
			t.Fatalf("NewService for role requests failed: %v", err)
		}
		defer func() { _ = svc.Close() }()

		if svc.Backend.Name() != "ollama" {
			t.Errorf("Expected the ollama backend, got %q", svc.Backend.Name())
		}
	})
}
