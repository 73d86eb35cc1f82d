package ai

import (
	"strconv"
	"strings"
	"testing"

	"qaforge/internal/config"
	qaforgeErrors "qaforge/internal/errors"
)

func testAIConfig() *config.AIConfig {
	return &config.AIConfig{
		QuestionCount:  5,
		MaxResumeChars: 6000,
	}
}

func TestBuildRolePromptValidation(t *testing.T) {
	builder := NewPromptBuilder(testAIConfig())

	tests := []struct {
		name    string
		role    string
		wantErr bool
	}{
		{"valid role", "Backend Engineer", false},
		{"two characters is enough", "QA", false},
		{"single character", "X", true},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"whitespace padding trimmed before check", "  a  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := builder.BuildRolePrompt(tt.role)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected a validation error")
				}
				if !qaforgeErrors.IsType(err, qaforgeErrors.ErrorTypeValidation) {
					t.Errorf("Expected a validation error, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		})
	}
}

func TestBuildRolePromptContent(t *testing.T) {
	builder := NewPromptBuilder(testAIConfig())

	prompt, err := builder.BuildRolePrompt("Site Reliability Engineer")
	if err != nil {
		t.Fatalf("BuildRolePrompt failed: %v", err)
	}

	if prompt.System == "" {
		t.Error("System prompt should not be empty")
	}
	if !strings.Contains(prompt.User, "Site Reliability Engineer") {
		t.Error("User prompt should embed the role")
	}

	// The output contract is appended by the builder with the configured
	// count and the 3/2 technical/HR split.
	if !strings.Contains(prompt.User, "exactly 5 question/answer pairs") {
		t.Error("User prompt should state the requested pair count")
	}
	if !strings.Contains(prompt.User, "3 technical questions and 2 HR/behavioral questions") {
		t.Errorf("User prompt should state the technical/HR split, got:\n%s", prompt.User)
	}
	if !strings.Contains(prompt.User, `"question"`) || !strings.Contains(prompt.User, `"answer"`) {
		t.Error("User prompt should name the required JSON fields")
	}
}

func TestBuildResumePromptValidation(t *testing.T) {
	builder := NewPromptBuilder(testAIConfig())

	if _, err := builder.BuildResumePrompt(""); err == nil {
		t.Fatal("Expected a validation error for empty resume text")
	}
	if _, err := builder.BuildResumePrompt("  \n\t "); err == nil {
		t.Fatal("Expected a validation error for whitespace-only resume text")
	}

	prompt, err := builder.BuildResumePrompt("Senior Go developer with 8 years of distributed systems experience.")
	if err != nil {
		t.Fatalf("BuildResumePrompt failed: %v", err)
	}
	if !strings.Contains(prompt.User, "distributed systems") {
		t.Error("User prompt should embed the resume text")
	}
}

func TestBuildResumePromptTruncation(t *testing.T) {
	cfg := testAIConfig()
	cfg.MaxResumeChars = 100
	builder := NewPromptBuilder(cfg)

	long := strings.Repeat("Go developer. ", 50)
	prompt, err := builder.BuildResumePrompt(long)
	if err != nil {
		t.Fatalf("BuildResumePrompt failed: %v", err)
	}

	// The embedded resume is bounded even though the template and contract
	// add their own text around it.
	if strings.Contains(prompt.User, long) {
		t.Error("Resume text should have been truncated before embedding")
	}
	if !strings.Contains(prompt.User, long[:100]) {
		t.Error("Truncated prefix of the resume should still be embedded")
	}
}

func TestOutputContractSplit(t *testing.T) {
	tests := []struct {
		count         int
		wantTechnical int
		wantHR        int
	}{
		{5, 3, 2},
		{10, 6, 4},
		{1, 1, 0},
		{2, 1, 1},
	}

	for _, tt := range tests {
		cfg := testAIConfig()
		cfg.QuestionCount = tt.count
		builder := NewPromptBuilder(cfg)

		contract := builder.outputContract()
		if tt.wantHR > 0 {
			if !strings.Contains(contract, strconv.Itoa(tt.wantTechnical)+" technical") {
				t.Errorf("count %d: expected %d technical questions in contract:\n%s", tt.count, tt.wantTechnical, contract)
			}
			if !strings.Contains(contract, strconv.Itoa(tt.wantHR)+" HR/behavioral") {
				t.Errorf("count %d: expected %d HR questions in contract:\n%s", tt.count, tt.wantHR, contract)
			}
		} else if strings.Contains(contract, "technical questions and") {
			t.Errorf("count %d: contract should not mention a split when all questions are technical", tt.count)
		}
	}
}

func TestCustomPromptsOverrideDefaults(t *testing.T) {
	cfg := testAIConfig()
	cfg.CustomPrompts.SystemPrompts.RoleQuestions = "Custom interviewer instructions."
	cfg.CustomPrompts.UserPrompts.RoleQuestions = "Custom template for %s."
	builder := NewPromptBuilder(cfg)

	prompt, err := builder.BuildRolePrompt("Data Engineer")
	if err != nil {
		t.Fatalf("BuildRolePrompt failed: %v", err)
	}

	if prompt.System != "Custom interviewer instructions." {
		t.Errorf("Expected custom system prompt, got: %q", prompt.System)
	}
	if !strings.HasPrefix(prompt.User, "Custom template for Data Engineer.") {
		t.Errorf("Expected custom user template, got: %q", prompt.User)
	}
	// The contract still rides along with custom templates
	if !strings.Contains(prompt.User, "JSON array") {
		t.Error("Output contract should be appended to custom templates too")
	}
}

func TestResolvePromptPriority(t *testing.T) {
	tests := []struct {
		name     string
		loaded   string
		config   string
		fallback string
		want     string
	}{
		{"file wins", "from-file", "from-config", "default", "from-file"},
		{"config beats default", "", "from-config", "default", "from-config"},
		{"default as last resort", "", "", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolvePrompt(tt.loaded, tt.config, tt.fallback); got != tt.want {
				t.Errorf("resolvePrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under limit", "short", 100, "short"},
		{"exact limit", "12345", 5, "12345"},
		{"over limit", "123456", 5, "12345"},
		{"zero disables truncation", "anything", 0, "anything"},
		{"multibyte runes cut on boundary", "héllo wörld", 5, "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateText(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
