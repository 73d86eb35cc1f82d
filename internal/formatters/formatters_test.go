package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"qaforge/internal/types"
)

func sampleResult() types.QAResult {
	return types.QAResult{
		Role: "Backend Engineer",
		Type: "role_based",
		Pairs: []types.QAPair{
			{Question: "What is a goroutine?", Answer: "A lightweight thread managed by the Go runtime."},
			{Question: "How do channels work?", Answer: "They provide typed communication between goroutines."},
		},
		TotalQuestions: 2,
		Status:         types.StatusSuccess,
	}
}

func TestJSONFormatter(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(sampleResult(), "json")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded types.QAResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.TotalQuestions != 2 {
		t.Errorf("Expected 2 questions after round trip, got %d", decoded.TotalQuestions)
	}
}

func TestTextFormatter(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(sampleResult(), "text")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	for _, want := range []string{
		"Role: Backend Engineer",
		"1. What is a goroutine?",
		"2. How do channels work?",
		"Status: success",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownFormatter(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(sampleResult(), "markdown")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if !strings.HasPrefix(out, "# Interview Questions") {
		t.Errorf("Markdown output should start with a title:\n%s", out)
	}
	if !strings.Contains(out, "## 1. What is a goroutine?") {
		t.Errorf("Markdown output missing question heading:\n%s", out)
	}
	if !strings.Contains(out, "**Answer:**") {
		t.Errorf("Markdown output missing answer emphasis:\n%s", out)
	}
}

func TestFormatterResumeSubject(t *testing.T) {
	registry := NewFormatterRegistry()

	result := sampleResult()
	result.Role = ""
	result.Filename = "resume.pdf"
	result.Type = "resume_based"

	out, err := registry.Format(result, "text")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(out, "Resume: resume.pdf") {
		t.Errorf("Expected resume filename in output:\n%s", out)
	}
	if strings.Contains(out, "Role:") {
		t.Errorf("Resume results should not print a role line:\n%s", out)
	}
}

func TestFormatterEmptyResult(t *testing.T) {
	registry := NewFormatterRegistry()

	result := types.QAResult{
		Role:   "Backend Engineer",
		Type:   "role_based",
		Pairs:  []types.QAPair{},
		Status: types.StatusFailure,
	}

	out, err := registry.Format(result, "text")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(out, "No questions could be generated.") {
		t.Errorf("Expected empty-result message:\n%s", out)
	}
}

func TestUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()

	if _, err := registry.Format(sampleResult(), "yaml"); err == nil {
		t.Error("Expected an error for an unregistered format")
	}
}

func TestJSONFallbackForUnknownType(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(map[string]string{"hello": "world"}, "json")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(out, `"hello": "world"`) {
		t.Errorf("Unexpected JSON output: %s", out)
	}
}
