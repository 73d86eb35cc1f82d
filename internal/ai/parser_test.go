package ai

import (
	"testing"

	"qaforge/internal/types"
)

func TestParseResponseStrict(t *testing.T) {
	raw := `[
		{"question": "What is a goroutine?", "answer": "A lightweight thread managed by the Go runtime."},
		{"question": "Why do you want this job?", "answer": "I want to grow as an engineer."}
	]`

	outcome := ParseResponse(raw, 2)

	if outcome.Strategy != StrategyStrict {
		t.Errorf("Expected strategy %q, got %q", StrategyStrict, outcome.Strategy)
	}
	if outcome.Status != types.StatusSuccess {
		t.Errorf("Expected status %q, got %q", types.StatusSuccess, outcome.Status)
	}
	if len(outcome.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(outcome.Pairs))
	}
	if outcome.Pairs[0].Question != "What is a goroutine?" {
		t.Errorf("Unexpected first question: %q", outcome.Pairs[0].Question)
	}
}

func TestParseResponseStrictEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "questions_and_answers wrapper",
			raw:  `{"questions_and_answers": [{"question": "Q1?", "answer": "A1"}]}`,
		},
		{
			name: "questions wrapper",
			raw:  `{"questions": [{"question": "Q1?", "answer": "A1"}]}`,
		},
		{
			name: "single object",
			raw:  `{"question": "Q1?", "answer": "A1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ParseResponse(tt.raw, 1)
			if outcome.Strategy != StrategyStrict {
				t.Errorf("Expected strategy %q, got %q", StrategyStrict, outcome.Strategy)
			}
			if len(outcome.Pairs) != 1 {
				t.Fatalf("Expected 1 pair, got %d", len(outcome.Pairs))
			}
			if outcome.Pairs[0].Question != "Q1?" || outcome.Pairs[0].Answer != "A1" {
				t.Errorf("Unexpected pair: %+v", outcome.Pairs[0])
			}
		})
	}
}

func TestParseResponseLenient(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "code fenced",
			raw:  "```json\n[{\"question\": \"Q1?\", \"answer\": \"A1\"}]\n```",
		},
		{
			name: "surrounding prose",
			raw:  "Here are your questions:\n[{\"question\": \"Q1?\", \"answer\": \"A1\"}]\nGood luck!",
		},
		{
			name: "brackets inside strings",
			raw:  `Sure! [{"question": "What does arr[0] return?", "answer": "The first element."}] Done.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ParseResponse(tt.raw, 1)
			if outcome.Strategy != StrategyLenient {
				t.Errorf("Expected strategy %q, got %q", StrategyLenient, outcome.Strategy)
			}
			if outcome.Status != types.StatusSuccess {
				t.Errorf("Expected status %q, got %q", types.StatusSuccess, outcome.Status)
			}
			if len(outcome.Pairs) != 1 {
				t.Fatalf("Expected 1 pair, got %d", len(outcome.Pairs))
			}
		})
	}
}

func TestParseResponseHeuristic(t *testing.T) {
	raw := `1. What is a channel?
A: A typed conduit for communication between goroutines.

2. Tell me about a conflict you resolved?
Answer: I mediated a disagreement about API design by prototyping both options.`

	outcome := ParseResponse(raw, 2)

	if outcome.Strategy != StrategyHeuristic {
		t.Errorf("Expected strategy %q, got %q", StrategyHeuristic, outcome.Strategy)
	}
	if outcome.Status != types.StatusSuccess {
		t.Errorf("Expected status %q, got %q", types.StatusSuccess, outcome.Status)
	}
	if len(outcome.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(outcome.Pairs))
	}
	if outcome.Pairs[0].Question != "What is a channel?" {
		t.Errorf("Numbering prefix not stripped: %q", outcome.Pairs[0].Question)
	}
	if outcome.Pairs[0].Answer != "A typed conduit for communication between goroutines." {
		t.Errorf("Answer prefix not stripped: %q", outcome.Pairs[0].Answer)
	}
	if outcome.Pairs[1].Answer == "" {
		t.Error("Second answer should not be empty")
	}
}

func TestParseResponseHeuristicMultiLineAnswers(t *testing.T) {
	raw := `What is the difference between a slice and an array?
Arrays have fixed length.
Slices are views over arrays and can grow.`

	outcome := ParseResponse(raw, 1)

	if len(outcome.Pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(outcome.Pairs))
	}
	want := "Arrays have fixed length. Slices are views over arrays and can grow."
	if outcome.Pairs[0].Answer != want {
		t.Errorf("Expected joined answer %q, got %q", want, outcome.Pairs[0].Answer)
	}
}

func TestParseResponseCountPolicy(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		expected   int
		wantPairs  int
		wantStatus types.Status
	}{
		{
			name:       "more than expected truncates",
			raw:        `[{"question":"Q1?","answer":"A"},{"question":"Q2?","answer":"A"},{"question":"Q3?","answer":"A"}]`,
			expected:   2,
			wantPairs:  2,
			wantStatus: types.StatusSuccess,
		},
		{
			name:       "fewer than expected is partial",
			raw:        `[{"question":"Q1?","answer":"A"}]`,
			expected:   5,
			wantPairs:  1,
			wantStatus: types.StatusPartial,
		},
		{
			name:       "exact count is success",
			raw:        `[{"question":"Q1?","answer":"A"},{"question":"Q2?","answer":"A"}]`,
			expected:   2,
			wantPairs:  2,
			wantStatus: types.StatusSuccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ParseResponse(tt.raw, tt.expected)
			if len(outcome.Pairs) != tt.wantPairs {
				t.Errorf("Expected %d pairs, got %d", tt.wantPairs, len(outcome.Pairs))
			}
			if outcome.Status != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, outcome.Status)
			}
		})
	}
}

func TestParseResponseFailure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty reply", ""},
		{"whitespace only", "   \n\t  "},
		{"prose without questions", "I am sorry, I cannot help with that request."},
		{"empty array", "[]"},
		{"pairs with empty questions", `[{"question": "", "answer": "orphaned"}]`},
		{"pairs with empty answers", `[{"question": "Q1?", "answer": ""},{"question": "Q2?", "answer": "   "}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ParseResponse(tt.raw, 5)
			if outcome.Status != types.StatusFailure {
				t.Errorf("Expected status %q, got %q", types.StatusFailure, outcome.Status)
			}
			if outcome.Strategy != StrategyNone {
				t.Errorf("Expected strategy %q, got %q", StrategyNone, outcome.Strategy)
			}
			if outcome.Pairs == nil {
				t.Error("Failure outcome must carry an empty slice, not nil")
			}
			if len(outcome.Pairs) != 0 {
				t.Errorf("Expected 0 pairs, got %d", len(outcome.Pairs))
			}
		})
	}
}

func TestParseResponseDropsEmptyAnswerPairs(t *testing.T) {
	// A structured reply where one answer is blank must not count that
	// pair toward the total.
	raw := `[
		{"question": "Q1?", "answer": "A1"},
		{"question": "Q2?", "answer": "A2"},
		{"question": "Q3?", "answer": "A3"},
		{"question": "Q4?", "answer": "A4"},
		{"question": "Q5?", "answer": "   "}
	]`

	outcome := ParseResponse(raw, 5)

	if outcome.Status != types.StatusPartial {
		t.Errorf("Expected status %q, got %q", types.StatusPartial, outcome.Status)
	}
	if len(outcome.Pairs) != 4 {
		t.Fatalf("Expected 4 pairs after dropping the blank answer, got %d", len(outcome.Pairs))
	}
	for _, pair := range outcome.Pairs {
		if pair.Answer == "" {
			t.Errorf("Pair %q carries an empty answer", pair.Question)
		}
	}
}

func TestParseResponseHeuristicDropsUnansweredQuestion(t *testing.T) {
	raw := `1. What is a goroutine?
A lightweight thread managed by the Go runtime.
2. What is a channel?`

	outcome := ParseResponse(raw, 2)

	if outcome.Status != types.StatusPartial {
		t.Errorf("Expected status %q, got %q", types.StatusPartial, outcome.Status)
	}
	if len(outcome.Pairs) != 1 {
		t.Fatalf("Expected only the answered question, got %d pairs", len(outcome.Pairs))
	}
	if outcome.Pairs[0].Question != "What is a goroutine?" {
		t.Errorf("Unexpected surviving question: %q", outcome.Pairs[0].Question)
	}
}

func TestParseResponseDeduplication(t *testing.T) {
	raw := `[
		{"question": "Q1?", "answer": "A1"},
		{"question": "Q1?", "answer": "A1"},
		{"question": "Q1?", "answer": "different answer"},
		{"question": "Q2?", "answer": "A2"}
	]`

	outcome := ParseResponse(raw, 5)

	// Only byte-identical pairs collapse; a repeated question with a new
	// answer survives.
	if len(outcome.Pairs) != 3 {
		t.Fatalf("Expected 3 pairs after deduplication, got %d", len(outcome.Pairs))
	}
	if outcome.Pairs[0].Answer != "A1" || outcome.Pairs[1].Answer != "different answer" {
		t.Error("Deduplication should preserve first-seen order")
	}
	if outcome.Status != types.StatusPartial {
		t.Errorf("Expected status %q, got %q", types.StatusPartial, outcome.Status)
	}
}

func TestParseResponseIdempotent(t *testing.T) {
	raw := "```json\n[{\"question\": \"Q1?\", \"answer\": \"A1\"}, {\"question\": \"Q2?\", \"answer\": \"A2\"}]\n```"

	first := ParseResponse(raw, 2)
	second := ParseResponse(raw, 2)

	if first.Strategy != second.Strategy || first.Status != second.Status {
		t.Error("Parsing the same reply twice should give the same outcome")
	}
	if len(first.Pairs) != len(second.Pairs) {
		t.Fatalf("Pair counts differ: %d vs %d", len(first.Pairs), len(second.Pairs))
	}
	for i := range first.Pairs {
		if first.Pairs[i] != second.Pairs[i] {
			t.Errorf("Pair %d differs between runs", i)
		}
	}
}

func TestExtractFirstJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain array", `[1, 2]`, `[1, 2]`},
		{"prose around object", `text {"a": 1} more`, `{"a": 1}`},
		{"nested brackets", `x [[1], [2]] y`, `[[1], [2]]`},
		{"bracket in string", `[{"q": "arr[0]?"}]`, `[{"q": "arr[0]?"}]`},
		{"escaped quote in string", `[{"q": "say \"hi[\" now"}]`, `[{"q": "say \"hi[\" now"}]`},
		{"unbalanced", `[1, 2`, ""},
		{"no json", `plain text`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractFirstJSON(tt.in); got != tt.want {
				t.Errorf("extractFirstJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func BenchmarkParseResponseStrict(b *testing.B) {
	raw := `[{"question":"Q1?","answer":"A1"},{"question":"Q2?","answer":"A2"},{"question":"Q3?","answer":"A3"},{"question":"Q4?","answer":"A4"},{"question":"Q5?","answer":"A5"}]`
	for b.Loop() {
		ParseResponse(raw, 5)
	}
}

func BenchmarkParseResponseHeuristic(b *testing.B) {
	raw := "1. What is a channel?\nA typed conduit.\n2. What is a mutex?\nA lock.\n3. What is a slice?\nA view over an array.\n"
	for b.Loop() {
		ParseResponse(raw, 3)
	}
}
