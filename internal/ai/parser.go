package ai

import (
	"encoding/json"
	"strings"

	"qaforge/internal/types"
)

// Parse strategy names, recorded in metrics and trace spans.
const (
	StrategyStrict    = "strict"
	StrategyLenient   = "lenient"
	StrategyHeuristic = "heuristic"
	StrategyNone      = "none"
)

// ParseOutcome is the result of parsing a raw model reply
type ParseOutcome struct {
	Pairs    []types.QAPair
	Status   types.Status
	Strategy string
}

// ParseResponse turns a raw model reply into question/answer pairs. It is
// pure and idempotent and never returns an error: strategies are tried in
// a fixed order and the first one that recovers at least one valid pair
// wins. More pairs than expected are truncated; fewer mark the outcome
// partial; none at all mark it failure with an empty (non-nil) pair slice.
func ParseResponse(raw string, expected int) ParseOutcome {
	type strategy struct {
		name string
		fn   func(string) []types.QAPair
	}

	strategies := []strategy{
		{StrategyStrict, parseStrict},
		{StrategyLenient, parseLenient},
		{StrategyHeuristic, parseHeuristic},
	}

	for _, s := range strategies {
		pairs := sanitizePairs(s.fn(raw))
		if len(pairs) == 0 {
			continue
		}

		status := types.StatusSuccess
		if len(pairs) > expected {
			pairs = pairs[:expected]
		} else if len(pairs) < expected {
			status = types.StatusPartial
		}

		return ParseOutcome{Pairs: pairs, Status: status, Strategy: s.name}
	}

	return ParseOutcome{Pairs: []types.QAPair{}, Status: types.StatusFailure, Strategy: StrategyNone}
}

// pairEnvelope covers the object shapes models wrap pair arrays in
type pairEnvelope struct {
	QuestionsAndAnswers []types.QAPair `json:"questions_and_answers"`
	Questions           []types.QAPair `json:"questions"`
	Pairs               []types.QAPair `json:"pairs"`
	Data                []types.QAPair `json:"data"`
}

// parseStrict decodes the whole trimmed reply as structured JSON
func parseStrict(raw string) []types.QAPair {
	return decodePairs(strings.TrimSpace(raw))
}

// parseLenient strips markdown code fences and surrounding prose, then
// decodes the first balanced JSON value found
func parseLenient(raw string) []types.QAPair {
	cleaned := stripCodeFences(raw)
	if pairs := decodePairs(cleaned); pairs != nil {
		return pairs
	}

	if fragment := extractFirstJSON(cleaned); fragment != "" {
		return decodePairs(fragment)
	}
	return nil
}

// decodePairs decodes s as a pair array, a wrapping object, or a single pair
func decodePairs(s string) []types.QAPair {
	if s == "" {
		return nil
	}

	var pairs []types.QAPair
	if err := json.Unmarshal([]byte(s), &pairs); err == nil {
		return pairs
	}

	var envelope pairEnvelope
	if err := json.Unmarshal([]byte(s), &envelope); err == nil {
		for _, candidate := range [][]types.QAPair{
			envelope.QuestionsAndAnswers,
			envelope.Questions,
			envelope.Pairs,
			envelope.Data,
		} {
			if len(candidate) > 0 {
				return candidate
			}
		}
	}

	var single types.QAPair
	if err := json.Unmarshal([]byte(s), &single); err == nil && single.Question != "" {
		return []types.QAPair{single}
	}

	return nil
}

// stripCodeFences removes markdown code fences around a reply
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractFirstJSON returns the first balanced JSON array or object in s,
// tracking string literals so brackets inside quoted text don't count
func extractFirstJSON(s string) string {
	start := -1
	var open, closing byte
	for i := 0; i < len(s); i++ {
		if s[i] == '[' || s[i] == '{' {
			start = i
			open = s[i]
			if open == '[' {
				closing = ']'
			} else {
				closing = '}'
			}
			break
		}
	}
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == open:
			depth++
		case !inString && c == closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// parseHeuristic splits free text into pairs: a line ending in '?' or
// carrying a numbered prefix starts a question, following lines up to the
// next question are its answer
func parseHeuristic(raw string) []types.QAPair {
	var pairs []types.QAPair
	var current *types.QAPair
	var answer strings.Builder

	flush := func() {
		if current == nil {
			return
		}
		current.Answer = strings.TrimSpace(answer.String())
		pairs = append(pairs, *current)
		current = nil
		answer.Reset()
	}

	for line := range strings.Lines(raw) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isQuestionLine(line) {
			flush()
			current = &types.QAPair{Question: stripQuestionPrefix(line)}
			continue
		}

		if current != nil {
			if answer.Len() > 0 {
				answer.WriteByte(' ')
			}
			answer.WriteString(stripAnswerPrefix(line))
		}
	}
	flush()

	return pairs
}

// isQuestionLine reports whether a text line starts a new question
func isQuestionLine(line string) bool {
	if strings.HasSuffix(line, "?") {
		return true
	}
	return numberedPrefixLen(line) > 0
}

// numberedPrefixLen returns the length of a leading "1." / "2)" style
// prefix, or 0 when the line has none
func numberedPrefixLen(line string) int {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return 0
	}
	if line[i] != '.' && line[i] != ')' {
		return 0
	}
	return i + 1
}

// stripQuestionPrefix removes numbering and "Q:" markers from a question line
func stripQuestionPrefix(line string) string {
	if n := numberedPrefixLen(line); n > 0 {
		line = strings.TrimSpace(line[n:])
	}
	for _, marker := range []string{"Q:", "Question:"} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			line = strings.TrimSpace(rest)
			break
		}
	}
	return line
}

// stripAnswerPrefix removes "A:" markers from an answer line
func stripAnswerPrefix(line string) string {
	for _, marker := range []string{"A:", "Answer:"} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimSpace(rest)
		}
	}
	return line
}

// sanitizePairs trims pair fields, drops pairs missing a question or an
// answer and removes byte-identical duplicates while preserving order
func sanitizePairs(pairs []types.QAPair) []types.QAPair {
	if len(pairs) == 0 {
		return nil
	}

	seen := make(map[types.QAPair]struct{}, len(pairs))
	result := make([]types.QAPair, 0, len(pairs))
	for _, pair := range pairs {
		pair.Question = strings.TrimSpace(pair.Question)
		pair.Answer = strings.TrimSpace(pair.Answer)
		if pair.Question == "" || pair.Answer == "" {
			continue
		}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		result = append(result, pair)
	}
	return result
}
