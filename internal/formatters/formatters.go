package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"qaforge/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "QAResult", &QATextFormatter{})
	registry.RegisterFormatter("markdown", "QAResult", &QAMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

func getDataType(data any) string {
	switch data.(type) {
	case types.QAResult:
		return "QAResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// QATextFormatter handles text formatting for question/answer results
type QATextFormatter struct{}

func (qtf *QATextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.QAResult)
	if !ok {
		return "", fmt.Errorf("expected QAResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== INTERVIEW QUESTIONS ===\n\n")
	writeSubjectText(&output, result)
	output.WriteString(fmt.Sprintf("Questions: %d\n", result.TotalQuestions))
	output.WriteString(fmt.Sprintf("Status: %s\n\n", result.Status))

	if len(result.Pairs) == 0 {
		output.WriteString("No questions could be generated.\n")
		return output.String(), nil
	}

	for i, pair := range result.Pairs {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, pair.Question))
		output.WriteString("   Answer: ")
		output.WriteString(pair.Answer)
		output.WriteString("\n\n")
	}

	return output.String(), nil
}

func (qtf *QATextFormatter) SupportedType() string {
	return "QAResult"
}

// QAMarkdownFormatter handles markdown formatting for question/answer results
type QAMarkdownFormatter struct{}

func (qmf *QAMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.QAResult)
	if !ok {
		return "", fmt.Errorf("expected QAResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Interview Questions\n\n")
	writeSubjectMarkdown(&output, result)
	output.WriteString(fmt.Sprintf("**Questions:** %d\n\n", result.TotalQuestions))
	output.WriteString(fmt.Sprintf("**Status:** %s\n\n", result.Status))

	if len(result.Pairs) == 0 {
		output.WriteString("No questions could be generated.\n")
		return output.String(), nil
	}

	for i, pair := range result.Pairs {
		output.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, pair.Question))
		output.WriteString("**Answer:** ")
		output.WriteString(pair.Answer)
		output.WriteString("\n\n")
	}

	return output.String(), nil
}

func (qmf *QAMarkdownFormatter) SupportedType() string {
	return "QAResult"
}

func writeSubjectText(output *strings.Builder, result types.QAResult) {
	if result.Role != "" {
		output.WriteString(fmt.Sprintf("Role: %s\n", result.Role))
	}
	if result.Filename != "" {
		output.WriteString(fmt.Sprintf("Resume: %s\n", result.Filename))
	}
}

func writeSubjectMarkdown(output *strings.Builder, result types.QAResult) {
	if result.Role != "" {
		output.WriteString(fmt.Sprintf("**Role:** %s\n\n", result.Role))
	}
	if result.Filename != "" {
		output.WriteString(fmt.Sprintf("**Resume:** %s\n\n", result.Filename))
	}
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
