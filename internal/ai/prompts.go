package ai

import (
	"fmt"
	"strings"

	"qaforge/internal/config"
	"qaforge/internal/errors"
)

// SystemPrompts contains all system-level instructions for generation requests
type SystemPrompts struct {
	RoleQuestions   string
	ResumeQuestions string
}

// UserPrompts contains user-level prompt templates. Each template takes a
// single %s placeholder: the job role or the extracted resume text. The
// JSON output contract is appended by the builder and never comes from a
// template, so custom prompts cannot break the response shape.
type UserPrompts struct {
	RoleQuestions   string
	ResumeQuestions string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	RoleQuestions: `You are an experienced technical interviewer and hiring coach. Your core principles are:

- Ask questions a real interviewer would ask for the given role
- Keep questions specific to the role, not generic filler
- Provide strong, concrete sample answers a well-prepared candidate could give
- Technical questions must test practical knowledge; HR questions must probe motivation and fit`,

	ResumeQuestions: `You are an experienced technical interviewer preparing for a candidate screening. Your core principles are:

- Ground every question in the candidate's actual resume content
- Never invent experience the resume does not mention
- Probe the depth of the listed skills and projects
- Provide sample answers consistent with what the resume claims`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	RoleQuestions: `Generate interview questions with strong sample answers for a candidate applying for the following role.

**Role:**
-----
%s
-----`,

	ResumeQuestions: `Generate interview questions with strong sample answers tailored to the following candidate resume. Base every question on skills, projects, or experience the resume actually mentions.

**Resume:**
-----
%s
-----`,
}

// PromptBuilder assembles backend prompts for generation requests.
// Building is pure: no IO beyond reading the already-loaded prompt set.
type PromptBuilder struct {
	questionCount  int
	maxResumeChars int
	customPrompts  config.PromptConfig
}

// NewPromptBuilder creates a prompt builder from the AI configuration
func NewPromptBuilder(cfg *config.AIConfig) *PromptBuilder {
	return &PromptBuilder{
		questionCount:  cfg.QuestionCount,
		maxResumeChars: cfg.MaxResumeChars,
		customPrompts:  cfg.CustomPrompts,
	}
}

// QuestionCount returns the number of pairs each generation requests
func (b *PromptBuilder) QuestionCount() int {
	return b.questionCount
}

// BuildRolePrompt builds the prompt for a role-based request. The role is
// trimmed and must be at least two characters long.
func (b *PromptBuilder) BuildRolePrompt(role string) (Prompt, error) {
	role = strings.TrimSpace(role)
	if len(role) < 2 {
		return Prompt{}, errors.NewValidationError(errors.ErrCodeEmptyRole,
			"Role must be at least 2 characters long", nil)
	}

	loaded := config.GetLoadedPrompts()
	systemPrompt := resolvePrompt(
		loaded.SystemPrompts.RoleQuestions,
		b.customPrompts.SystemPrompts.RoleQuestions,
		DefaultSystemPrompts.RoleQuestions,
	)
	userTemplate := resolvePrompt(
		loaded.UserPrompts.RoleQuestions,
		b.customPrompts.UserPrompts.RoleQuestions,
		DefaultUserPrompts.RoleQuestions,
	)

	return Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(userTemplate, role) + "\n\n" + b.outputContract(),
	}, nil
}

// BuildResumePrompt builds the prompt for a resume-based request. The text
// is trimmed, must be non-empty, and is truncated to the configured bound
// before embedding.
func (b *PromptBuilder) BuildResumePrompt(resumeText string) (Prompt, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return Prompt{}, errors.NewValidationError(errors.ErrCodeEmptyResume,
			"Resume text is empty", nil)
	}

	resumeText = truncateText(resumeText, b.maxResumeChars)

	loaded := config.GetLoadedPrompts()
	systemPrompt := resolvePrompt(
		loaded.SystemPrompts.ResumeQuestions,
		b.customPrompts.SystemPrompts.ResumeQuestions,
		DefaultSystemPrompts.ResumeQuestions,
	)
	userTemplate := resolvePrompt(
		loaded.UserPrompts.ResumeQuestions,
		b.customPrompts.UserPrompts.ResumeQuestions,
		DefaultUserPrompts.ResumeQuestions,
	)

	return Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(userTemplate, resumeText) + "\n\n" + b.outputContract(),
	}, nil
}

// outputContract renders the JSON reply contract appended to every user
// prompt. Three fifths of the requested pairs are technical and the rest
// HR/behavioral, which keeps the classic 3/2 split at the default count.
func (b *PromptBuilder) outputContract() string {
	technical := b.questionCount * 3 / 5
	if technical == 0 {
		technical = b.questionCount
	}
	hr := b.questionCount - technical

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate exactly %d question/answer pairs", b.questionCount)
	if hr > 0 {
		fmt.Fprintf(&sb, ": %d technical questions and %d HR/behavioral questions", technical, hr)
	}
	sb.WriteString(".\n")
	fmt.Fprintf(&sb, "Return ONLY a JSON array of exactly %d objects. Each object must have exactly two string fields: \"question\" and \"answer\".\n", b.questionCount)
	sb.WriteString("Do not wrap the array in markdown code fences. Do not add numbering, commentary, or any text outside the JSON array.")
	return sb.String()
}

// truncateText bounds s to maxChars, cutting at a rune boundary
func truncateText(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
