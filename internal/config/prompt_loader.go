package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads custom prompts from external files if file
// paths are specified, replacing the loaded prompt set as a whole
func (c *Config) loadPromptsFromFiles() error {
	var loaded LoadedPrompts

	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loaded.SystemPrompts); err != nil {
		return fmt.Errorf("failed to load system prompts: %w", err)
	}
	if err := c.loadUserPromptsFromFiles(&c.AI.CustomPrompts.UserPrompts, &loaded.UserPrompts); err != nil {
		return fmt.Errorf("failed to load user prompts: %w", err)
	}

	setLoadedPrompts(loaded)
	c.logPromptLoadingSummary(loaded)

	return nil
}

// ReloadPrompts re-reads prompt files after validating them. Used by the
// prompt watcher on file change events.
func (c *Config) ReloadPrompts() error {
	if err := c.validatePromptFiles(); err != nil {
		return err
	}
	return c.loadPromptsFromFiles()
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.RoleQuestionsFile != "" {
		content, err := c.loadPromptFromFile(prompts.RoleQuestionsFile, "system", "roleQuestions")
		if err != nil {
			return err
		}
		target.RoleQuestions = content
	}

	if prompts.ResumeQuestionsFile != "" {
		content, err := c.loadPromptFromFile(prompts.ResumeQuestionsFile, "system", "resumeQuestions")
		if err != nil {
			return err
		}
		target.ResumeQuestions = content
	}

	return nil
}

// loadUserPromptsFromFiles loads user prompts from files if file paths are specified
func (c *Config) loadUserPromptsFromFiles(prompts *UserPrompts, target *LoadedUserPrompts) error {
	if prompts.RoleQuestionsFile != "" {
		content, err := c.loadPromptFromFile(prompts.RoleQuestionsFile, "user", "roleQuestions")
		if err != nil {
			return err
		}
		target.RoleQuestions = content
	}

	if prompts.ResumeQuestionsFile != "" {
		content, err := c.loadPromptFromFile(prompts.ResumeQuestionsFile, "user", "resumeQuestions")
		if err != nil {
			return err
		}
		target.ResumeQuestions = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	validateFile(c.AI.CustomPrompts.SystemPrompts.RoleQuestionsFile, "system", "roleQuestions")
	validateFile(c.AI.CustomPrompts.SystemPrompts.ResumeQuestionsFile, "system", "resumeQuestions")
	validateFile(c.AI.CustomPrompts.UserPrompts.RoleQuestionsFile, "user", "roleQuestions")
	validateFile(c.AI.CustomPrompts.UserPrompts.ResumeQuestionsFile, "user", "resumeQuestions")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// promptFiles returns the configured prompt file paths, if any
func (c *Config) promptFiles() []string {
	var files []string
	for _, f := range []string{
		c.AI.CustomPrompts.SystemPrompts.RoleQuestionsFile,
		c.AI.CustomPrompts.SystemPrompts.ResumeQuestionsFile,
		c.AI.CustomPrompts.UserPrompts.RoleQuestionsFile,
		c.AI.CustomPrompts.UserPrompts.ResumeQuestionsFile,
	} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary(loaded LoadedPrompts) {
	promptChecks := []struct {
		content string
		message string
	}{
		{loaded.SystemPrompts.RoleQuestions, "[CONFIG] System role-questions prompt: loaded from file"},
		{loaded.SystemPrompts.ResumeQuestions, "[CONFIG] System resume-questions prompt: loaded from file"},
		{loaded.UserPrompts.RoleQuestions, "[CONFIG] User role-questions prompt: loaded from file"},
		{loaded.UserPrompts.ResumeQuestions, "[CONFIG] User resume-questions prompt: loaded from file"},
	}

	promptCount := 0
	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}
}
