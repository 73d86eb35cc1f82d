package config

import (
	"sync"
)

var (
	loadedPromptsMu sync.RWMutex
	loadedPrompts   LoadedPrompts
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	RoleQuestions   string
	ResumeQuestions string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	RoleQuestions   string
	ResumeQuestions string
}

// GetLoadedPrompts returns a copy of the currently loaded prompts.
// Safe to call concurrently with prompt hot reloads.
func GetLoadedPrompts() LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

// setLoadedPrompts atomically replaces the loaded prompt set
func setLoadedPrompts(p LoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = p
}
