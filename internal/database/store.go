// Package database persists the runtime-editable settings: prompts,
// project metadata and example snippets.
package database

import (
	"context"
	"errors"

	"repo-rag/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrUnknownPrompt is returned for a prompt name other than the known ones
var ErrUnknownPrompt = errors.New("unknown prompt")

// Editable prompt names.
const (
	PromptSystem   = "system"
	PromptFollowUp = "follow_up"
)

// ValidPrompt reports whether name is an editable prompt.
func ValidPrompt(name string) bool {
	return name == PromptSystem || name == PromptFollowUp
}

// SettingsStore defines the contract for settings access
type SettingsStore interface {
	Settings(ctx context.Context) (models.Settings, error)
	SetPrompt(ctx context.Context, name, text string) error
	SetProject(ctx context.Context, project models.Project) error
	ListExamples(ctx context.Context) ([]models.Example, error)
	AddExample(ctx context.Context, content string) (models.Example, error)
	DeleteExample(ctx context.Context, id int64) error
	Close()
}
