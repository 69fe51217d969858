// Package llm talks to chat-completion backends and drives the two-turn
// answer/verify conversation.
package llm

import (
	"context"
	"errors"
	"fmt"

	"repo-rag/internal/config"
	"repo-rag/internal/models"
)

// ErrBackend matches every *BackendError via errors.Is.
var ErrBackend = errors.New("llm backend failure")

// BackendError reports a failed model call. Turn is 1 for the initial
// answer and 2 for the verification turn.
type BackendError struct {
	Turn int
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("llm turn %d: %v", e.Turn, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// ChatRequest is one call to the backend. APIKey overrides the configured
// credential for this call only.
type ChatRequest struct {
	Turns  []models.ConversationTurn
	APIKey string
}

// Client sends a conversation and returns the assistant's reply.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (models.ConversationTurn, error)
	Model() string
}

// New builds the backend selected by cfg.Provider.
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIClient(cfg), nil
	case config.ProviderOllama:
		return NewOllamaClient(cfg.OllamaHost, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
