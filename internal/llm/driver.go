package llm

import (
	"context"
	"log/slog"
	"strings"

	"repo-rag/internal/models"
)

// DefaultFollowUp is the verification prompt sent after every first answer.
const DefaultFollowUp = "Are you sure? Think carefully."

// Conversation is the outcome of the two turns.
type Conversation struct {
	First  models.ConversationTurn
	Second models.ConversationTurn
}

// Driver runs the answer turn followed by a fixed verification turn.
type Driver struct {
	Client   Client
	FollowUp string
}

// NewDriver returns a Driver using DefaultFollowUp.
func NewDriver(client Client) *Driver {
	return &Driver{Client: client, FollowUp: DefaultFollowUp}
}

// Converse sends prompt, then replays it with the first answer and its
// reasoning before asking the follow-up. followUp overrides the driver's
// follow-up when non-empty. Either failure is returned as *BackendError.
func (d *Driver) Converse(ctx context.Context, prompt, followUp, apiKey string) (Conversation, error) {
	if strings.TrimSpace(followUp) == "" {
		followUp = d.FollowUp
	}
	if strings.TrimSpace(followUp) == "" {
		followUp = DefaultFollowUp
	}

	user := models.ConversationTurn{Role: models.RoleUser, Content: prompt}

	first, err := d.Client.Chat(ctx, ChatRequest{
		Turns:  []models.ConversationTurn{user},
		APIKey: apiKey,
	})
	if err != nil {
		return Conversation{}, &BackendError{Turn: 1, Err: err}
	}
	slog.DebugContext(ctx, "first turn complete",
		"model", d.Client.Model(),
		"chars", len(first.Content),
		"reasoning", len(first.Reasoning) > 0)

	answer := models.ConversationTurn{
		Role:      models.RoleAssistant,
		Content:   first.Content,
		Reasoning: first.Reasoning,
	}
	second, err := d.Client.Chat(ctx, ChatRequest{
		Turns: []models.ConversationTurn{
			user,
			answer,
			{Role: models.RoleUser, Content: followUp},
		},
		APIKey: apiKey,
	})
	if err != nil {
		return Conversation{}, &BackendError{Turn: 2, Err: err}
	}

	return Conversation{First: answer, Second: second}, nil
}
