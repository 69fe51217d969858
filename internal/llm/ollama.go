package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"repo-rag/internal/models"
)

// OllamaClient handles interactions with a local Ollama server
type OllamaClient struct {
	Client *api.Client
	model  string
}

// NewOllamaClient creates a client for host, falling back to OLLAMA_HOST
// and then the Ollama default when host is empty.
func NewOllamaClient(host string, model string) (*OllamaClient, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		hostURL = u
	}

	return &OllamaClient{
		Client: api.NewClient(hostURL, http.DefaultClient),
		model:  model,
	}, nil
}

func (o *OllamaClient) Model() string {
	return o.model
}

// Chat sends the conversation and collects the streamed reply. Ollama has
// no reasoning payload, and the per-request API key is ignored.
func (o *OllamaClient) Chat(ctx context.Context, req ChatRequest) (models.ConversationTurn, error) {
	messages := make([]api.Message, 0, len(req.Turns))
	for _, turn := range req.Turns {
		messages = append(messages, api.Message{Role: turn.Role, Content: turn.Content})
	}

	stream := false
	chatReq := api.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &stream,
	}

	var responseBuilder strings.Builder
	err := o.Client.Chat(ctx, &chatReq, func(resp api.ChatResponse) error {
		_, err := responseBuilder.WriteString(resp.Message.Content)
		return err
	})
	if err != nil {
		return models.ConversationTurn{}, fmt.Errorf("ollama chat: %w", err)
	}

	return models.ConversationTurn{
		Role:    models.RoleAssistant,
		Content: responseBuilder.String(),
	}, nil
}
