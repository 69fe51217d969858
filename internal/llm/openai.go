package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"repo-rag/internal/config"
	"repo-rag/internal/models"
)

// OpenAIClient speaks the OpenAI chat-completions protocol. The default
// base URL points at OpenRouter, which accepts the reasoning extension.
type OpenAIClient struct {
	client    openai.Client
	model     string
	reasoning bool
}

// NewOpenAIClient creates a client from cfg. An empty API key is allowed;
// callers may supply one per request.
func NewOpenAIClient(cfg config.LLMConfig, extra ...option.RequestOption) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.APIURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	opts = append(opts, extra...)

	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		reasoning: cfg.Reasoning,
	}
}

func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (models.ConversationTurn, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns))
	var opts []option.RequestOption

	for i, turn := range req.Turns {
		switch turn.Role {
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
			if len(turn.Reasoning) > 0 {
				opts = append(opts, option.WithJSONSet(fmt.Sprintf("messages.%d.reasoning_details", i), turn.Reasoning))
			}
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	if c.reasoning {
		opts = append(opts, option.WithJSONSet("reasoning", map[string]any{"enabled": true}))
	}
	if req.APIKey != "" {
		opts = append(opts, option.WithAPIKey(req.APIKey))
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return models.ConversationTurn{}, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.ConversationTurn{}, fmt.Errorf("no choices in response")
	}

	slog.DebugContext(ctx, "llm chat completed",
		"model", c.model,
		"turns", len(req.Turns),
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	msg := resp.Choices[0].Message
	return models.ConversationTurn{
		Role:      models.RoleAssistant,
		Content:   msg.Content,
		Reasoning: reasoningDetails(msg.RawJSON()),
	}, nil
}

// reasoningDetails pulls the provider's reasoning payload out of the raw
// message without interpreting it.
func reasoningDetails(raw string) json.RawMessage {
	if raw == "" {
		return nil
	}
	var msg struct {
		ReasoningDetails json.RawMessage `json:"reasoning_details"`
	}
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil
	}
	if len(msg.ReasoningDetails) == 0 || string(msg.ReasoningDetails) == "null" {
		return nil
	}
	return msg.ReasoningDetails
}
