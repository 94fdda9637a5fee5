// Package llm talks to the chat backend over the OpenAI-compatible API.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/config"
	"github.com/paisapal/paisapal-go/internal/logger"
)

// ErrNotConfigured is returned when no API key is set for the chat backend.
var ErrNotConfigured = errors.New("llm: chat backend API key not configured")

// Source is one reference the model cited for its answer.
type Source struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// Request carries one chat turn to the backend.
type Request struct {
	Query       string
	UserID      string
	UserContext map[string]any
	History     []chat.Turn
}

// Reply is the backend's structured answer. When the model answers with
// plain prose only Response is set. A populated Error means the backend
// rejected the turn; Chat surfaces it as an error instead of a Reply.
type Reply struct {
	Response          string         `json:"response"`
	Error             string         `json:"error,omitempty"`
	ActionType        string         `json:"action_type,omitempty"`
	ActionData        map[string]any `json:"action_data,omitempty"`
	NeedsConfirmation bool           `json:"needs_confirmation,omitempty"`
	Sources           []Source       `json:"sources,omitempty"`
}

// Client is the narrow chat-layer contract the agent depends on.
type Client interface {
	Chat(ctx context.Context, req Request) (Reply, error)
}

// completionAPI is the subset of the openai client used here; it keeps the
// OpenAI client mockable in tests.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI is the production Client over an OpenAI-compatible endpoint.
type OpenAI struct {
	api          completionAPI
	model        string
	systemPrompt string
	configured   bool
}

const defaultSystemPrompt = "You are a personal finance assistant. Answer using the user's financial context when it helps. Be concise and practical. Amounts are in Indian rupees unless stated otherwise."

// NewClient builds the chat-layer client from config.
func NewClient(cfg config.LLMConfig) *OpenAI {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	return &OpenAI{
		api:          openai.NewClientWithConfig(apiCfg),
		model:        cfg.Model,
		systemPrompt: prompt,
		configured:   cfg.APIKey != "",
	}
}

// Chat sends the query with the financial context and capped history, and
// decodes the structured reply. A non-JSON answer is treated as plain prose.
func (c *OpenAI) Chat(ctx context.Context, req Request) (Reply, error) {
	if !c.configured {
		return Reply{}, ErrNotConfigured
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.buildSystemPrompt(req),
	})
	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Query})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, errors.New("llm: empty completion response")
	}

	reply := parseReply(resp.Choices[0].Message.Content)
	if reply.Error != "" {
		return Reply{}, fmt.Errorf("llm: backend reported: %s", reply.Error)
	}
	return reply, nil
}

func (c *OpenAI) buildSystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(c.systemPrompt)
	if len(req.UserContext) > 0 {
		ctxJSON, err := json.Marshal(req.UserContext)
		if err == nil {
			b.WriteString("\n\nUser context:\n")
			b.Write(ctxJSON)
		} else {
			logger.L.Warn("failed to marshal user context", "error", err, "user_id", req.UserID)
		}
	}
	return b.String()
}

// parseReply accepts either the structured JSON envelope or bare prose.
func parseReply(content string) Reply {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	if strings.HasPrefix(trimmed, "{") {
		var reply Reply
		if err := json.Unmarshal([]byte(trimmed), &reply); err == nil && (reply.Response != "" || reply.Error != "") {
			return reply
		}
		logger.L.Debug("chat reply looked like JSON but did not decode; using raw text")
	}
	return Reply{Response: content}
}
