package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a minimal chat message passed to the completion service.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Client is the completion-service boundary. Chat accepts the full
// ordered message list (system entry + transcript) and returns the
// generated reply text.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Config carries the credential and tuning parameters for the OpenAI
// client. It is injected explicitly so business logic never reads
// ambient state and tests can substitute a fake Client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAIClient performs a single non-streaming chat completion call per
// request. It owns no conversation state.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIClient constructs an OpenAI-backed completion client from the
// given configuration.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// ErrEmptyCompletion reports a 2xx response whose body carried no
// completion choice. Callers treat it like any transport failure.
var ErrEmptyCompletion = errors.New("completion response contained no choices")

// Chat sends the message history to the chat completion API and returns
// the text of the first choice, unmodified.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", requestError(err, c.model)
	}
	if len(resp.Choices) == 0 {
		return "", requestError(ErrEmptyCompletion, c.model)
	}
	return resp.Choices[0].Message.Content, nil
}

// completionEndpoint identifies the remote service in failure
// diagnostics.
const completionEndpoint = "https://api.openai.com/v1/chat/completions"

// requestError annotates a completion failure with the endpoint, model,
// HTTP status and a body excerpt so the log entry is enough for
// operational diagnosis. The wrapped error never reaches the
// interactive layer; callers substitute the fallback message.
func requestError(err error, model string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat completion %s (model %s, status %d, body %q): %w",
			completionEndpoint, model, apiErr.HTTPStatusCode, excerpt(apiErr.Message), err)
	}
	return fmt.Errorf("chat completion %s (model %s): %w", completionEndpoint, model, err)
}

// excerpt truncates a response body for error messages.
func excerpt(body string) string {
	const max = 256
	if len(body) > max {
		return body[:max] + "..."
	}
	return body
}
