package conversation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

const completionTimeout = 30 * time.Second

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GroqClient talks to the Groq chat-completion API through its
// OpenAI-compatible endpoint.
type GroqClient struct {
	client      chatCompleter
	model       string
	temperature float32
	maxTokens   int
	logger      *logging.Logger
}

// NewGroqClient builds a client against the given base URL. An empty API key
// is allowed so the process can start in a degraded mode; calls then fail
// with ErrNotConfigured.
func NewGroqClient(apiKey, baseURL, model string, logger *logging.Logger) *GroqClient {
	if logger == nil {
		logger = logging.Default()
	}
	if model == "" {
		model = "llama3-8b-8192"
	}

	var client chatCompleter
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}

	return &GroqClient{
		client:      client,
		model:       model,
		temperature: 0.7,
		maxTokens:   1000,
		logger:      logger,
	}
}

// Complete sends the message window and returns the assistant reply.
func (c *GroqClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, req)
	if err != nil {
		return "", c.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("conversation: completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *GroqClient) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCompletionTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}

	c.logger.Error("completion call failed", "error", err)
	return fmt.Errorf("conversation: completion failed: %w", err)
}
