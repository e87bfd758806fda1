package conversation

import (
	"context"
	"errors"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is the internal message representation stored per session and
// sent to the completion backend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// historyWindow bounds how many trailing messages are sent to the model.
const historyWindow = 10

var (
	// ErrRateLimited indicates the completion backend rejected the call with 429.
	ErrRateLimited = errors.New("conversation: completion backend rate limited")
	// ErrCompletionTimeout indicates the completion call exceeded its deadline.
	ErrCompletionTimeout = errors.New("conversation: completion timed out")
	// ErrNotConfigured indicates no completion backend credentials are present.
	ErrNotConfigured = errors.New("conversation: completion backend not configured")
)

// LLMClient produces a free-text assistant reply for a message window.
type LLMClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// lastMessages returns the trailing window of history sent to the model.
func lastMessages(history []ChatMessage, n int) []ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
