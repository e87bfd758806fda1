package conversation

import (
	"context"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

type fakeCompleter struct {
	resp openai.ChatCompletionResponse
	err  error
	req  openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return f.resp, nil
}

func newFakeGroqClient(fake *fakeCompleter) *GroqClient {
	return &GroqClient{
		client:      fake,
		model:       "llama3-8b-8192",
		temperature: 0.7,
		maxTokens:   1000,
		logger:      logging.Default(),
	}
}

func TestGroqClientCompleteSendsWindow(t *testing.T) {
	fake := &fakeCompleter{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "  hola  "}},
			},
		},
	}
	client := newFakeGroqClient(fake)

	reply, err := client.Complete(context.Background(), []ChatMessage{
		{Role: ChatRoleSystem, Content: "instrucciones"},
		{Role: ChatRoleUser, Content: "hola"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "hola" {
		t.Fatalf("reply = %q", reply)
	}
	if fake.req.Model != "llama3-8b-8192" {
		t.Fatalf("model = %q", fake.req.Model)
	}
	if fake.req.Temperature != 0.7 || fake.req.MaxTokens != 1000 {
		t.Fatalf("params = %v %v", fake.req.Temperature, fake.req.MaxTokens)
	}
	if len(fake.req.Messages) != 2 || fake.req.Messages[1].Content != "hola" {
		t.Fatalf("messages = %+v", fake.req.Messages)
	}
}

func TestGroqClientMapsRateLimit(t *testing.T) {
	fake := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}}
	client := newFakeGroqClient(fake)

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: ChatRoleUser, Content: "hola"}})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestGroqClientMapsTimeout(t *testing.T) {
	fake := &fakeCompleter{err: context.DeadlineExceeded}
	client := newFakeGroqClient(fake)

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: ChatRoleUser, Content: "hola"}})
	if !errors.Is(err, ErrCompletionTimeout) {
		t.Fatalf("err = %v, want ErrCompletionTimeout", err)
	}
}

func TestGroqClientWithoutKeyIsNotConfigured(t *testing.T) {
	client := NewGroqClient("", "https://api.groq.com/openai/v1", "", logging.Default())

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: ChatRoleUser, Content: "hola"}})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGroqClientEmptyChoicesIsError(t *testing.T) {
	fake := &fakeCompleter{resp: openai.ChatCompletionResponse{}}
	client := newFakeGroqClient(fake)

	if _, err := client.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
