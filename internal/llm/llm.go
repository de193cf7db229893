package llm

import (
	"context"
	"errors"
)

// Client abstracts chat-completion providers for scribble and caption generation.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Message is a single chat message.
type Message struct {
	Role    string
	Content string
}

// Request captures one chat-completion call. MaxTokens and Temperature are
// set per call because scribble paths and captions use different budgets.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotImplemented
}
