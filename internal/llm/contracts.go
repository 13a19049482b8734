package llm

import "context"

// CompletionRequest is one non-streaming chat call: a system and a user message.
type CompletionRequest struct {
	System string
	User   string
}

// Completer is a chat model backend. It returns the assistant message text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Model() string
}

// RecordExtractor is the interface the row pipeline depends on.
type RecordExtractor interface {
	Extract(ctx context.Context, text string) (Record, error)
}
