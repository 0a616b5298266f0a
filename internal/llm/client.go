package llm

import "context"

// Message is a single chat message sent to the model.
type Message struct {
	Role    string
	Content string
}

// Response carries the model reply and usage accounting.
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client generates a reply for an ordered message sequence.
// Implementations own their retry policy; callers treat any error as a
// single failed consultation.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
