// Package llm is the completion-provider contract consumed by ai-model
// integrations. Providers are supplied externally; this package only fixes
// the message and result shapes.
package llm

import (
	"context"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Result struct {
	Text     string
	Usage    Usage
	Duration time.Duration
}

type Request struct {
	Model    string
	Messages []Message
}

// Client generates text from a list of role-tagged messages.
type Client interface {
	Chat(ctx context.Context, req Request) (Result, error)
}
