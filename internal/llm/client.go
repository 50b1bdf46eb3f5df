package llm

import (
	"context"
)

// LLMClient sends one system + user prompt pair to a chat model and returns
// the raw text of the first completion.
type LLMClient interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Options are the sampling settings shared by every provider.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}
