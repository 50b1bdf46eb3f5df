package summary

import (
	"context"
)

// MockLLMClient replays Replies in order, repeating the last one, and records
// every call.
type MockLLMClient struct {
	Replies []string
	Err     error

	Systems []string
	Prompts []string
}

func (m *MockLLMClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.Systems = append(m.Systems, system)
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) == 0 {
		return "", nil
	}
	i := min(len(m.Prompts), len(m.Replies)) - 1
	return m.Replies[i], nil
}
