package extraction

import (
	"context"
	"sync"
)

// MockLLMClient answers by system prompt so one mock can serve both passes.
// Responses falls back to Response; Errs falls back to Err.
type MockLLMClient struct {
	Response  string
	Err       error
	Responses map[string]string
	Errs      map[string]error

	mu      sync.Mutex
	Prompts []string
}

func (m *MockLLMClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if err, ok := m.Errs[system]; ok {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if resp, ok := m.Responses[system]; ok {
		return resp, nil
	}
	return m.Response, nil
}
