package core

import (
	"context"
	"os"
	"sync"

	"github.com/agenthands/scrivener/internal/core/model"
)

type MockDetector struct {
	Result model.OCRResult
	Err    error

	// StagedFiles records what was in the staging directory during OCR.
	StageDir    string
	StagedFiles int
	Calls       int
}

func (m *MockDetector) DetectText(ctx context.Context, image []byte) (model.OCRResult, error) {
	m.Calls++
	if m.StageDir != "" {
		entries, _ := os.ReadDir(m.StageDir)
		m.StagedFiles = len(entries)
	}
	if m.Err != nil {
		return model.OCRResult{}, m.Err
	}
	return m.Result, nil
}

// MockLLM answers by system prompt so both extraction passes and the
// summarizer can be scripted independently.
type MockLLM struct {
	Responses map[string]string
	Errs      map[string]error

	mu    sync.Mutex
	Calls map[string]int
}

func (m *MockLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[system]++
	m.mu.Unlock()

	if err, ok := m.Errs[system]; ok {
		return "", err
	}
	return m.Responses[system], nil
}

func (m *MockLLM) CallCount(system string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[system]
}

type MockTagger struct {
	Result model.TaggerResult
}

func (m *MockTagger) Tag(text string) model.TaggerResult {
	return m.Result
}
