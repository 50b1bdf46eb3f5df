package summary

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/scrivener/internal/config"
	"github.com/agenthands/scrivener/internal/core/common"
	"github.com/agenthands/scrivener/internal/core/model"
	"github.com/agenthands/scrivener/internal/llm"
)

// ChunkChars is the largest transcription sent in one prompt. Longer texts are
// summarized part by part and the part summaries summarized again.
const ChunkChars = 12000

const maxDepth = 3

type Summarizer struct {
	LLM    llm.LLMClient
	Config config.SummaryConfig
}

func NewSummarizer(llmClient llm.LLMClient, cfg config.SummaryConfig) *Summarizer {
	return &Summarizer{
		LLM:    llmClient,
		Config: cfg,
	}
}

// SummarizeArtifact returns a short summary of a transcription, or "" for an
// empty one.
func (s *Summarizer) SummarizeArtifact(ctx context.Context, transcription string) (string, error) {
	return s.summarizeText(ctx, strings.TrimSpace(transcription), 0)
}

func (s *Summarizer) summarizeText(ctx context.Context, text string, depth int) (string, error) {
	if text == "" {
		return "", nil
	}
	// 1. Base Case: Small enough to fit in context
	if len(text) <= ChunkChars || depth >= maxDepth {
		return s.summarize(ctx, text)
	}

	// 2. Recursive Case: Split and Reduce
	chunks := splitText(text, ChunkChars)
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		sum, err := s.summarize(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("failed to summarize part %d: %w", i+1, err)
		}
		parts = append(parts, fmt.Sprintf("Part %d: %s", i+1, sum))
	}
	return s.summarizeText(ctx, strings.Join(parts, "\n"), depth+1)
}

func (s *Summarizer) summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(s.Config.Prompt, text)

	response, err := s.LLM.Generate(ctx, s.Config.System, prompt)
	if err != nil {
		return "", &common.ProviderError{Provider: "llm", Op: "summary", Err: err}
	}

	// Try to parse JSON first
	result, err := common.ParseJSON[model.ArtifactSummary](response)
	if err == nil && strings.TrimSpace(result.Summary) != "" {
		return strings.TrimSpace(result.Summary), nil
	}
	return common.StripCodeFence(response), nil
}

// splitText cuts text into pieces of at most limit bytes, preferring
// paragraph breaks and never splitting a UTF-8 sequence.
func splitText(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		for len(para) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(para[cut]) {
				cut--
			}
			chunks = append(chunks, para[:cut])
			para = para[cut:]
		}
		if current.Len() > 0 && current.Len()+2+len(para) > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return chunks
}
