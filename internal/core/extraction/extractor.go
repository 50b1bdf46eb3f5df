package extraction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/scrivener/internal/config"
	"github.com/agenthands/scrivener/internal/core/common"
	"github.com/agenthands/scrivener/internal/core/model"
	"github.com/agenthands/scrivener/internal/llm"
	"github.com/agenthands/scrivener/internal/logger"
	"github.com/agenthands/scrivener/internal/metrics"
)

const (
	PassPrimary       = "primary"
	PassSupplementary = "supplementary"
)

type Extractor struct {
	LLM     llm.LLMClient
	Prompts config.ExtractionPrompts
	logger  *zap.Logger
}

func NewExtractor(llmClient llm.LLMClient, prompts config.ExtractionPrompts, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		LLM:     llmClient,
		Prompts: prompts,
		logger:  log,
	}
}

// ExtractPrimary runs the structured extraction pass. Any failure is fatal to
// the caller: provider failures come back as *common.ProviderError, responses
// that are not a JSON object as *common.ParseError carrying the raw response.
func (e *Extractor) ExtractPrimary(ctx context.Context, text string) (model.RawExtraction, error) {
	log := logger.WithRequest(ctx, e.logger).With(zap.String("pass", PassPrimary))
	prompt := fmt.Sprintf(e.Prompts.Primary, text)
	log.Debug("sending extraction prompt", zap.Int("prompt_len", len(prompt)))

	raw, err := e.LLM.Generate(ctx, e.Prompts.PrimarySystem, prompt)
	if err != nil {
		metrics.RecordExtractionFailure(PassPrimary, "provider")
		return model.RawExtraction{}, &common.ProviderError{Provider: "llm", Op: "primary extraction", Err: err}
	}

	doc, err := common.DecodeObject(raw)
	if err != nil {
		metrics.RecordExtractionFailure(PassPrimary, "parse")
		log.Error("failed to parse extraction output", zap.Error(err), zap.Int("raw_len", len(raw)))
		return model.RawExtraction{}, &common.ParseError{Pass: PassPrimary, Raw: raw, Err: err}
	}
	if err := checkPrimaryShape(doc.Raw); err != nil {
		log.Warn("extraction output does not match the expected shape", zap.Error(err))
	}

	out := decodeRaw(doc)
	log.Info("extraction parsed",
		zap.Int("recipients", len(out.Recipients)),
		zap.Int("mentioned", len(out.Mentioned)),
		zap.Int("entities", len(out.Entities)),
		zap.Int("locations", len(out.Locations)),
	)
	return out, nil
}

// ExtractSupplementary runs the sweep for references the primary pass may
// have missed. It never fails; on any error the empty structure is returned.
func (e *Extractor) ExtractSupplementary(ctx context.Context, text string) model.AdditionalExtraction {
	log := logger.WithRequest(ctx, e.logger).With(zap.String("pass", PassSupplementary))
	prompt := fmt.Sprintf(e.Prompts.Supplementary, text)

	raw, err := e.LLM.Generate(ctx, e.Prompts.SupplementarySystem, prompt)
	if err != nil {
		metrics.RecordExtractionFailure(PassSupplementary, "provider")
		log.Warn("supplementary extraction failed, continuing without it", zap.Error(err))
		return model.EmptyAdditionalExtraction()
	}

	doc, err := common.DecodeObject(raw)
	if err != nil {
		metrics.RecordExtractionFailure(PassSupplementary, "parse")
		log.Warn("failed to parse supplementary output, continuing without it", zap.Error(err))
		return model.EmptyAdditionalExtraction()
	}

	out := decodeAdditional(doc)
	log.Info("extraction parsed",
		zap.Int("people", len(out.AdditionalPeople)),
		zap.Int("entities", len(out.AdditionalEntities)),
		zap.Int("locations", len(out.AdditionalLocations)),
	)
	return out
}

// Merge folds the supplementary pass into the primary result: additional
// people become mentions, entities and locations are appended. Sender and
// recipients are left alone.
func Merge(primary model.RawExtraction, additional model.AdditionalExtraction) model.RawExtraction {
	merged := primary
	merged.Recipients = append([]model.PersonReference{}, primary.Recipients...)
	merged.Mentioned = append(append([]model.PersonReference{}, primary.Mentioned...), additional.AdditionalPeople...)
	merged.Entities = append(append([]model.ExtractedEntity{}, primary.Entities...), additional.AdditionalEntities...)
	merged.Locations = append(append([]model.ExtractedLocation{}, primary.Locations...), additional.AdditionalLocations...)
	return merged
}
