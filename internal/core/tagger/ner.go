package tagger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"go.uber.org/zap"

	"github.com/agenthands/scrivener/internal/config"
	"github.com/agenthands/scrivener/internal/core/model"
)

// NERTagger runs a token-classification model (distilbert-NER by default)
// on the pure Go hugot backend.
type NERTagger struct {
	session  *hugot.Session
	pipeline *pipelines.TokenClassificationPipeline
	logger   *zap.Logger
}

func NewNERTagger(cfg config.TaggerConfig, logger *zap.Logger) (*NERTagger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	modelPath, err := prepareModel(cfg.ModelName, cfg.ModelDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	nerConfig := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, nerConfig)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	logger.Info("local tagger ready", zap.String("model", cfg.ModelName), zap.String("path", modelPath))
	return &NERTagger{session: session, pipeline: nerPipeline, logger: logger}, nil
}

func (t *NERTagger) Tag(text string) model.TaggerResult {
	if strings.TrimSpace(text) == "" {
		return emptyResult()
	}
	result, err := t.pipeline.RunPipeline([]string{text})
	if err != nil {
		t.logger.Warn("local tagger failed", zap.Error(err))
		return emptyResult()
	}
	if len(result.Entities) == 0 {
		return emptyResult()
	}

	spans := make([]span, 0, len(result.Entities[0]))
	for _, e := range result.Entities[0] {
		spans = append(spans, span{Label: e.Entity, Word: e.Word})
	}
	return groupSpans(spans)
}

func (t *NERTagger) Close() error {
	return t.session.Destroy()
}

// prepareModel downloads the model into dir unless it is already there and
// returns its path.
func prepareModel(modelName, dir string) (string, error) {
	if dir == "" {
		dir = "./models"
	}
	modelPath := filepath.Join(dir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat model directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}
	downloaded, err := hugot.DownloadModel(modelName, dir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}
	return downloaded, nil
}
