package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/scrivener/internal/config"
	"github.com/agenthands/scrivener/internal/core/annotate"
	"github.com/agenthands/scrivener/internal/core/common"
	"github.com/agenthands/scrivener/internal/core/extraction"
	"github.com/agenthands/scrivener/internal/core/model"
	"github.com/agenthands/scrivener/internal/core/reconcile"
	"github.com/agenthands/scrivener/internal/core/summary"
	"github.com/agenthands/scrivener/internal/core/tagger"
	"github.com/agenthands/scrivener/internal/llm"
	"github.com/agenthands/scrivener/internal/logger"
	"github.com/agenthands/scrivener/internal/metrics"
	"github.com/agenthands/scrivener/internal/ocr"
)

// Result is the outcome of one document run. When OCR finds no text only
// ExtractedText is set and FinalSchema is nil.
type Result struct {
	RequestID         string                   `json:"-"`
	ExtractedText     string                   `json:"-"`
	FinalSchema       *model.CanonicalSchema   `json:"finalSchema"`
	ParseResult       *model.RawExtraction     `json:"parseResult"`
	PersonAnnotations []model.PersonAnnotation `json:"personAnnotations"`
}

func (r *Result) Empty() bool {
	return r.FinalSchema == nil
}

type Pipeline struct {
	OCR        ocr.Detector
	Stager     *ocr.Stager
	Extractor  *extraction.Extractor
	Tagger     tagger.Tagger      // nil when local tagging is off
	Summarizer *summary.Summarizer // nil when summaries are off
	Config     *config.Config

	logger *zap.Logger
	now    func() time.Time
}

// NewPipeline wires the passes from cfg. tg may be nil.
func NewPipeline(detector ocr.Detector, llmClient llm.LLMClient, tg tagger.Tagger, cfg *config.Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		OCR:       detector,
		Stager:    ocr.NewStager(cfg.OCR.TempDir),
		Extractor: extraction.NewExtractor(llmClient, cfg.Extraction, log),
		Tagger:    tg,
		Config:    cfg,
		logger:    log,
		now:       time.Now,
	}
	if cfg.Summary.Enabled {
		p.Summarizer = summary.NewSummarizer(llmClient, cfg.Summary)
	}
	return p
}

// Process runs one uploaded document through OCR, the extraction passes,
// reconciliation and annotation cross-referencing.
func (p *Pipeline) Process(ctx context.Context, upload model.Upload) (*Result, error) {
	if len(upload.Data) == 0 {
		return nil, common.ErrNoInput
	}

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, requestID)
	}
	log := logger.WithRequest(ctx, p.logger)
	log.Info("processing document", zap.String("filename", upload.Filename), zap.Int("bytes", len(upload.Data)))

	res, err := p.process(ctx, upload, log)
	switch {
	case err == nil && res.Empty():
		metrics.RecordDocument("empty")
	case err == nil:
		metrics.RecordDocument("success")
	case isParseError(err):
		metrics.RecordDocument("parse_error")
	default:
		metrics.RecordDocument("failed")
	}
	if err != nil {
		log.Error("document processing failed", zap.Error(err))
		return nil, err
	}
	res.RequestID = requestID
	return res, nil
}

func (p *Pipeline) process(ctx context.Context, upload model.Upload, log *zap.Logger) (*Result, error) {
	staged, err := p.Stager.Stage(upload)
	if err != nil {
		return nil, err
	}
	ocrResult, err := p.detect(ctx, staged, log)
	if err != nil {
		return nil, err
	}
	log.Info("OCR complete", zap.Int("text_len", len(ocrResult.FullText)), zap.Int("annotations", len(ocrResult.Annotations)))

	text := ocrResult.FullText
	if text == "" {
		log.Info("no text extracted, returning early")
		return &Result{}, nil
	}

	var (
		primary     model.RawExtraction
		additional  model.AdditionalExtraction
		tagged      *model.TaggerResult
		autoSummary *string
	)
	passes := []func(context.Context) error{
		func(ctx context.Context) error {
			var err error
			primary, err = p.primaryPass(ctx, text)
			return err
		},
		func(ctx context.Context) error {
			additional = p.supplementaryPass(ctx, text)
			return nil
		},
	}
	if p.Tagger != nil {
		passes = append(passes, func(context.Context) error {
			tagged = p.tagPass(text, log)
			return nil
		})
	}
	if p.Summarizer != nil {
		passes = append(passes, func(ctx context.Context) error {
			autoSummary = p.summaryPass(ctx, text, log)
			return nil
		})
	}
	if err := p.runPasses(ctx, passes); err != nil {
		return nil, err
	}

	start := time.Now()
	schema := reconcile.Reconcile(reconcile.Input{
		ArtifactID:     p.Config.Schema.ArtifactID,
		Transcription:  text,
		SourceFilename: optional(upload.Filename),
		CollectionID:   p.Config.Schema.CollectionID,
		ExtractedAt:    p.now(),
		AutoSummary:    autoSummary,
		Primary:        primary,
		Additional:     additional,
		Tagged:         tagged,
	})
	metrics.RecordStage(metrics.StageReconcile, time.Since(start))

	start = time.Now()
	annotations := annotate.CrossReference(schema.People, ocrResult.Annotations)
	metrics.RecordStage(metrics.StageCrossRef, time.Since(start))

	merged := extraction.Merge(primary, additional)
	log.Info("document reconciled",
		zap.Int("people", len(schema.People)),
		zap.Int("participants", len(schema.ArtifactParticipants)),
		zap.Int("entities", len(schema.Entities)),
		zap.Int("locations", len(schema.Locations)),
		zap.Int("person_annotations", len(annotations)),
	)
	return &Result{
		ExtractedText:     text,
		FinalSchema:       &schema,
		ParseResult:       &merged,
		PersonAnnotations: annotations,
	}, nil
}

// detect runs OCR on a staged upload and releases it afterwards, whatever
// the outcome.
func (p *Pipeline) detect(ctx context.Context, staged *ocr.StagedFile, log *zap.Logger) (model.OCRResult, error) {
	defer func() {
		if err := staged.Release(); err != nil {
			log.Warn("failed to delete temp file", zap.String("path", staged.Path()), zap.Error(err))
			return
		}
		log.Debug("temp file deleted", zap.String("path", staged.Path()))
	}()

	data, err := staged.ReadAll()
	if err != nil {
		return model.OCRResult{}, err
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	res, err := p.OCR.DetectText(ctx, data)
	metrics.RecordStage(metrics.StageOCR, time.Since(start))
	return res, err
}

// runPasses runs the extraction passes concurrently or in order. Only the
// primary pass returns errors; the first one cancels the rest.
func (p *Pipeline) runPasses(ctx context.Context, passes []func(context.Context) error) error {
	if !p.Config.Concurrency.ParallelExtraction {
		for _, pass := range passes {
			if err := pass(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, pass := range passes {
		g.Go(func() error { return pass(gctx) })
	}
	return g.Wait()
}

func (p *Pipeline) primaryPass(ctx context.Context, text string) (model.RawExtraction, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordStage(metrics.StagePrimary, time.Since(start)) }()
	return p.Extractor.ExtractPrimary(ctx, text)
}

func (p *Pipeline) supplementaryPass(ctx context.Context, text string) model.AdditionalExtraction {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { metrics.RecordStage(metrics.StageSupplementary, time.Since(start)) }()
	return p.Extractor.ExtractSupplementary(ctx, text)
}

func (p *Pipeline) tagPass(text string, log *zap.Logger) *model.TaggerResult {
	start := time.Now()
	res := p.Tagger.Tag(text)
	metrics.RecordStage(metrics.StageTagger, time.Since(start))
	log.Info("local tagger complete",
		zap.Int("people", len(res.People)),
		zap.Int("places", len(res.Places)),
		zap.Int("organizations", len(res.Organizations)),
	)
	return &res
}

func (p *Pipeline) summaryPass(ctx context.Context, text string, log *zap.Logger) *string {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	s, err := p.Summarizer.SummarizeArtifact(ctx, text)
	metrics.RecordStage(metrics.StageSummary, time.Since(start))
	if err != nil {
		log.Warn("summary failed, leaving auto_summary empty", zap.Error(err))
		return nil
	}
	return optional(s)
}

func (p *Pipeline) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Config.Timeouts.ProviderSeconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(p.Config.Timeouts.ProviderSeconds)*time.Second)
}

func isParseError(err error) bool {
	var parseErr *common.ParseError
	return errors.As(err, &parseErr)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
