package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/scrivener/internal/config"
	"github.com/agenthands/scrivener/internal/core"
	"github.com/agenthands/scrivener/internal/core/tagger"
	"github.com/agenthands/scrivener/internal/llm"
	"github.com/agenthands/scrivener/internal/logger"
	"github.com/agenthands/scrivener/internal/ocr"
	"github.com/agenthands/scrivener/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				zl.Warn("close failed", zap.Error(err))
			}
		}
	}()

	llmClient, err := llm.NewClient(ctx, cfg.LLM, zl)
	if err != nil {
		zl.Fatal("failed to initialize LLM client", zap.Error(err))
	}
	if c, ok := llmClient.(io.Closer); ok {
		closers = append(closers, c)
	}

	detector, err := ocr.NewVisionDetector(ctx, cfg.OCR)
	if err != nil {
		zl.Fatal("failed to initialize OCR client", zap.Error(err))
	}

	var tg tagger.Tagger
	if cfg.Tagger.Enabled {
		ner, err := tagger.NewNERTagger(cfg.Tagger, zl)
		if err != nil {
			zl.Fatal("failed to initialize local tagger", zap.Error(err))
		}
		closers = append(closers, ner)
		tg = ner
	}

	pipeline := core.NewPipeline(detector, llmClient, tg, cfg, zl)
	srv := server.NewServer(pipeline, int(cfg.Server.MaxUploadMB), zl)
	r := srv.SetupRouter()

	zl.Info("starting server",
		zap.String("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("tagger", cfg.Tagger.Enabled),
		zap.Bool("summary", cfg.Summary.Enabled),
	)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zl.Error("server stopped", zap.Error(err))
	}
}
