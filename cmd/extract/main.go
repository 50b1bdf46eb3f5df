// Command extract runs a single document through the pipeline and prints the
// result as JSON, or writes it as a workbook with -xlsx.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/agenthands/scrivener/internal/config"
	"github.com/agenthands/scrivener/internal/core"
	"github.com/agenthands/scrivener/internal/core/model"
	"github.com/agenthands/scrivener/internal/core/tagger"
	"github.com/agenthands/scrivener/internal/export"
	"github.com/agenthands/scrivener/internal/llm"
	"github.com/agenthands/scrivener/internal/logger"
	"github.com/agenthands/scrivener/internal/ocr"
)

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func main() {
	cfgPath := flag.String("config", "config/config.toml", "path to the TOML config")
	xlsxPath := flag.String("xlsx", "", "write the canonical schema to this workbook instead of printing JSON")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-config path] [-xlsx out.xlsx] <document>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*cfgPath, flag.Arg(0), *xlsxPath); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

func run(cfgPath, docPath, xlsxPath string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return err
	}

	zl, err := logger.New(cfg.Log.Level, true)
	if err != nil {
		return err
	}
	defer zl.Sync()

	data, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	ctx := context.Background()
	llmClient, err := llm.NewClient(ctx, cfg.LLM, zl)
	if err != nil {
		return err
	}
	if c, ok := llmClient.(io.Closer); ok {
		defer c.Close()
	}
	detector, err := ocr.NewVisionDetector(ctx, cfg.OCR)
	if err != nil {
		return err
	}
	var tg tagger.Tagger
	if cfg.Tagger.Enabled {
		ner, err := tagger.NewNERTagger(cfg.Tagger, zl)
		if err != nil {
			return err
		}
		defer ner.Close()
		tg = ner
	}

	p := core.NewPipeline(detector, llmClient, tg, cfg, zl)
	res, err := p.Process(ctx, model.Upload{Filename: filepath.Base(docPath), Data: data})
	if err != nil {
		return err
	}
	if res.Empty() {
		fmt.Fprintln(os.Stderr, yellow("no text detected in"), docPath)
		return nil
	}

	if xlsxPath != "" {
		book, err := export.Workbook(*res.FinalSchema, res.PersonAnnotations)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxPath, book, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Fprintln(os.Stderr, green("wrote"), xlsxPath)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s %d people, %d entities, %d locations\n",
		green("done:"), len(res.FinalSchema.People), len(res.FinalSchema.Entities), len(res.FinalSchema.Locations))
	return nil
}
