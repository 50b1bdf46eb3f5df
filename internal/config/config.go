package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
	// MaxUploadMB caps the multipart body size.
	MaxUploadMB int64 `toml:"max_upload_mb"`
}

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type OCRConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"api_key"`
	CredentialsFile string `toml:"credentials_file"`
	Endpoint        string `toml:"endpoint"`
	TempDir         string `toml:"temp_dir"`
}

type TaggerConfig struct {
	Enabled   bool   `toml:"enabled"`
	ModelName string `toml:"model_name"`
	ModelDir  string `toml:"model_dir"`
}

// ExtractionPrompts holds the prompt templates of both extraction passes. The
// user templates take the OCR text through a single %s verb.
type ExtractionPrompts struct {
	PrimarySystem       string `toml:"primary_system"`
	Primary             string `toml:"primary"`
	SupplementarySystem string `toml:"supplementary_system"`
	Supplementary       string `toml:"supplementary"`
}

type SummaryConfig struct {
	Enabled bool   `toml:"enabled"`
	System  string `toml:"system"`
	Prompt  string `toml:"prompt"`
}

type ConcurrencyConfig struct {
	ParallelExtraction bool `toml:"parallel_extraction"`
}

type TimeoutConfig struct {
	// ProviderSeconds bounds every OCR and LLM call; 0 disables the limit.
	ProviderSeconds int `toml:"provider_seconds"`
}

type SchemaConfig struct {
	ArtifactID   int    `toml:"artifact_id"`
	CollectionID string `toml:"collection_id"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type Config struct {
	Server      ServerConfig      `toml:"server"`
	LLM         LLMConfig         `toml:"llm"`
	OCR         OCRConfig         `toml:"ocr"`
	Tagger      TaggerConfig      `toml:"tagger"`
	Extraction  ExtractionPrompts `toml:"extraction"`
	Summary     SummaryConfig     `toml:"summary"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Timeouts    TimeoutConfig     `toml:"timeouts"`
	Schema      SchemaConfig      `toml:"schema"`
	Log         LogConfig         `toml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", MaxUploadMB: 20},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   4096,
		},
		OCR: OCRConfig{Provider: "vision"},
		Tagger: TaggerConfig{
			ModelName: "KnightsAnalytics/distilbert-NER",
			ModelDir:  "./models",
		},
		Extraction: ExtractionPrompts{
			PrimarySystem:       DefaultPrimarySystem,
			Primary:             DefaultPrimaryPrompt,
			SupplementarySystem: DefaultSupplementarySystem,
			Supplementary:       DefaultSupplementaryPrompt,
		},
		Summary: SummaryConfig{
			System: DefaultSummarySystem,
			Prompt: DefaultSummaryPrompt,
		},
		Concurrency: ConcurrencyConfig{ParallelExtraction: true},
		Timeouts:    TimeoutConfig{ProviderSeconds: 60},
		Schema:      SchemaConfig{ArtifactID: 1, CollectionID: "NewCollection"},
		Log:         LogConfig{Level: "info"},
	}
}

// Load reads a TOML file on top of the defaults, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides file values with non-empty environment variables.
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.APIKey, "LLM_API_KEY")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.OCR.APIKey, "OCR_API_KEY")
	set(&c.OCR.CredentialsFile, "OCR_CREDENTIALS_FILE")
	set(&c.Server.Port, "PORT")
	set(&c.Log.Level, "LOG_LEVEL")
}

var providers = map[string]bool{
	"openai":     true,
	"gemini":     true,
	"claude":     true,
	"openrouter": true,
	"ollama":     true,
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if !providers[strings.ToLower(c.LLM.Provider)] {
		errs = append(errs, fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm model is required"))
	}
	if !strings.EqualFold(c.OCR.Provider, "vision") {
		errs = append(errs, fmt.Errorf("unsupported ocr provider: %q", c.OCR.Provider))
	}
	errs = append(errs, checkTemplate("extraction.primary", c.Extraction.Primary))
	errs = append(errs, checkTemplate("extraction.supplementary", c.Extraction.Supplementary))
	if c.Summary.Enabled {
		errs = append(errs, checkTemplate("summary.prompt", c.Summary.Prompt))
	}
	if c.Tagger.Enabled && c.Tagger.ModelName == "" {
		errs = append(errs, errors.New("tagger.model_name is required when the tagger is enabled"))
	}
	if c.Timeouts.ProviderSeconds < 0 {
		errs = append(errs, errors.New("timeouts.provider_seconds must not be negative"))
	}
	if c.Server.MaxUploadMB < 0 {
		errs = append(errs, errors.New("server.max_upload_mb must not be negative"))
	}
	return errors.Join(errs...)
}

// checkTemplate requires a prompt template with exactly one %s verb for the
// document text.
func checkTemplate(name, tmpl string) error {
	if strings.TrimSpace(tmpl) == "" {
		return fmt.Errorf("%s prompt is required", name)
	}
	if strings.Count(tmpl, "%s") != 1 {
		return fmt.Errorf("%s prompt must contain exactly one %%s verb", name)
	}
	return nil
}
