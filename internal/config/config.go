// Package config loads ragbot configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ragbot configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	OpenSearch OpenSearchConfig `yaml:"opensearch"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// TelegramConfig controls the bot transport and message delivery.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	BaseURL  string `yaml:"base_url"`

	// Mode is "polling" or "webhook".
	Mode          string        `yaml:"mode"`
	PollTimeout   time.Duration `yaml:"poll_timeout"`
	WebhookAddr   string        `yaml:"webhook_addr"`
	WebhookURL    string        `yaml:"webhook_url"` // public base URL, "/telegram/<secret>" is appended
	WebhookSecret string        `yaml:"webhook_secret"`

	// Limit is the rendered length budget per message.
	Limit          int     `yaml:"limit"`
	FenceRepair    bool    `yaml:"fence_repair"`
	PlainFallback  bool    `yaml:"plain_fallback"`
	DisablePreview bool    `yaml:"disable_preview"`
	AllowedChatIDs []int64 `yaml:"allowed_chat_ids"`
	MaxConcurrent  int     `yaml:"max_concurrent"`
}

// LLMConfig selects the completion backend.
type LLMConfig struct {
	Provider    string        `yaml:"provider"` // openai, gemini
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	// QueryPrefix and DocumentPrefix are prepended to texts before embedding,
	// e.g. "search_query: " and "search_document: " for nomic models.
	QueryPrefix    string        `yaml:"query_prefix"`
	DocumentPrefix string        `yaml:"document_prefix"`
	Dimension      int           `yaml:"dimension"`
	BatchSize      int           `yaml:"batch_size"`
	Timeout        time.Duration `yaml:"timeout"`
}

// OpenSearchConfig points at the vector store.
type OpenSearchConfig struct {
	URL                string        `yaml:"url"`
	Index              string        `yaml:"index"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Engine             string        `yaml:"engine"`
	Timeout            time.Duration `yaml:"timeout"`
}

// RetrievalConfig controls the two date-partitioned searches.
type RetrievalConfig struct {
	K          int    `yaml:"k"`
	DateCutoff string `yaml:"date_cutoff"`
	// PromptTemplate is a text/template with {{.Context}} and {{.Question}}.
	PromptTemplate string `yaml:"prompt_template"`
}

// IngestConfig controls document splitting for `ragbot index`.
type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func (c *Config) defaults() {
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = "https://api.telegram.org"
	}
	if c.Telegram.Mode == "" {
		c.Telegram.Mode = "polling"
	}
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = 30 * time.Second
	}
	if c.Telegram.WebhookAddr == "" {
		c.Telegram.WebhookAddr = ":8080"
	}
	if c.Telegram.Limit <= 0 {
		c.Telegram.Limit = 3800
	}
	if c.Telegram.MaxConcurrent <= 0 {
		c.Telegram.MaxConcurrent = 16
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.BaseURL == "" && c.LLM.Provider == "openai" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.Model = "gemini-2.5-flash"
		default:
			c.LLM.Model = "gpt-4o-mini"
		}
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 120 * time.Second
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.BaseURL == "" && c.Embedding.Provider == "openai" {
		c.Embedding.BaseURL = c.LLM.BaseURL
	}
	if c.Embedding.Model == "" {
		switch c.Embedding.Provider {
		case "gemini":
			c.Embedding.Model = "gemini-embedding-001"
		default:
			c.Embedding.Model = "nomic-ai/nomic-embed-text-v2-moe"
		}
	}
	if c.Embedding.Dimension <= 0 {
		c.Embedding.Dimension = 768
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 64
	}
	if c.Embedding.Timeout <= 0 {
		c.Embedding.Timeout = 60 * time.Second
	}

	if c.OpenSearch.URL == "" {
		c.OpenSearch.URL = "https://localhost:9200"
	}
	if c.OpenSearch.Index == "" {
		c.OpenSearch.Index = "langchain_test"
	}
	if c.OpenSearch.Engine == "" {
		c.OpenSearch.Engine = "faiss"
	}
	if c.OpenSearch.Timeout <= 0 {
		c.OpenSearch.Timeout = 30 * time.Second
	}

	if c.Retrieval.K <= 0 {
		c.Retrieval.K = 5
	}
	if c.Retrieval.DateCutoff == "" {
		c.Retrieval.DateCutoff = "2017-01-01"
	}

	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 1000
	}
	if c.Ingest.ChunkOverlap <= 0 {
		c.Ingest.ChunkOverlap = 200
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// applyEnvOverrides lets secrets live outside the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_WEBHOOK_SECRET"); v != "" {
		c.Telegram.WebhookSecret = v
	}

	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		if c.LLM.Provider == "gemini" {
			c.LLM.APIKey = v
		}
		if c.Embedding.Provider == "gemini" {
			c.Embedding.APIKey = v
		}
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		c.Embedding.APIKey = v
	}

	if v := os.Getenv("OPENSEARCH_USERNAME"); v != "" {
		c.OpenSearch.Username = v
	}
	if v := os.Getenv("OPENSEARCH_PASSWORD"); v != "" {
		c.OpenSearch.Password = v
	}
}

// Validate reports configuration that cannot serve the bot.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		errs = append(errs, errors.New("telegram.bot_token is required (or set TELEGRAM_BOT_TOKEN)"))
	}
	switch c.Telegram.Mode {
	case "polling":
	case "webhook":
		if c.Telegram.WebhookURL == "" {
			errs = append(errs, errors.New("telegram.webhook_url is required in webhook mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("telegram.mode %q: want polling or webhook", c.Telegram.Mode))
	}
	errs = append(errs, c.ValidateBackends())
	return errors.Join(errs...)
}

// ValidateBackends checks the retrieval and ingestion settings only, for
// commands that never talk to Telegram.
func (c *Config) ValidateBackends() error {
	var errs []error
	for _, p := range []struct{ name, value string }{
		{"llm.provider", c.LLM.Provider},
		{"embedding.provider", c.Embedding.Provider},
	} {
		if p.value != "openai" && p.value != "gemini" {
			errs = append(errs, fmt.Errorf("%s %q: want openai or gemini", p.name, p.value))
		}
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		errs = append(errs, fmt.Errorf("ingest.chunk_overlap %d must be smaller than chunk_size %d",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize))
	}
	if _, err := time.Parse(time.DateOnly, c.Retrieval.DateCutoff); err != nil {
		errs = append(errs, fmt.Errorf("retrieval.date_cutoff: %w", err))
	}
	return errors.Join(errs...)
}

// Load reads path (optional), applies defaults and environment overrides.
// A missing path yields a config built from defaults and the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	cfg.defaults()
	return cfg, nil
}
