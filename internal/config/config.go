package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	Env              string
	Port             string
	DocsFolder       string
	GitReposFolder   string
	TopK             int
	ListingThreshold int
	QueryTimeout     time.Duration
	GitTimeout       time.Duration
	Ingest           IngestConfig
	LLM              LLMConfig
	DatabaseURL      string
	RedisURL         string
}

type IngestConfig struct {
	SkipBinary  bool
	ExtractPDF  bool
	MaxFileSize int64
}

type LLMConfig struct {
	Provider   string // "openai" (any OpenAI-compatible endpoint) or "ollama"
	APIURL     string
	APIKey     string
	Model      string
	Reasoning  bool
	OllamaHost string
	Timeout    time.Duration
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv reads configuration without validating it. In development a .env
// file in the working directory is loaded first; real environment variables
// win.
func FromEnv() Config {
	if getEnv("RAG_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	return Config{
		Env:              getEnv("RAG_ENV", "development"),
		Port:             getEnv("PORT", "8000"),
		DocsFolder:       getEnv("DOCS_FOLDER", "docs"),
		GitReposFolder:   getEnv("GIT_REPOS_FOLDER", "git_repos"),
		TopK:             getEnvInt("RAG_TOP_K", 2),
		ListingThreshold: getEnvInt("RAG_LISTING_THRESHOLD", 50),
		QueryTimeout:     getEnvDuration("QUERY_TIMEOUT", 3*time.Minute),
		GitTimeout:       getEnvDuration("GIT_TIMEOUT", 2*time.Minute),
		Ingest: IngestConfig{
			SkipBinary:  getEnvBool("INGEST_SKIP_BINARY", true),
			ExtractPDF:  getEnvBool("INGEST_PDF", true),
			MaxFileSize: int64(getEnvInt("INGEST_MAX_FILE_BYTES", 1<<20)),
		},
		LLM: LLMConfig{
			Provider:   strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			APIURL:     getEnv("API_URL", "https://openrouter.ai/api/v1"),
			APIKey:     getEnv("OPENROUTER_API_KEY", getEnv("LLM_API_KEY", "")),
			Model:      getEnv("MODEL_NAME", ""),
			Reasoning:  getEnvBool("LLM_REASONING", true),
			OllamaHost: getEnv("OLLAMA_HOST", ""),
			Timeout:    getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
	}
}

// Validate checks the settings every binary depends on.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("MODEL_NAME is required")
	}
	if c.TopK < 0 {
		return fmt.Errorf("RAG_TOP_K must not be negative")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
