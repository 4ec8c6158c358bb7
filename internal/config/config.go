package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"sales-quote-archive"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// QuoteValidityHours is the fixed validity window applied to new quotes.
	QuoteValidityHours int `envconfig:"QUOTE_VALIDITY_HOURS" default:"24"`

	// SearchCandidateMultiplier controls how many candidates each scorer
	// fetches before fusion (multiplier x limit). Normalization bounds, and
	// therefore final ranking, can shift with this window.
	SearchCandidateMultiplier int `envconfig:"SEARCH_CANDIDATE_MULTIPLIER" default:"2"`

	// SearchEmbeddingCacheTTLSeconds bounds staleness of the in-process
	// embedding cache used by the vector scorer.
	SearchEmbeddingCacheTTLSeconds int `envconfig:"SEARCH_EMBEDDING_CACHE_TTL" default:"60"`

	// EmbedWorkerPollSeconds is the poll interval of the background
	// re-embedding worker. Zero disables the worker.
	EmbedWorkerPollSeconds int `envconfig:"EMBED_WORKER_POLL_SECONDS" default:"300"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SALES", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) QuoteValidity() time.Duration {
	return time.Duration(c.QuoteValidityHours) * time.Hour
}

func (c *Config) EmbeddingCacheTTL() time.Duration {
	return time.Duration(c.SearchEmbeddingCacheTTLSeconds) * time.Second
}

func (c *Config) EmbedWorkerPollInterval() time.Duration {
	return time.Duration(c.EmbedWorkerPollSeconds) * time.Second
}
