package ai

import (
	"errors"

	"github.com/topicinsights/topicinsights/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Enabled bool

	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Model      string // text-embedding-3-small
	Dimensions int    // 1536
	APIKey     string
	BaseURL    string
}

// LLMConfig represents chat model configuration.
type LLMConfig struct {
	Model          string // gpt-4o
	APIKey         string
	BaseURL        string
	MaxTokens      int     // default: 2048
	Temperature    float32 // default: 0.7
	RequestsPerMin int     // default: 60
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.AIEnabled,
	}

	if !cfg.Enabled {
		return cfg
	}

	cfg.Embedding = EmbeddingConfig{
		Model:      p.AIEmbeddingModel,
		Dimensions: p.AIEmbeddingDims,
		APIKey:     p.AIAPIKey,
		BaseURL:    p.AIBaseURL,
	}

	cfg.LLM = LLMConfig{
		Model:          p.AIModel,
		APIKey:         p.AIAPIKey,
		BaseURL:        p.AIBaseURL,
		MaxTokens:      p.AIMaxTokens,
		Temperature:    p.AITemperature,
		RequestsPerMin: p.AIRequestsPerMin,
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding dimensions must be positive")
	}
	if c.LLM.Model == "" {
		return errors.New("LLM model is required")
	}

	return nil
}
