package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory (SQLite database location)
	Data string
	// DSN points to where the topic store keeps its data
	DSN string
	// Driver is the database driver (postgres or sqlite)
	Driver string
	// Version is the current version of the server
	Version string

	// AI configuration
	AIEnabled          bool    // TOPICINSIGHTS_AI_ENABLED
	AIAPIKey           string  // TOPICINSIGHTS_AI_API_KEY
	AIBaseURL          string  // TOPICINSIGHTS_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel            string  // TOPICINSIGHTS_AI_MODEL (default: gpt-4o)
	AIEmbeddingModel   string  // TOPICINSIGHTS_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIEmbeddingDims    int     // TOPICINSIGHTS_AI_EMBEDDING_DIMS (default: 1536)
	AIRequestsPerMin   int     // TOPICINSIGHTS_AI_REQUESTS_PER_MIN (default: 60)
	AIMaxTokens        int     // TOPICINSIGHTS_AI_MAX_TOKENS (default: 2048)
	AITemperature      float32 // TOPICINSIGHTS_AI_TEMPERATURE (default: 0.7)
	EmbedRunnerEnabled bool    // TOPICINSIGHTS_EMBED_RUNNER_ENABLED
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads AI configuration from TOPICINSIGHTS_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("TOPICINSIGHTS_AI_ENABLED") == "true"
	p.AIAPIKey = os.Getenv("TOPICINSIGHTS_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("TOPICINSIGHTS_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIModel = getEnvOrDefault("TOPICINSIGHTS_AI_MODEL", "gpt-4o")
	p.AIEmbeddingModel = getEnvOrDefault("TOPICINSIGHTS_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	if p.AIEmbeddingDims <= 0 {
		p.AIEmbeddingDims = 1536
	}
	if p.AIRequestsPerMin <= 0 {
		p.AIRequestsPerMin = 60
	}
	if p.AIMaxTokens <= 0 {
		p.AIMaxTokens = 2048
	}
	if p.AITemperature == 0 {
		p.AITemperature = 0.7
	}
	p.EmbedRunnerEnabled = os.Getenv("TOPICINSIGHTS_EMBED_RUNNER_ENABLED") != "false"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Driver != "postgres" && p.Driver != "sqlite" {
		return errors.Errorf("unsupported driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	if p.Driver == "sqlite" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("topicinsights_%s.db", p.Mode))
		}
	}

	if p.AIEmbeddingDims <= 0 {
		p.AIEmbeddingDims = 1536
	}

	return nil
}
