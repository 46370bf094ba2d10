package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Driver: "mysql"}
	assert.Error(t, p.Validate(), "unsupported driver")

	p = &Profile{Mode: "prod", Driver: "postgres"}
	assert.Error(t, p.Validate(), "postgres requires a dsn")

	p = &Profile{Mode: "prod", Driver: "postgres", DSN: "postgres://localhost/topics"}
	assert.NoError(t, p.Validate())
}

func TestValidateSQLiteDerivesDSN(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "prod", Driver: "sqlite", Data: dir}

	require.NoError(t, p.Validate())
	assert.Equal(t, filepath.Join(dir, "topicinsights_prod.db"), p.DSN)
}

func TestValidateCoercesUnknownMode(t *testing.T) {
	p := &Profile{Mode: "staging", Driver: "postgres", DSN: "postgres://localhost/topics"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "dev", p.Mode)
	assert.True(t, p.IsDev())
}

func TestFromEnvDefaults(t *testing.T) {
	p := &Profile{}
	p.FromEnv()

	assert.False(t, p.IsAIEnabled(), "AI stays off without an api key")
	assert.Equal(t, 1536, p.AIEmbeddingDims)
	assert.Equal(t, 60, p.AIRequestsPerMin)
	assert.Equal(t, 2048, p.AIMaxTokens)
	assert.InDelta(t, 0.7, float64(p.AITemperature), 1e-6)
	assert.Equal(t, "gpt-4o", p.AIModel)
	assert.Equal(t, "text-embedding-3-small", p.AIEmbeddingModel)
}

func TestIsAIEnabled(t *testing.T) {
	t.Setenv("TOPICINSIGHTS_AI_ENABLED", "true")
	t.Setenv("TOPICINSIGHTS_AI_API_KEY", "sk-test")

	p := &Profile{}
	p.FromEnv()
	assert.True(t, p.IsAIEnabled())
}
