package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmbeddingServer fakes an OpenAI-compatible embeddings endpoint that
// returns one vector of the given dimensionality per input.
func newEmbeddingServer(t *testing.T, dimensions int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			vector := make([]float32, dimensions)
			for j := range vector {
				vector[j] = float32(i + 1)
			}
			data[i] = datum{Object: "embedding", Index: i, Embedding: vector}
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		}))
	}))
}

func TestNewEmbeddingServiceRequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(&EmbeddingConfig{Model: "text-embedding-3-small", Dimensions: 8})
	assert.Error(t, err)
}

func TestEmbedBatch(t *testing.T) {
	ts := newEmbeddingServer(t, 8)
	defer ts.Close()

	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Model:      "text-embedding-3-small",
		Dimensions: 8,
		APIKey:     "test-key",
		BaseURL:    ts.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, svc.Dimensions())

	vectors, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 8)
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])
}

func TestEmbedSingle(t *testing.T) {
	ts := newEmbeddingServer(t, 4)
	defer ts.Close()

	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Model:      "text-embedding-3-small",
		Dimensions: 4,
		APIKey:     "test-key",
		BaseURL:    ts.URL,
	})
	require.NoError(t, err)

	vector, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vector, 4)
}

func TestEmbedBatchRejectsEmptyInput(t *testing.T) {
	ts := newEmbeddingServer(t, 4)
	defer ts.Close()

	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Model:      "text-embedding-3-small",
		Dimensions: 4,
		APIKey:     "test-key",
		BaseURL:    ts.URL,
	})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), nil)
	assert.Error(t, err)
}

func TestEmbedBatchRejectsWrongDimensions(t *testing.T) {
	// Server returns 4-dimensional vectors, service expects 8.
	ts := newEmbeddingServer(t, 4)
	defer ts.Close()

	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Model:      "text-embedding-3-small",
		Dimensions: 8,
		APIKey:     "test-key",
		BaseURL:    ts.URL,
	})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 8")
}

func TestConfigValidate(t *testing.T) {
	disabled := &Config{Enabled: false}
	assert.NoError(t, disabled.Validate())

	valid := &Config{
		Enabled:   true,
		Embedding: EmbeddingConfig{APIKey: "k", Dimensions: 1536},
		LLM:       LLMConfig{Model: "gpt-4o"},
	}
	assert.NoError(t, valid.Validate())

	missingKey := &Config{
		Enabled:   true,
		Embedding: EmbeddingConfig{Dimensions: 1536},
		LLM:       LLMConfig{Model: "gpt-4o"},
	}
	assert.Error(t, missingKey.Validate())

	missingModel := &Config{
		Enabled:   true,
		Embedding: EmbeddingConfig{APIKey: "k", Dimensions: 1536},
	}
	assert.Error(t, missingModel.Validate())
}
