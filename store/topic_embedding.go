package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TopicEmbedding is the vector representation of a topic, computed
// out-of-band by an embedding model and persisted verbatim.
type TopicEmbedding struct {
	ID        uuid.UUID
	TopicID   uuid.UUID
	Embedding []float32
	Metadata  map[string]any
	CreatedAt time.Time
}

// SimilarTopic is one similarity search result.
type SimilarTopic struct {
	TopicID    uuid.UUID      `json:"topic_id"`
	Similarity float32        `json:"similarity"`
	Metadata   map[string]any `json:"metadata"`
}

// SearchSimilarOptions are the options for similarity search.
// Similarity is 1 - cosine distance; only rows strictly above Threshold
// are returned, sorted descending, capped at Limit.
type SearchSimilarOptions struct {
	Vector    []float32
	Threshold float32
	Limit     int
}

const (
	defaultSearchThreshold = 0.8
	defaultSearchLimit     = 10
)

// StoreEmbedding persists a vector for an existing topic and returns
// the created row. The vector length must equal the store's fixed
// dimensionality.
func (s *Store) StoreEmbedding(ctx context.Context, topicID uuid.UUID, vector []float32, metadata map[string]any) (*TopicEmbedding, error) {
	if topicID == uuid.Nil {
		return nil, ConstraintViolation("embedding requires a topic id")
	}
	if len(vector) != s.dimensions {
		return nil, DimensionMismatch(s.dimensions, len(vector))
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return s.driver.CreateTopicEmbedding(ctx, &TopicEmbedding{
		ID:        uuid.New(),
		TopicID:   topicID,
		Embedding: vector,
		Metadata:  metadata,
	})
}

// SearchSimilar ranks stored embeddings by cosine similarity against the
// query vector. A zero Threshold falls back to 0.8 and a zero Limit to 10.
func (s *Store) SearchSimilar(ctx context.Context, opts *SearchSimilarOptions) ([]*SimilarTopic, error) {
	if len(opts.Vector) != s.dimensions {
		return nil, DimensionMismatch(s.dimensions, len(opts.Vector))
	}
	// Defaults are applied to a copy; the caller's options stay untouched.
	resolved := *opts
	if resolved.Threshold == 0 {
		resolved.Threshold = defaultSearchThreshold
	}
	if resolved.Threshold < 0 || resolved.Threshold > 1 {
		return nil, ConstraintViolation("similarity threshold must be in [0,1], got %v", resolved.Threshold)
	}
	if resolved.Limit == 0 {
		resolved.Limit = defaultSearchLimit
	}
	if resolved.Limit < 0 {
		return nil, ConstraintViolation("limit must be positive, got %d", resolved.Limit)
	}
	return s.driver.SearchSimilarTopics(ctx, &resolved)
}

// FindTopicsWithoutEmbedding returns active topics that have no stored
// embedding yet, newest first. Used by the background embedding runner.
func (s *Store) FindTopicsWithoutEmbedding(ctx context.Context, limit int) ([]*Topic, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.driver.FindTopicsWithoutEmbedding(ctx, limit)
}
