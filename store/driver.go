package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Driver is an interface for store driver.
// It contains all methods that a store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error

	// Topic model related methods.
	CreateTopic(ctx context.Context, create *Topic) (*Topic, error)
	ListTopics(ctx context.Context, find *FindTopic) ([]*Topic, error)
	UpdateTopic(ctx context.Context, update *UpdateTopic) (*Topic, error)
	// DeleteTopic removes the topic and, in the same transaction, all
	// dependent summaries and embeddings.
	DeleteTopic(ctx context.Context, id uuid.UUID) error

	// Summary model related methods. Summaries are immutable after creation.
	CreateSummary(ctx context.Context, create *Summary) (*Summary, error)
	// CreateSummaries inserts the whole batch in one transaction;
	// either all rows commit or none do.
	CreateSummaries(ctx context.Context, creates []*Summary) ([]*Summary, error)
	ListSummaries(ctx context.Context, find *FindSummary) ([]*Summary, error)
	DeleteSummariesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// TopicEmbedding model related methods.
	CreateTopicEmbedding(ctx context.Context, create *TopicEmbedding) (*TopicEmbedding, error)
	SearchSimilarTopics(ctx context.Context, opts *SearchSimilarOptions) ([]*SimilarTopic, error)
	FindTopicsWithoutEmbedding(ctx context.Context, limit int) ([]*Topic, error)
}
