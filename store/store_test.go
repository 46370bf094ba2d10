package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/topicinsights/topicinsights/internal/profile"
)

// mockDriver implements Driver with overridable behavior per method, so
// store-level logic can be exercised without a database.
type mockDriver struct {
	pingFunc                  func(ctx context.Context) error
	createTopicFunc           func(ctx context.Context, create *Topic) (*Topic, error)
	listTopicsFunc            func(ctx context.Context, find *FindTopic) ([]*Topic, error)
	updateTopicFunc           func(ctx context.Context, update *UpdateTopic) (*Topic, error)
	deleteTopicFunc           func(ctx context.Context, id uuid.UUID) error
	createSummaryFunc         func(ctx context.Context, create *Summary) (*Summary, error)
	createSummariesFunc       func(ctx context.Context, creates []*Summary) ([]*Summary, error)
	listSummariesFunc         func(ctx context.Context, find *FindSummary) ([]*Summary, error)
	deleteSummariesBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)
	createEmbeddingFunc       func(ctx context.Context, create *TopicEmbedding) (*TopicEmbedding, error)
	searchSimilarFunc         func(ctx context.Context, opts *SearchSimilarOptions) ([]*SimilarTopic, error)
	findWithoutEmbeddingFunc  func(ctx context.Context, limit int) ([]*Topic, error)

	listTopicsCalls int
}

func (m *mockDriver) GetDB() *sql.DB { return nil }
func (m *mockDriver) Close() error   { return nil }

func (m *mockDriver) IsInitialized(_ context.Context) (bool, error) { return true, nil }

func (m *mockDriver) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func (m *mockDriver) CreateTopic(ctx context.Context, create *Topic) (*Topic, error) {
	if m.createTopicFunc != nil {
		return m.createTopicFunc(ctx, create)
	}
	return create, nil
}

func (m *mockDriver) ListTopics(ctx context.Context, find *FindTopic) ([]*Topic, error) {
	m.listTopicsCalls++
	if m.listTopicsFunc != nil {
		return m.listTopicsFunc(ctx, find)
	}
	return nil, nil
}

func (m *mockDriver) UpdateTopic(ctx context.Context, update *UpdateTopic) (*Topic, error) {
	if m.updateTopicFunc != nil {
		return m.updateTopicFunc(ctx, update)
	}
	return &Topic{ID: update.ID}, nil
}

func (m *mockDriver) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	if m.deleteTopicFunc != nil {
		return m.deleteTopicFunc(ctx, id)
	}
	return nil
}

func (m *mockDriver) CreateSummary(ctx context.Context, create *Summary) (*Summary, error) {
	if m.createSummaryFunc != nil {
		return m.createSummaryFunc(ctx, create)
	}
	return create, nil
}

func (m *mockDriver) CreateSummaries(ctx context.Context, creates []*Summary) ([]*Summary, error) {
	if m.createSummariesFunc != nil {
		return m.createSummariesFunc(ctx, creates)
	}
	return creates, nil
}

func (m *mockDriver) ListSummaries(ctx context.Context, find *FindSummary) ([]*Summary, error) {
	if m.listSummariesFunc != nil {
		return m.listSummariesFunc(ctx, find)
	}
	return nil, nil
}

func (m *mockDriver) DeleteSummariesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteSummariesBeforeFunc != nil {
		return m.deleteSummariesBeforeFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *mockDriver) CreateTopicEmbedding(ctx context.Context, create *TopicEmbedding) (*TopicEmbedding, error) {
	if m.createEmbeddingFunc != nil {
		return m.createEmbeddingFunc(ctx, create)
	}
	return create, nil
}

func (m *mockDriver) SearchSimilarTopics(ctx context.Context, opts *SearchSimilarOptions) ([]*SimilarTopic, error) {
	if m.searchSimilarFunc != nil {
		return m.searchSimilarFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockDriver) FindTopicsWithoutEmbedding(ctx context.Context, limit int) ([]*Topic, error) {
	if m.findWithoutEmbeddingFunc != nil {
		return m.findWithoutEmbeddingFunc(ctx, limit)
	}
	return nil, nil
}

const testDimensions = 4

func newTestStore(t *testing.T, driver Driver) *Store {
	t.Helper()
	s := New(driver, &profile.Profile{
		Mode:            "dev",
		Driver:          "sqlite",
		AIEmbeddingDims: testDimensions,
	})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }
