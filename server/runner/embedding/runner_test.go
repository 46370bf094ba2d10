package embedding

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topicinsights/topicinsights/internal/profile"
	"github.com/topicinsights/topicinsights/store"
)

const testDimensions = 4

// fakeDriver keeps topics in memory and records stored embeddings.
type fakeDriver struct {
	mu       sync.Mutex
	pending  []*store.Topic
	embedded []*store.TopicEmbedding
}

func (d *fakeDriver) GetDB() *sql.DB                               { return nil }
func (d *fakeDriver) Close() error                                 { return nil }
func (d *fakeDriver) IsInitialized(context.Context) (bool, error)  { return true, nil }
func (d *fakeDriver) Ping(context.Context) error                   { return nil }
func (d *fakeDriver) DeleteTopic(context.Context, uuid.UUID) error { return nil }

func (d *fakeDriver) CreateTopic(_ context.Context, create *store.Topic) (*store.Topic, error) {
	return create, nil
}

func (d *fakeDriver) ListTopics(context.Context, *store.FindTopic) ([]*store.Topic, error) {
	return nil, nil
}

func (d *fakeDriver) UpdateTopic(_ context.Context, update *store.UpdateTopic) (*store.Topic, error) {
	return &store.Topic{ID: update.ID}, nil
}

func (d *fakeDriver) CreateSummary(_ context.Context, create *store.Summary) (*store.Summary, error) {
	return create, nil
}

func (d *fakeDriver) CreateSummaries(_ context.Context, creates []*store.Summary) ([]*store.Summary, error) {
	return creates, nil
}

func (d *fakeDriver) ListSummaries(context.Context, *store.FindSummary) ([]*store.Summary, error) {
	return nil, nil
}

func (d *fakeDriver) DeleteSummariesBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (d *fakeDriver) CreateTopicEmbedding(_ context.Context, create *store.TopicEmbedding) (*store.TopicEmbedding, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.embedded = append(d.embedded, create)
	// Once embedded, the topic is no longer pending.
	remaining := d.pending[:0]
	for _, topic := range d.pending {
		if topic.ID != create.TopicID {
			remaining = append(remaining, topic)
		}
	}
	d.pending = remaining
	return create, nil
}

func (d *fakeDriver) SearchSimilarTopics(context.Context, *store.SearchSimilarOptions) ([]*store.SimilarTopic, error) {
	return nil, nil
}

func (d *fakeDriver) FindTopicsWithoutEmbedding(_ context.Context, limit int) ([]*store.Topic, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) > limit {
		return d.pending[:limit], nil
	}
	return d.pending, nil
}

type fakeEmbedder struct {
	mu    sync.Mutex
	texts []string
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.texts = append(e.texts, texts...)
	e.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, testDimensions)
	}
	return vectors, nil
}

func (e *fakeEmbedder) Dimensions() int { return testDimensions }

func newRunnerUnderTest(t *testing.T, driver *fakeDriver, embedder *fakeEmbedder) *Runner {
	t.Helper()
	s := store.New(driver, &profile.Profile{
		Mode:            "dev",
		Driver:          "sqlite",
		AIEmbeddingDims: testDimensions,
	})
	t.Cleanup(func() { _ = s.Close() })
	return NewRunner(s, embedder)
}

func TestRunOnceEmbedsPendingTopics(t *testing.T) {
	description := "central bank policy"
	driver := &fakeDriver{
		pending: []*store.Topic{
			{ID: uuid.New(), UID: "t1", Name: "rates", Description: &description, Keywords: []string{"ecb", "fed"}},
			{ID: uuid.New(), UID: "t2", Name: "housing"},
		},
	}
	embedder := &fakeEmbedder{}
	runner := newRunnerUnderTest(t, driver, embedder)

	runner.RunOnce(context.Background())

	require.Len(t, driver.embedded, 2)
	assert.Empty(t, driver.pending, "all topics picked up")
	for _, embedding := range driver.embedded {
		assert.Len(t, embedding.Embedding, testDimensions)
	}

	require.Len(t, embedder.texts, 2)
	assert.Contains(t, embedder.texts[0], "rates")
	assert.Contains(t, embedder.texts[0], "central bank policy")
	assert.Contains(t, embedder.texts[0], "ecb, fed")
}

func TestRunOnceNoPendingTopics(t *testing.T) {
	driver := &fakeDriver{}
	embedder := &fakeEmbedder{}
	runner := newRunnerUnderTest(t, driver, embedder)

	runner.RunOnce(context.Background())

	assert.Empty(t, driver.embedded)
	assert.Empty(t, embedder.texts, "embedder is not called without work")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	driver := &fakeDriver{}
	runner := newRunnerUnderTest(t, driver, &fakeEmbedder{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}
