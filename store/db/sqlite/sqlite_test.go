package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topicinsights/topicinsights/internal/profile"
	"github.com/topicinsights/topicinsights/store"
)

// newTestingStore opens a fresh sqlite database in a temp directory and
// migrates it, giving each test an isolated end-to-end store.
func newTestingStore(t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:            "dev",
		Driver:          "sqlite",
		Data:            t.TempDir(),
		AIEmbeddingDims: 4,
	}
	require.NoError(t, p.Validate())

	driver, err := NewDB(p)
	require.NoError(t, err)

	s := store.New(driver, p)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTestTopic(t *testing.T, s *store.Store, name string) *store.Topic {
	t.Helper()
	topic, err := s.CreateTopic(context.Background(), &store.Topic{
		Name:     name,
		Keywords: []string{"alpha", "beta"},
		OwnerID:  uuid.New(),
		IsActive: true,
		Metadata: map[string]any{"origin": "test"},
	})
	require.NoError(t, err)
	return topic
}

func TestTopicLifecycle(t *testing.T) {
	s := newTestingStore(t)
	ctx := context.Background()

	topic := createTestTopic(t, s, "climate policy")
	assert.False(t, topic.UpdatedAt.Before(topic.CreatedAt))

	got, err := s.GetTopicByUID(ctx, topic.UID, topic.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, topic.ID, got.ID)
	assert.Equal(t, "climate policy", got.Name)
	assert.Equal(t, []string{"alpha", "beta"}, got.Keywords)
	assert.Equal(t, "test", got.Metadata["origin"])

	newName := "climate and energy policy"
	updated, err := s.UpdateTopic(ctx, &store.UpdateTopic{ID: topic.ID, Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt),
		"updated_at stays monotonically non-decreasing")

	require.NoError(t, s.DeleteTopic(ctx, topic.ID))
	_, err = s.GetTopicByUID(ctx, topic.UID, uuid.Nil)
	assert.True(t, store.IsCode(err, store.ErrCodeNotFound))
}

func TestListTopicsFilters(t *testing.T) {
	s := newTestingStore(t)
	ctx := context.Background()

	first := createTestTopic(t, s, "semiconductor supply")
	createTestTopic(t, s, "energy markets")

	q := "semiconductor"
	list, err := s.ListTopics(ctx, &store.FindTopic{NameSearch: &q})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	// JSON columns must land as TEXT; a BLOB storage class would defeat
	// the json_each membership lookup below.
	var keywordsType, metadataType string
	require.NoError(t, s.GetDriver().GetDB().QueryRowContext(ctx,
		"SELECT typeof(keywords), typeof(metadata) FROM topics LIMIT 1").Scan(&keywordsType, &metadataType))
	assert.Equal(t, "text", keywordsType)
	assert.Equal(t, "text", metadataType)

	keyword := "alpha"
	list, err = s.ListTopics(ctx, &store.FindTopic{Keyword: &keyword})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Membership is exact: substrings and absent keywords do not match.
	keyword = "alph"
	list, err = s.ListTopics(ctx, &store.FindTopic{Keyword: &keyword})
	require.NoError(t, err)
	assert.Empty(t, list)

	keyword = "gamma"
	list, err = s.ListTopics(ctx, &store.FindTopic{Keyword: &keyword})
	require.NoError(t, err)
	assert.Empty(t, list)

	owner := first.OwnerID
	list, err = s.ListTopics(ctx, &store.FindTopic{OwnerID: &owner})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestSummariesRoundTrip(t *testing.T) {
	s := newTestingStore(t)
	ctx := context.Background()
	topic := createTestTopic(t, s, "banking")

	sentiment := "negative"
	url := "https://example.com/report"
	created, err := s.CreateSummary(ctx, &store.Summary{
		TopicID:     topic.ID,
		Content:     "Lending standards tightened.",
		Sentiment:   &sentiment,
		SourceURL:   &url,
		KeyConcepts: []string{"credit", "rates"},
	})
	require.NoError(t, err)

	list, err := s.GetTopicSummaries(ctx, topic.ID, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Lending standards tightened.", list[0].Content)
	assert.Equal(t, []string{"credit", "rates"}, list[0].KeyConcepts)
	require.NotNil(t, list[0].Sentiment)
	assert.Equal(t, "negative", *list[0].Sentiment)
}

func TestBatchCreateSummariesRollsBack(t *testing.T) {
	s := newTestingStore(t)
	ctx := context.Background()
	topic := createTestTopic(t, s, "batch")

	// The second row references a missing topic, so the whole batch
	// must roll back at the driver level.
	_, err := s.BatchCreateSummaries(ctx, []*store.Summary{
		{TopicID: topic.ID, Content: "valid row"},
		{TopicID: uuid.New(), Content: "dangling reference"},
	})
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrCodeNotFound))

	list, err := s.GetTopicSummaries(ctx, topic.ID, nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, list, "no partial writes survive a failed batch")
}

func TestSummaryForeignKey(t *testing.T) {
	s := newTestingStore(t)

	_, err := s.CreateSummary(context.Background(), &store.Summary{
		TopicID: uuid.New(),
		Content: "orphaned",
	})
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrCodeNotFound))
}

func TestCleanupOldSummaries(t *testing.T) {
	s := newTestingStore(t)
	ctx := context.Background()
	topic := createTestTopic(t, s, "cleanup")

	_, err := s.CreateSummary(ctx, &store.Summary{TopicID: topic.ID, Content: "row"})
	require.NoError(t, err)

	// A negative retention is rejected; a large one deletes nothing.
	_, err = s.CleanupOldSummaries(ctx, -1)
	require.Error(t, err)

	deleted, err := s.CleanupOldSummaries(ctx, 365)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSimilaritySearch(t *testing.T) {
	s := newTestingStore(t)
	ctx := context.Background()

	topicA := createTestTopic(t, s, "vectors a")
	topicB := createTestTopic(t, s, "vectors b")

	_, err := s.StoreEmbedding(ctx, topicA.ID, []float32{1, 0, 0, 0}, map[string]any{"label": "a"})
	require.NoError(t, err)
	_, err = s.StoreEmbedding(ctx, topicB.ID, []float32{0, 1, 0, 0}, map[string]any{"label": "b"})
	require.NoError(t, err)

	results, err := s.SearchSimilar(ctx, &store.SearchSimilarOptions{
		Vector:    []float32{0.9, 0.1, 0, 0},
		Threshold: 0.5,
		Limit:     10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1, "orthogonal embedding stays below the threshold")
	assert.Equal(t, topicA.ID, results[0].TopicID)
	assert.Greater(t, results[0].Similarity, float32(0.5))
	assert.Equal(t, "a", results[0].Metadata["label"])

	// Nothing clears a near-1.0 threshold for an orthogonal query.
	results, err = s.SearchSimilar(ctx, &store.SearchSimilarOptions{
		Vector:    []float32{0, 0, 1, 0},
		Threshold: 0.9999,
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteTopicCascades(t *testing.T) {
	s := newTestingStore(t)
	ctx := context.Background()
	topic := createTestTopic(t, s, "cascade")

	_, err := s.CreateSummary(ctx, &store.Summary{TopicID: topic.ID, Content: "to be removed"})
	require.NoError(t, err)
	_, err = s.StoreEmbedding(ctx, topic.ID, []float32{1, 0, 0, 0}, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTopic(ctx, topic.ID))

	list, err := s.GetTopicSummaries(ctx, topic.ID, nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	results, err := s.SearchSimilar(ctx, &store.SearchSimilarOptions{
		Vector:    []float32{1, 0, 0, 0},
		Threshold: 0.5,
		Limit:     10,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindTopicsWithoutEmbedding(t *testing.T) {
	s := newTestingStore(t)
	ctx := context.Background()

	pending := createTestTopic(t, s, "pending")
	embedded := createTestTopic(t, s, "embedded")
	_, err := s.StoreEmbedding(ctx, embedded.ID, []float32{1, 0, 0, 0}, nil)
	require.NoError(t, err)

	topics, err := s.FindTopicsWithoutEmbedding(ctx, 10)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, pending.ID, topics[0].ID)
}

func TestHealthCheck(t *testing.T) {
	s := newTestingStore(t)
	assert.True(t, s.HealthCheck(context.Background()))
}
