// Package embedding backfills vectors for topics that do not have one
// yet, so that similarity search covers topics created before AI was
// configured or while the provider was unavailable.
package embedding

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/topicinsights/topicinsights/plugin/ai"
	"github.com/topicinsights/topicinsights/store"
)

const (
	defaultInterval  = 2 * time.Minute
	defaultBatchSize = 8

	// Summaries folded into the embedding text per topic.
	summariesPerTopic = 5

	// Providers cap input length; keep well under typical token limits.
	maxEmbeddingTextLen = 8000
)

type Runner struct {
	store     *store.Store
	embedder  ai.EmbeddingService
	interval  time.Duration
	batchSize int
}

// NewRunner creates a topic embedding backfill runner.
func NewRunner(store *store.Store, embedder ai.EmbeddingService) *Runner {
	return &Runner{
		store:     store,
		embedder:  embedder,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
}

// Run starts the background task and blocks until the context is done.
func (r *Runner) Run(ctx context.Context) {
	// Process once on startup.
	r.processPendingTopics(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.processPendingTopics(ctx)
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce processes pending topics once, for manual triggering.
func (r *Runner) RunOnce(ctx context.Context) {
	r.processPendingTopics(ctx)
}

func (r *Runner) processPendingTopics(ctx context.Context) {
	topics, err := r.store.FindTopicsWithoutEmbedding(ctx, r.batchSize*20)
	if err != nil {
		slog.Error("failed to find topics without embedding", "error", err)
		return
	}
	if len(topics) == 0 {
		return
	}

	slog.Info("processing topics for embedding", "count", len(topics))

	for i := 0; i < len(topics); i += r.batchSize {
		select {
		case <-ctx.Done():
			slog.Info("embedding processing cancelled", "processed", i, "total", len(topics))
			return
		default:
		}

		end := i + r.batchSize
		if end > len(topics) {
			end = len(topics)
		}
		if err := r.processBatch(ctx, topics[i:end]); err != nil {
			slog.Error("failed to process batch", "error", err)
			continue
		}
		slog.Info("batch processed", "count", end-i, "total", len(topics))
	}
}

func (r *Runner) processBatch(ctx context.Context, topics []*store.Topic) error {
	texts := make([]string, len(topics))
	for i, topic := range topics {
		texts[i] = r.buildTopicText(ctx, topic)
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, topic := range topics {
		topic, vector := topic, vectors[i]
		g.Go(func() error {
			_, err := r.store.StoreEmbedding(gctx, topic.ID, vector, map[string]any{
				"source": "backfill",
			})
			if err != nil {
				slog.Error("failed to store embedding", "topic", topic.UID, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// buildTopicText assembles the text to embed for a topic: its name,
// description, keywords, and a handful of recent summaries.
func (r *Runner) buildTopicText(ctx context.Context, topic *store.Topic) string {
	parts := []string{topic.Name}
	if topic.Description != nil && *topic.Description != "" {
		parts = append(parts, *topic.Description)
	}
	if len(topic.Keywords) > 0 {
		parts = append(parts, strings.Join(topic.Keywords, ", "))
	}

	summaries, err := r.store.GetTopicSummaries(ctx, topic.ID, nil, nil, summariesPerTopic)
	if err != nil {
		slog.Warn("failed to fetch summaries for embedding", "topic", topic.UID, "error", err)
	}
	for _, summary := range summaries {
		parts = append(parts, summary.Content)
	}

	text := strings.Join(parts, "\n\n")
	if len(text) > maxEmbeddingTextLen {
		text = text[:maxEmbeddingTextLen]
	}
	return text
}
