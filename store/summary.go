package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Summary is a piece of summarized content attached to a topic.
// Summaries are immutable after creation.
type Summary struct {
	ID        uuid.UUID
	TopicID   uuid.UUID
	Content   string
	Metadata  map[string]any
	CreatedAt time.Time

	SourceURL  *string
	SourceType *string
	Sentiment  *string
	// KeyConcepts preserve insertion order for display purposes.
	KeyConcepts []string
}

// FindSummary is the find condition for summaries. Time bounds are inclusive.
type FindSummary struct {
	TopicID       *uuid.UUID
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         *int
}

// TopicDigest is the aggregate of a topic's summaries over a trailing window.
type TopicDigest struct {
	SummaryText string   `json:"summary_text"`
	KeyConcepts []string `json:"key_concepts"`
	Sentiment   string   `json:"sentiment"`
	SourceCount int      `json:"source_count"`
}

const defaultSummaryLimit = 10

// CreateSummary appends a summary to an existing topic.
func (s *Store) CreateSummary(ctx context.Context, create *Summary) (*Summary, error) {
	if err := validateSummary(create); err != nil {
		return nil, err
	}
	fillSummaryDefaults(create)
	return s.driver.CreateSummary(ctx, create)
}

// BatchCreateSummaries inserts all summaries in one transaction.
// Partial failures are not individually recoverable: the whole batch
// either commits or surfaces as a single error.
func (s *Store) BatchCreateSummaries(ctx context.Context, creates []*Summary) ([]*Summary, error) {
	if len(creates) == 0 {
		return nil, ConstraintViolation("summary batch must not be empty")
	}
	for _, create := range creates {
		if err := validateSummary(create); err != nil {
			return nil, err
		}
		fillSummaryDefaults(create)
	}
	return s.driver.CreateSummaries(ctx, creates)
}

// GetTopicSummaries returns summaries for the topic ordered by creation
// time descending, optionally bounded by an inclusive date range.
func (s *Store) GetTopicSummaries(ctx context.Context, topicID uuid.UUID, startDate, endDate *time.Time, limit int) ([]*Summary, error) {
	if limit <= 0 {
		limit = defaultSummaryLimit
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, ConstraintViolation("end date %s precedes start date %s",
			endDate.Format(time.RFC3339), startDate.Format(time.RFC3339))
	}
	return s.driver.ListSummaries(ctx, &FindSummary{
		TopicID:       &topicID,
		CreatedAfter:  startDate,
		CreatedBefore: endDate,
		Limit:         &limit,
	})
}

// AggregateTopicSummary digests the topic's summaries from the trailing
// daysBack window: content concatenated newest first with a blank-line
// separator, key concepts unioned with duplicates removed, the most
// frequent sentiment label, and the count of distinct non-null source URLs.
func (s *Store) AggregateTopicSummary(ctx context.Context, topicID uuid.UUID, daysBack int) (*TopicDigest, error) {
	if daysBack <= 0 {
		daysBack = 7
	}
	since := time.Now().AddDate(0, 0, -daysBack)
	summaries, err := s.driver.ListSummaries(ctx, &FindSummary{
		TopicID:      &topicID,
		CreatedAfter: &since,
	})
	if err != nil {
		return nil, err
	}
	return digestSummaries(summaries), nil
}

// CleanupOldSummaries deletes summaries older than the given number of
// days, returning the number of rows removed.
func (s *Store) CleanupOldSummaries(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, ConstraintViolation("retention days must be positive, got %d", days)
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	return s.driver.DeleteSummariesBefore(ctx, cutoff)
}

func validateSummary(create *Summary) error {
	if create.TopicID == uuid.Nil {
		return ConstraintViolation("summary requires a topic id")
	}
	if strings.TrimSpace(create.Content) == "" {
		return ConstraintViolation("summary content must not be empty")
	}
	return nil
}

func fillSummaryDefaults(create *Summary) {
	if create.ID == uuid.Nil {
		create.ID = uuid.New()
	}
	if create.Metadata == nil {
		create.Metadata = map[string]any{}
	}
}

// digestSummaries folds a newest-first summary list into a TopicDigest.
func digestSummaries(summaries []*Summary) *TopicDigest {
	digest := &TopicDigest{KeyConcepts: []string{}}

	parts := make([]string, 0, len(summaries))
	seenConcepts := map[string]bool{}
	seenSources := map[string]bool{}
	sentimentCounts := map[string]int{}

	for _, summary := range summaries {
		parts = append(parts, summary.Content)
		for _, concept := range summary.KeyConcepts {
			if !seenConcepts[concept] {
				seenConcepts[concept] = true
				digest.KeyConcepts = append(digest.KeyConcepts, concept)
			}
		}
		if summary.SourceURL != nil && *summary.SourceURL != "" {
			seenSources[*summary.SourceURL] = true
		}
		if summary.Sentiment != nil && *summary.Sentiment != "" {
			sentimentCounts[*summary.Sentiment]++
		}
	}

	digest.SummaryText = strings.Join(parts, "\n\n")
	digest.SourceCount = len(seenSources)

	best := 0
	for sentiment, count := range sentimentCounts {
		if count > best {
			best = count
			digest.Sentiment = sentiment
		}
	}
	return digest
}
