package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// Topic represents a tracked topic with its keywords and metadata.
type Topic struct {
	ID          uuid.UUID
	UID         string // short, API-facing resource identifier
	Name        string
	Description *string
	// Keywords preserve insertion order for display; lookup is via
	// membership, never order. Deduplication is the caller's concern.
	Keywords []string
	OwnerID  uuid.UUID
	IsActive bool
	Metadata map[string]any
	CreatedAt time.Time
	// UpdatedAt is maintained by the store's own update path and is
	// monotonically non-decreasing, always >= CreatedAt.
	UpdatedAt time.Time
}

// FindTopic is the find condition for topics.
type FindTopic struct {
	ID         *uuid.UUID
	UID        *string
	OwnerID    *uuid.UUID
	IsActive   *bool
	NameSearch *string // case-insensitive substring match on name
	Keyword    *string // membership test against the keywords list
	Limit      *int
}

// UpdateTopic carries the mutable fields of a topic. Nil fields are
// left untouched. UpdatedAt is never supplied by callers.
type UpdateTopic struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Keywords    []string
	IsActive    *bool
	Metadata    map[string]any
}

const topicCachePrefix = "topic:"

// CreateTopic creates a new topic owned by create.OwnerID.
func (s *Store) CreateTopic(ctx context.Context, create *Topic) (*Topic, error) {
	if strings.TrimSpace(create.Name) == "" {
		return nil, ConstraintViolation("topic name must not be empty")
	}
	if create.ID == uuid.Nil {
		create.ID = uuid.New()
	}
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.Keywords == nil {
		create.Keywords = []string{}
	}
	return s.driver.CreateTopic(ctx, create)
}

// GetTopic returns the topic with the given id, reading through the
// bounded topic cache.
func (s *Store) GetTopic(ctx context.Context, id uuid.UUID) (*Topic, error) {
	if raw, ok := s.topicCache.Get(topicCachePrefix + id.String()); ok {
		topic := &Topic{}
		if err := json.Unmarshal(raw, topic); err == nil {
			return topic, nil
		}
		// Unreadable cache entry; fall through to the driver.
		s.topicCache.Delete(topicCachePrefix + id.String())
	}

	topic, err := s.getTopicUncached(ctx, &FindTopic{ID: &id})
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(topic); err == nil {
		s.topicCache.Set(topicCachePrefix+id.String(), raw, 0)
	}
	return topic, nil
}

// GetTopicByUID returns the topic with the given short uid, scoped to
// the owner. A Nil owner skips the scoping, for internal callers.
func (s *Store) GetTopicByUID(ctx context.Context, uid string, owner uuid.UUID) (*Topic, error) {
	find := &FindTopic{UID: &uid}
	if owner != uuid.Nil {
		find.OwnerID = &owner
	}
	return s.getTopicUncached(ctx, find)
}

func (s *Store) getTopicUncached(ctx context.Context, find *FindTopic) (*Topic, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.driver.ListTopics(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, NotFound("topic not found")
	}
	return list[0], nil
}

// ListTopics lists topics matching the find condition.
func (s *Store) ListTopics(ctx context.Context, find *FindTopic) ([]*Topic, error) {
	if find.Limit != nil && *find.Limit <= 0 {
		return nil, ConstraintViolation("limit must be positive, got %d", *find.Limit)
	}
	return s.driver.ListTopics(ctx, find)
}

// UpdateTopic applies the update and invalidates the cached entry.
// The backing store refreshes updated_at on every mutation.
func (s *Store) UpdateTopic(ctx context.Context, update *UpdateTopic) (*Topic, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, ConstraintViolation("topic name must not be empty")
	}
	topic, err := s.driver.UpdateTopic(ctx, update)
	if err != nil {
		return nil, err
	}
	s.topicCache.Delete(topicCachePrefix + update.ID.String())
	return topic, nil
}

// DeleteTopic removes the topic together with all dependent summaries
// and embeddings in a single transaction.
func (s *Store) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	if err := s.driver.DeleteTopic(ctx, id); err != nil {
		return err
	}
	s.topicCache.Delete(topicCachePrefix + id.String())
	return nil
}

// HealthCheck reports whether the backing store is reachable.
// This is the one place errors are intentionally swallowed: any failure,
// whatever its kind, becomes false.
func (s *Store) HealthCheck(ctx context.Context) bool {
	return s.driver.Ping(ctx) == nil
}
