package store

import (
	"time"

	"github.com/topicinsights/topicinsights/internal/profile"
	"github.com/topicinsights/topicinsights/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// dimensions is the store-wide embedding dimensionality.
	// Every vector written to or queried against the store must have
	// exactly this length.
	dimensions int

	// topicCache is a bounded read-through cache for GetTopic.
	// Entries are invalidated on every topic write path; correctness
	// never depends on it.
	topicCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:     driver,
		profile:    profile,
		dimensions: profile.AIEmbeddingDims,
		topicCache: cache.New(cacheConfig),
	}
}

// Dimensions returns the fixed embedding dimensionality of the store.
func (s *Store) Dimensions() int {
	return s.dimensions
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.topicCache.Close()
	return s.driver.Close()
}
