package db

import (
	"github.com/pkg/errors"

	"github.com/topicinsights/topicinsights/internal/profile"
	"github.com/topicinsights/topicinsights/store"
	"github.com/topicinsights/topicinsights/store/db/postgres"
	"github.com/topicinsights/topicinsights/store/db/sqlite"
)

// PostgreSQL is the production database: pgvector-backed similarity
// search, JSONB metadata, trigger-maintained timestamps, row-level
// security. SQLite is supported for development and testing only; its
// similarity search is a brute-force scan.

// NewDBDriver creates a new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
