package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"

	"github.com/topicinsights/topicinsights/internal/version"
)

// Migration system overview:
//
// 1. preMigrate: if the database is uninitialized, apply LATEST.sql for
//    the active driver and record the current schema version.
// 2. Migrate: compare the recorded schema version against the binary's
//    target version; LATEST.sql is written to be idempotent, so catching
//    up simply reapplies it and bumps the recorded version.
//
// Migration files live in store/migration/{driver}/LATEST.sql.

//go:embed migration
var migrationFS embed.FS

const (
	latestSchemaFileName     = "LATEST.sql"
	schemaVersionSettingName = "schema_version"
)

// Migrate brings the database schema up to the version this binary expects.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.preMigrate(ctx); err != nil {
		return errors.Wrap(err, "failed to pre-migrate")
	}

	currentVersion, err := s.getSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}
	targetVersion := version.GetSchemaVersion(s.profile.Mode)

	if semver.Compare("v"+currentVersion, "v"+targetVersion) >= 0 {
		return nil
	}

	slog.Info("migrating schema", "from", currentVersion, "to", targetVersion)
	if err := s.applyLatestSchema(ctx); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	if err := s.setSchemaVersion(ctx, targetVersion); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}
	return nil
}

func (s *Store) preMigrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}
	if initialized {
		return nil
	}

	slog.Info("initializing database schema", "driver", s.profile.Driver)
	if err := s.applyLatestSchema(ctx); err != nil {
		return errors.Wrap(err, "failed to initialize schema")
	}
	return s.setSchemaVersion(ctx, version.GetSchemaVersion(s.profile.Mode))
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	path := fmt.Sprintf("migration/%s/%s", s.profile.Driver, latestSchemaFileName)
	buf, err := migrationFS.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %q", path)
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrapf(err, "failed to execute statements in %q", path)
	}
	return nil
}

func (s *Store) getSchemaVersion(ctx context.Context) (string, error) {
	stmt := s.rebind("SELECT value FROM system_setting WHERE name = ?")
	var v string
	err := s.driver.GetDB().QueryRowContext(ctx, stmt, schemaVersionSettingName).Scan(&v)
	if err != nil {
		// Treat a missing row (or missing table on fresh databases) as
		// an unversioned schema.
		return "0.0.0", nil
	}
	return v, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, v string) error {
	stmt := s.rebind(`
		INSERT INTO system_setting (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`)
	_, err := s.driver.GetDB().ExecContext(ctx, stmt, schemaVersionSettingName, v)
	return err
}

// rebind converts ? placeholders to the $n style when running on postgres.
func (s *Store) rebind(stmt string) string {
	if s.profile.Driver != "postgres" {
		return stmt
	}
	var sb strings.Builder
	n := 0
	for _, r := range stmt {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
