package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/topicinsights/topicinsights/internal/profile"
)

func TestRebind(t *testing.T) {
	sqliteStore := newTestStore(t, &mockDriver{})
	assert.Equal(t, "SELECT ? FROM x WHERE y = ?",
		sqliteStore.rebind("SELECT ? FROM x WHERE y = ?"), "sqlite keeps ? placeholders")

	pgStore := New(&mockDriver{}, &profile.Profile{Mode: "dev", Driver: "postgres"})
	t.Cleanup(func() { _ = pgStore.Close() })
	assert.Equal(t, "SELECT $1 FROM x WHERE y = $2",
		pgStore.rebind("SELECT ? FROM x WHERE y = ?"))
}

func TestMigrationFilesEmbedded(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		buf, err := migrationFS.ReadFile("migration/" + driver + "/LATEST.sql")
		assert.NoError(t, err, driver)
		assert.NotEmpty(t, buf, driver)
	}
}
