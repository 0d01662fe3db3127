// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/templui/sitefixtures/internal/db"
)

// New returns a migrated SQLite database living in the test's temp dir.
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	connection := filepath.Join(t.TempDir(), "cms.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init("sqlite", connection)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"), "failed to migrate test database")
	return database
}
