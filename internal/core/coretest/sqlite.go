// AngelaMos | 2026
// sqlite.go

// Package coretest provides a migrated embedded database for package tests.
package coretest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/support-gateway/internal/config"
	"github.com/carterperez-dev/support-gateway/internal/core"
)

func NewSQLite(t testing.TB) *core.Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gateway.db")

	db, err := core.NewDatabase(context.Background(), config.DatabaseConfig{
		URL: "sqlite://" + path,
	})
	require.NoError(t, err)

	require.NoError(t, db.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = db.Close() //nolint:errcheck // test cleanup
	})

	return db
}
