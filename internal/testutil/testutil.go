// Package testutil provides a migrated in-memory database for tests.
package testutil

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB returns a fresh SQLite database with every migration applied. Each call
// gets its own private in-memory database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := database.Open(sqlite.Open("file::memory:?_foreign_keys=on"), logger.Silent)
	require.NoError(tb, err)

	// A single connection keeps every statement on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(tb, database.Migrate(db))

	tb.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
