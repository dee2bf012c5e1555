// Package testutil holds helpers shared by store-backed tests.
package testutil

import (
	"testing"
	"time"

	"realones/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory sqlite database. A single connection keeps
// every statement on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Now returns the current time truncated to milliseconds in UTC, which round-trips
// through every store we test against.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
