// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"watchlist-backend/internal/config"
	"watchlist-backend/internal/database"

	"gorm.io/driver/sqlite"
)

var seq atomic.Int64

// New returns a migrated in-memory database private to the calling test.
func New(t testing.TB) *database.Database {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, seq.Add(1))

	db, err := database.Open(sqlite.Open(dsn), config.DatabaseConfig{QueryTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// A shared-cache memory database serialises writers anyway; one
	// connection avoids "table is locked" errors under concurrent requests.
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })
	return db
}
