package database

import (
	"testing"
	"time"

	"watchlist-backend/internal/config"
	"watchlist-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestOpenMigratesSchema(t *testing.T) {
	db, err := Open(sqlite.Open(memoryDSN(t)), config.DatabaseConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.True(t, db.Migrator().HasTable(&models.MediaItem{}))
	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasIndex(&models.MediaItem{}, "idx_media_owner_title_type"))
	assert.NoError(t, db.HealthCheck())
}

func TestOpenDefaultsQueryTimeout(t *testing.T) {
	db, err := Open(sqlite.Open(memoryDSN(t)), config.DatabaseConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, 10*time.Second, db.GetQueryTimeout())
}

func memoryDSN(t *testing.T) string {
	return "file:" + t.Name() + "?mode=memory&cache=shared"
}
