package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/foodhub/internal/models"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	// Running twice is harmless.
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.StorageEntry{}))
	assert.True(t, db.Migrator().HasTable(&models.SMSVerification{}))
	assert.True(t, db.Migrator().HasColumn(&models.StorageEntry{}, "slot_key"))
}

func TestEnsureDatabase_SkipsNonURLDSN(t *testing.T) {
	assert.NoError(t, ensureDatabase("host=localhost user=postgres dbname=foodhub"))
	assert.NoError(t, ensureDatabase("postgres://localhost:5432"))
}
