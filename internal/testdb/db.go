package testdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/at-my-table/backend/internal/model"
	"github.com/at-my-table/backend/internal/models"
)

// Setup creates a throwaway sqlite database migrated with the application
// models. Each test gets its own file under t.TempDir.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&model.Recipe{},
	))

	return db
}
