package database

import (
	"gorm.io/gorm"

	"github.com/at-my-table/backend/internal/model"
	"github.com/at-my-table/backend/internal/models"
)

// Migrate applies the schema for all application models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&model.Recipe{},
	)
}
