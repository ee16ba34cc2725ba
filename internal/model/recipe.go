package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// JSONBStringMap is a custom type for handling string maps in JSONB
type JSONBStringMap map[string]string

// Value implements the driver.Valuer interface
func (m JSONBStringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *JSONBStringMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONBStringMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Recipe is the central entity: one row per imported or manually authored
// recipe. SourceURL is the deduplication key for imports and is nil for
// manual entries. Stored ingredient strings may carry the group-header
// marker; see IngredientLine for the in-process representation.
type Recipe struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	SourceURL    *string          `gorm:"size:2048;index" json:"source_url"`
	ImageURL     string           `gorm:"size:2048" json:"image_url"`
	Ingredients  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Servings     string           `gorm:"size:100" json:"servings"`
	PrepTime     string           `gorm:"size:255" json:"prep_time"`
	Nutrition    JSONBStringMap   `gorm:"type:jsonb;not null;default:'{}'" json:"nutrition"`
	IsFavorite   bool             `gorm:"not null;default:false" json:"is_favorite"`
}

// BeforeCreate assigns the ID and normalizes nil collections to empty
// ones. IDs are assigned here rather than by a database default so the
// same migration works on postgres and the sqlite test store.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Ingredients == nil {
		r.Ingredients = JSONBStringArray{}
	}
	if r.Instructions == nil {
		r.Instructions = JSONBStringArray{}
	}
	if r.Nutrition == nil {
		r.Nutrition = JSONBStringMap{}
	}
	return nil
}
