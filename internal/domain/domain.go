// Package domain holds the persisted buyareco models and the vocabularies
// (vibes, categories, statuses) they are validated against.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the UUID primary key and timestamps shared by every table.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a v4 UUID when the caller did not set one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Models lists every table for AutoMigrate, parents before children.
func Models() []any {
	return []any{
		&User{},
		&Location{},
		&Save{},
		&List{},
		&ListItem{},
		&RecommendationRequest{},
		&Suggestion{},
		&Message{},
		&Notification{},
		&SavedPlace{},
	}
}
