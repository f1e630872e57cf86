package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SerialModel is the base for models keyed by a database-assigned
// integer. This is the shape fixture records usually pin primary keys
// on, and the one sequence realignment applies to after a load.
type SerialModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BaseModel is the base for UUID-keyed models. UUID keys are assigned
// client-side, never collide with pinned fixture ids, and are skipped
// by sequence realignment.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate assigns a fresh UUID when the caller has not pinned one.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
