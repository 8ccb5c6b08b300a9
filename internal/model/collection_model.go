package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CollectionStatusBuilding = "building"
	CollectionStatusActive   = "active"
	CollectionStatusFailed   = "failed"
	CollectionStatusRetired  = "retired"
)

// Collection groups the chunks of one indexing run. At most one
// collection is active; queries only ever search the active one.
type Collection struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     string    `gorm:"type:varchar(16);not null;index"`
	ChunkCount int       `gorm:"default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Collection) TableName() string {
	return "collections"
}
