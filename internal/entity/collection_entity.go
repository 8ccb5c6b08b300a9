package entity

import (
	"time"

	"github.com/google/uuid"
)

type Collection struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Status     string
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
