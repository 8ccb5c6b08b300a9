package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID
	Filename   string
	SizeBytes  int64
	PageCount  int
	ChunkCount int
	Status     string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
