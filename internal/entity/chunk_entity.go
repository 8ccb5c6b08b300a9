package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chunk struct {
	Id             uuid.UUID
	CollectionId   uuid.UUID
	Document       string
	EmbeddingValue []float32
	ChunkIndex     int
	Metadata       map[string]interface{}
	CreatedAt      time.Time
}
