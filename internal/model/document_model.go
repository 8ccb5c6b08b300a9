package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentStatusUploaded   = "uploaded"
	DocumentStatusProcessing = "processing"
	DocumentStatusIndexed    = "indexed"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Filename   string    `gorm:"type:varchar(512);not null"`
	SizeBytes  int64     `gorm:"not null"`
	PageCount  int       `gorm:"default:0"`
	ChunkCount int       `gorm:"default:0"`
	Status     string    `gorm:"type:varchar(16);not null;index"`
	Error      string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
