package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByCollectionID filters chunks by their owning collection.
type ByCollectionID struct {
	CollectionID uuid.UUID
}

func (s ByCollectionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection_id = ?", s.CollectionID)
}

// ByDocumentID filters by source document.
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// ByStatus filters by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
