package mapper

import (
	"time"

	"secure-docchat-be/internal/entity"
	"secure-docchat-be/internal/model"
)

type CollectionMapper struct{}

func NewCollectionMapper() *CollectionMapper {
	return &CollectionMapper{}
}

func (m *CollectionMapper) ToEntity(c *model.Collection) *entity.Collection {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Collection{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		Status:     c.Status,
		ChunkCount: c.ChunkCount,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *CollectionMapper) ToModel(c *entity.Collection) *model.Collection {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Collection{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		Status:     c.Status,
		ChunkCount: c.ChunkCount,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}
