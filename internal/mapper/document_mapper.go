package mapper

import (
	"time"

	"secure-docchat-be/internal/entity"
	"secure-docchat-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:         d.Id,
		Filename:   d.Filename,
		SizeBytes:  d.SizeBytes,
		PageCount:  d.PageCount,
		ChunkCount: d.ChunkCount,
		Status:     d.Status,
		Error:      d.Error,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:         d.Id,
		Filename:   d.Filename,
		SizeBytes:  d.SizeBytes,
		PageCount:  d.PageCount,
		ChunkCount: d.ChunkCount,
		Status:     d.Status,
		Error:      d.Error,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}
