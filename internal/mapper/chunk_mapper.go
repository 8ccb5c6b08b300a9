package mapper

import (
	"encoding/json"

	"secure-docchat-be/internal/entity"
	"secure-docchat-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(c.Metadata) > 0 {
		// Corrupt metadata degrades to nil rather than failing the read.
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.Chunk{
		Id:             c.Id,
		CollectionId:   c.CollectionId,
		Document:       c.Document,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		ChunkIndex:     c.ChunkIndex,
		Metadata:       metadata,
		CreatedAt:      c.CreatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.Chunk {
	if c == nil {
		return nil
	}

	var metadata datatypes.JSON
	if c.Metadata != nil {
		if raw, err := json.Marshal(c.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.Chunk{
		Id:             c.Id,
		CollectionId:   c.CollectionId,
		Document:       c.Document,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		ChunkIndex:     c.ChunkIndex,
		Metadata:       metadata,
		CreatedAt:      c.CreatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.Chunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.Chunk) []*model.Chunk {
	models := make([]*model.Chunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
