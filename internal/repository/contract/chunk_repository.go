package contract

import (
	"context"

	"secure-docchat-be/internal/entity"
	"secure-docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk      *entity.Chunk
	Similarity float64
}

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByCollectionId(ctx context.Context, collectionId uuid.UUID) error

	// SearchSimilarWithScore returns the chunks of the given collection
	// nearest to the query vector, ordered by descending similarity.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, collectionId uuid.UUID) ([]*ScoredChunk, error)
}
