package service

import (
	"context"
	"fmt"

	"secure-docchat-be/internal/repository/unitofwork"
	"secure-docchat-be/pkg/retrieval"
	"secure-docchat-be/pkg/store"
)

// activeCollectionSearcher exposes the chunks of the currently active
// collection to the retrieval stage. When no collection has been
// activated yet there is nothing to search, which the retrieval stage
// reports as an index-not-ready condition.
type activeCollectionSearcher struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewActiveCollectionSearcher(uowFactory unitofwork.RepositoryFactory) retrieval.Searcher {
	return &activeCollectionSearcher{uowFactory: uowFactory}
}

func (a *activeCollectionSearcher) SearchSimilar(ctx context.Context, queryVector []float32, limit int) ([]store.RetrievedChunk, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)

	active, err := uow.CollectionRepository().FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active collection: %w", err)
	}
	if active == nil {
		return nil, retrieval.ErrIndexNotReady
	}

	scored, err := uow.ChunkRepository().SearchSimilarWithScore(ctx, queryVector, limit, active.Id)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	results := make([]store.RetrievedChunk, 0, len(scored))
	for _, sc := range scored {
		results = append(results, store.RetrievedChunk{
			ID:     sc.Chunk.Id.String(),
			Text:   sc.Chunk.Document,
			Score:  sc.Similarity,
			Source: sc.Chunk.Metadata,
		})
	}
	return results, nil
}
