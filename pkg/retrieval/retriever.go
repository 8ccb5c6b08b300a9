package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"secure-docchat-be/pkg/embedding"
	"secure-docchat-be/pkg/rerank"
	"secure-docchat-be/pkg/store"
)

// ErrIndexNotReady signals that no searchable index exists yet, either
// because no document was uploaded or indexing has not finished.
var ErrIndexNotReady = errors.New("document index is not ready")

// Searcher performs the recall stage: nearest neighbours of a query
// vector from the active index. Implementations return ErrIndexNotReady
// when there is no active index to search.
type Searcher interface {
	SearchSimilar(ctx context.Context, queryVector []float32, limit int) ([]store.RetrievedChunk, error)
}

type Config struct {
	// KRecall bounds the vector search candidate set.
	KRecall int
	// KFinal bounds the re-ranked result. Must not exceed KRecall.
	KFinal int
}

func DefaultConfig() Config {
	return Config{KRecall: 10, KFinal: 5}
}

// Retriever runs two-stage retrieval: a wide cosine-similarity recall
// followed by a cross-encoder precision re-rank.
type Retriever struct {
	embedder embedding.Provider
	searcher Searcher
	reranker rerank.Provider
	cfg      Config
	logger   *log.Logger
}

func NewRetriever(embedder embedding.Provider, searcher Searcher, reranker rerank.Provider, cfg Config, logger *log.Logger) *Retriever {
	if cfg.KRecall <= 0 {
		cfg.KRecall = DefaultConfig().KRecall
	}
	if cfg.KFinal <= 0 || cfg.KFinal > cfg.KRecall {
		cfg.KFinal = min(DefaultConfig().KFinal, cfg.KRecall)
	}
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		reranker: reranker,
		cfg:      cfg,
		logger:   logger,
	}
}

// Retrieve returns at most KFinal chunks ordered by descending
// re-ranked relevance. Chunks that tie on score keep their recall
// order. When the re-ranker is unavailable the recall ordering is
// returned instead, truncated to KFinal.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]store.RetrievedChunk, error) {
	// 1. Embed the query in the same space as the documents
	queryEmbedding, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// 2. Recall stage
	candidates, err := r.searcher.SearchSimilar(ctx, queryEmbedding.Embedding.Values, r.cfg.KRecall)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrIndexNotReady
	}

	// 3. Precision stage
	reranked, err := r.rerankCandidates(query, candidates)
	if err != nil {
		r.logger.Printf("WARN: re-rank failed, falling back to vector order: %v", err)
		reranked = candidates
	}

	if len(reranked) > r.cfg.KFinal {
		reranked = reranked[:r.cfg.KFinal]
	}
	return reranked, nil
}

func (r *Retriever) rerankCandidates(query string, candidates []store.RetrievedChunk) ([]store.RetrievedChunk, error) {
	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Text
	}

	scored, err := r.reranker.Score(query, documents)
	if err != nil {
		return nil, err
	}

	result := make([]store.RetrievedChunk, 0, len(candidates))
	for _, s := range scored {
		if s.Index < 0 || s.Index >= len(candidates) {
			return nil, fmt.Errorf("re-rank index %d out of range", s.Index)
		}
		chunk := candidates[s.Index]
		chunk.Score = s.Score
		result = append(result, chunk)
	}

	// Stable so that recall order breaks score ties.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result, nil
}
