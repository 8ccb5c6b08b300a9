package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"secure-docchat-be/pkg/embedding"
	"secure-docchat-be/pkg/rerank"
	"secure-docchat-be/pkg/store"
)

type fakeEmbedder struct{}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.Result, error) {
	return &embedding.Result{Embedding: embedding.Vector{Values: []float32{0.1, 0.2}}}, nil
}

type fakeSearcher struct {
	chunks   []store.RetrievedChunk
	gotLimit int
	err      error
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, queryVector []float32, limit int) ([]store.RetrievedChunk, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.chunks) > limit {
		return f.chunks[:limit], nil
	}
	return f.chunks, nil
}

type fakeReranker struct {
	scores map[int]float64
	err    error
}

func (f *fakeReranker) Score(query string, documents []string) ([]rerank.Scored, error) {
	if f.err != nil {
		return nil, f.err
	}
	scored := make([]rerank.Scored, len(documents))
	for i := range documents {
		scored[i] = rerank.Scored{Index: i, Score: f.scores[i]}
	}
	return scored, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func makeChunks(n int) []store.RetrievedChunk {
	chunks := make([]store.RetrievedChunk, n)
	for i := range chunks {
		chunks[i] = store.RetrievedChunk{ID: string(rune('a' + i)), Text: "chunk", Score: 0.5}
	}
	return chunks
}

func TestRetrieveEmptyIndex(t *testing.T) {
	retriever := NewRetriever(&fakeEmbedder{}, &fakeSearcher{}, &fakeReranker{}, DefaultConfig(), testLogger())

	_, err := retriever.Retrieve(context.Background(), "anything")
	if !errors.Is(err, ErrIndexNotReady) {
		t.Fatalf("err = %v, want ErrIndexNotReady", err)
	}
}

func TestRetrieveBoundsAndRecallLimit(t *testing.T) {
	searcher := &fakeSearcher{chunks: makeChunks(20)}
	retriever := NewRetriever(&fakeEmbedder{}, searcher, &fakeReranker{scores: map[int]float64{}}, DefaultConfig(), testLogger())

	result, err := retriever.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.gotLimit != 10 {
		t.Errorf("recall limit = %d, want 10", searcher.gotLimit)
	}
	if len(result) != 5 {
		t.Errorf("len(result) = %d, want 5", len(result))
	}
}

func TestRetrieveFewerCandidatesThanKFinal(t *testing.T) {
	searcher := &fakeSearcher{chunks: makeChunks(3)}
	retriever := NewRetriever(&fakeEmbedder{}, searcher, &fakeReranker{scores: map[int]float64{}}, DefaultConfig(), testLogger())

	result, err := retriever.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("len(result) = %d, want 3", len(result))
	}
}

func TestRetrieveOrdersByRerankScoreDescending(t *testing.T) {
	searcher := &fakeSearcher{chunks: makeChunks(4)}
	reranker := &fakeReranker{scores: map[int]float64{0: 0.1, 1: 0.9, 2: 0.5, 3: 0.9}}
	retriever := NewRetriever(&fakeEmbedder{}, searcher, reranker, DefaultConfig(), testLogger())

	result, err := retriever.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// b and d tie at 0.9; b came first in recall order so it stays first.
	wantIDs := []string{"b", "d", "c", "a"}
	for i, want := range wantIDs {
		if result[i].ID != want {
			t.Errorf("result[%d].ID = %q, want %q", i, result[i].ID, want)
		}
	}
	for i := 1; i < len(result); i++ {
		if result[i].Score > result[i-1].Score {
			t.Errorf("scores not descending at index %d", i)
		}
	}
}

func TestRetrieveIsIdempotentAgainstUnchangedIndex(t *testing.T) {
	searcher := &fakeSearcher{chunks: makeChunks(8)}
	reranker := &fakeReranker{scores: map[int]float64{0: 0.3, 1: 0.8, 2: 0.6, 3: 0.1, 4: 0.9, 5: 0.2, 6: 0.5, 7: 0.4}}
	retriever := NewRetriever(&fakeEmbedder{}, searcher, reranker, DefaultConfig(), testLogger())

	first, err := retriever.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	second, err := retriever.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Score != second[i].Score {
			t.Errorf("result[%d] differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRetrieveFallsBackWhenRerankerFails(t *testing.T) {
	searcher := &fakeSearcher{chunks: makeChunks(8)}
	reranker := &fakeReranker{err: errors.New("service unavailable")}
	retriever := NewRetriever(&fakeEmbedder{}, searcher, reranker, DefaultConfig(), testLogger())

	result, err := retriever.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 5 {
		t.Fatalf("len(result) = %d, want 5", len(result))
	}
	// Recall order preserved on fallback.
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		if result[i].ID != want {
			t.Errorf("result[%d].ID = %q, want %q", i, result[i].ID, want)
		}
	}
}
