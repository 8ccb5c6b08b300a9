package rerank

// Scored pairs a candidate document index with its cross-encoder
// relevance score.
type Scored struct {
	Index int     `json:"index"`
	Score float64 `json:"relevance_score"`
}

// Provider scores candidate documents against a query with a
// cross-encoder. Scores are comparable only within a single call.
type Provider interface {
	Score(query string, documents []string) ([]Scored, error)
}
