package embedding

// TaskType hints let providers that distinguish query and document
// embeddings (e.g. Jina, Gemini) pick the right mode. Providers that
// don't (Ollama/nomic) ignore it.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// Vector is a fixed-length numeric embedding.
type Vector struct {
	Values []float32 `json:"values"`
}

// Result wraps a generated embedding.
type Result struct {
	Embedding Vector `json:"embedding"`
}

// Provider generates text embeddings. The same provider instance must
// be used at index-build time and at query time, otherwise similarity
// scores are meaningless.
type Provider interface {
	Generate(text string, taskType string) (*Result, error)
}
