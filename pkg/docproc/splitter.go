package docproc

// Default chunking parameters, character based.
const (
	DefaultChunkSize = 1500
	DefaultOverlap   = 200
)

// Chunk is a unit of indexable text with its provenance.
type Chunk struct {
	Text    string
	Page    int
	Ordinal int
}

// SplitText splits a long string into chunks of approximately
// chunkSize characters with an overlap to preserve context at the
// boundaries. Character based; a tokenizer-aware splitter would be an
// upgrade but this matches the embedding input limits well enough.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// ChunkPages splits every page into overlapping chunks, numbering them
// in document order.
func ChunkPages(pages []PageText, chunkSize int, overlap int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	var result []Chunk
	ordinal := 0
	for _, page := range pages {
		for _, text := range SplitText(page.Text, chunkSize, overlap) {
			if text == "" {
				continue
			}
			result = append(result, Chunk{Text: text, Page: page.Page, Ordinal: ordinal})
			ordinal++
		}
	}
	return result
}
