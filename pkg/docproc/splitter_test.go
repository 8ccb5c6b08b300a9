package docproc

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 1500, 200)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("chunks = %v, want single original chunk", chunks)
	}
}

func TestSplitTextOverlapPreservesBoundaryContext(t *testing.T) {
	text := strings.Repeat("a", 100) + strings.Repeat("b", 100)
	chunks := SplitText(text, 120, 40)

	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2", len(chunks))
	}
	// The tail of each chunk reappears at the head of the next.
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-40:]
		if !strings.HasPrefix(chunks[i], prevTail) {
			t.Errorf("chunk %d does not overlap with its predecessor", i)
		}
	}
}

func TestSplitTextCoversAllInput(t *testing.T) {
	text := strings.Repeat("xyz ", 1000)
	chunks := SplitText(text, 300, 50)

	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("final chunk does not end where the input ends")
	}
}

func TestChunkPagesNumbersAcrossPages(t *testing.T) {
	pages := []PageText{
		{Page: 1, Text: strings.Repeat("a", 500)},
		{Page: 3, Text: strings.Repeat("b", 500)},
	}
	chunks := ChunkPages(pages, 300, 50)

	if len(chunks) < 4 {
		t.Fatalf("len(chunks) = %d, want >= 4", len(chunks))
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d", i, c.Ordinal)
		}
	}
	if chunks[0].Page != 1 {
		t.Errorf("first chunk page = %d, want 1", chunks[0].Page)
	}
	if chunks[len(chunks)-1].Page != 3 {
		t.Errorf("last chunk page = %d, want 3", chunks[len(chunks)-1].Page)
	}
}
