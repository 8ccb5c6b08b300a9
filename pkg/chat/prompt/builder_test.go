package prompt

import (
	"strings"
	"testing"

	"secure-docchat-be/pkg/store"
)

func TestBuildOrdersSections(t *testing.T) {
	chunks := []store.RetrievedChunk{
		{ID: "1", Text: "first chunk"},
		{ID: "2", Text: "second chunk"},
	}
	got := NewBuilder("User: hi\nAssistant: hello", chunks, "what next?").Build()

	iInstr := strings.Index(got, "helpful AI assistant")
	iHist := strings.Index(got, "Conversation History:")
	iCtx := strings.Index(got, "Context from Document:")
	iQ := strings.Index(got, "Current Question: what next?")
	if iInstr < 0 || iHist < 0 || iCtx < 0 || iQ < 0 {
		t.Fatalf("prompt missing a section:\n%s", got)
	}
	if !(iInstr < iHist && iHist < iCtx && iCtx < iQ) {
		t.Errorf("sections out of order:\n%s", got)
	}
}

func TestBuildSeparatesChunks(t *testing.T) {
	chunks := []store.RetrievedChunk{
		{ID: "1", Text: "alpha"},
		{ID: "2", Text: "beta"},
	}
	got := NewBuilder("", chunks, "q").Build()

	if !strings.Contains(got, "alpha"+chunkSeparator+"beta") {
		t.Errorf("chunks not joined with separator:\n%s", got)
	}
}

func TestBuildEmptyHistoryPlaceholder(t *testing.T) {
	got := NewBuilder("", nil, "q").Build()
	if !strings.Contains(got, "No previous conversation.") {
		t.Errorf("empty history placeholder missing:\n%s", got)
	}
}
