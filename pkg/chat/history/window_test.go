package history

import (
	"strings"
	"testing"

	"secure-docchat-be/pkg/store"
)

func TestFormatWindowEmptyHistory(t *testing.T) {
	if got := FormatWindow(nil, 3); got != "" {
		t.Errorf("FormatWindow(nil) = %q, want empty string", got)
	}
	if got := FormatWindow([]store.Turn{}, 3); got != "" {
		t.Errorf("FormatWindow(empty) = %q, want empty string", got)
	}
}

func TestFormatWindowShorterThanWindow(t *testing.T) {
	turns := []store.Turn{
		{Question: "q1", Answer: "a1"},
	}
	got := FormatWindow(turns, 3)
	want := "User: q1\nAssistant: a1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatWindowKeepsLastTurnsChronological(t *testing.T) {
	turns := []store.Turn{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
		{Question: "q4", Answer: "a4"},
		{Question: "q5", Answer: "a5"},
	}
	got := FormatWindow(turns, 3)

	if strings.Contains(got, "q1") || strings.Contains(got, "q2") {
		t.Errorf("window contains turns older than the last 3: %q", got)
	}
	i3 := strings.Index(got, "q3")
	i4 := strings.Index(got, "q4")
	i5 := strings.Index(got, "q5")
	if i3 < 0 || i4 < 0 || i5 < 0 {
		t.Fatalf("window missing expected turns: %q", got)
	}
	if !(i3 < i4 && i4 < i5) {
		t.Errorf("turns not in chronological order: %q", got)
	}
}

func TestFormatWindowTruncatesLongEntries(t *testing.T) {
	long := strings.Repeat("x", 500)
	turns := []store.Turn{{Question: "short", Answer: long}}
	got := FormatWindow(turns, 3)

	if !strings.Contains(got, strings.Repeat("x", maxEntryLen)+"...") {
		t.Errorf("long answer not truncated: len=%d", len(got))
	}
	if strings.Contains(got, strings.Repeat("x", maxEntryLen+1)) {
		t.Errorf("answer longer than cap survived truncation")
	}
}
