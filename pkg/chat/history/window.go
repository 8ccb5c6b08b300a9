package history

import (
	"strings"

	"secure-docchat-be/pkg/store"
)

// DefaultWindowSize bounds how many past turns reach the prompt.
const DefaultWindowSize = 3

// maxEntryLen caps each history line so long answers don't crowd the
// retrieved context out of the prompt.
const maxEntryLen = 200

// FormatWindow renders the last windowSize turns as alternating
// "User:"/"Assistant:" lines in chronological order, oldest first.
// Empty history renders as an empty string. Pure function.
func FormatWindow(turns []store.Turn, windowSize int) string {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if len(turns) == 0 {
		return ""
	}
	if len(turns) > windowSize {
		turns = turns[len(turns)-windowSize:]
	}

	var sb strings.Builder
	for i, turn := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("User: ")
		sb.WriteString(truncate(turn.Question))
		sb.WriteString("\nAssistant: ")
		sb.WriteString(truncate(turn.Answer))
	}
	return sb.String()
}

func truncate(s string) string {
	if len(s) <= maxEntryLen {
		return s
	}
	return s[:maxEntryLen] + "..."
}
