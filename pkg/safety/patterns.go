package safety

import "strings"

// jailbreakPatterns are known prompt-injection phrases, matched
// case-insensitively as substrings. English and Indonesian variants.
var jailbreakPatterns = []string{
	"ignore previous instructions",
	"ignore all previous",
	"forget everything",
	"you are now",
	"pretend you are",
	"act as if",
	"system prompt",
	"override instructions",
	"abaikan instruksi sebelumnya",
	"lupakan semua",
	"kamu sekarang adalah",
	"berpura-pura menjadi",
	"anggap kamu adalah",
}

// DetectJailbreak scans text against the known injection phrases.
// Returns the first matched pattern so the caller can log it.
func DetectJailbreak(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range jailbreakPatterns {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}
