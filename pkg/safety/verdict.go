package safety

// Role indicates which side of the conversation is being screened.
type Role string

const (
	RoleInput  Role = "INPUT"
	RoleOutput Role = "OUTPUT"
)

// Reason explains why a verdict blocked the text.
type Reason string

const (
	ReasonNone             Reason = "NONE"
	ReasonJailbreakPattern Reason = "JAILBREAK_PATTERN"
	ReasonContentCategory  Reason = "CONTENT_CATEGORY"
)

// Verdict is the result of one safety evaluation. It is transient:
// produced and consumed within a single pipeline pass.
type Verdict struct {
	Allowed        bool           `json:"allowed"`
	Reason         Reason         `json:"reason"`
	MatchedPattern string         `json:"matched_pattern,omitempty"`
	CategoryScores map[string]int `json:"category_scores,omitempty"`
}
