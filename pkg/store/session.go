package store

// RetrievedChunk is a unit of indexed document text returned by retrieval
type RetrievedChunk struct {
	ID     string                 `json:"id"`
	Text   string                 `json:"text"`
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source,omitempty"`
}

// Turn is one completed question/answer exchange.
// Blocked turns store the policy-violation message as the answer.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Blocked  bool   `json:"blocked"`
}

// Session is the active conversation state held in memory, one value per
// conversation. It must not be shared across concurrent callers without
// external synchronization.
type Session struct {
	ID             string `json:"id"`
	Turns          []Turn `json:"turns"`
	ViolationCount int    `json:"violation_count"`
}

// Terminated reports whether the violation ceiling has been reached.
func (s *Session) Terminated(limit int) bool {
	return s.ViolationCount >= limit
}

// AppendTurn records a completed exchange.
func (s *Session) AppendTurn(question, answer string, blocked bool) {
	s.Turns = append(s.Turns, Turn{Question: question, Answer: answer, Blocked: blocked})
}
