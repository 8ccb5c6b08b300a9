package dto

import (
	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	SessionId uuid.UUID `json:"session_id"`
}

type AskRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Question  string    `json:"question" validate:"required,min=1,max=4000"`
}

type SourceDTO struct {
	ChunkId string  `json:"chunk_id"`
	Score   float64 `json:"score"`
	Page    int     `json:"page,omitempty"`
	Excerpt string  `json:"excerpt"`
}

type AskResponse struct {
	Answer         string      `json:"answer"`
	Blocked        bool        `json:"blocked"`
	BlockReason    string      `json:"block_reason,omitempty"`
	ViolationCount int         `json:"violation_count"`
	Terminated     bool        `json:"terminated"`
	Sources        []SourceDTO `json:"sources,omitempty"`
}

type TurnDTO struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Blocked  bool   `json:"blocked"`
}

type SessionHistoryResponse struct {
	SessionId      uuid.UUID `json:"session_id"`
	Turns          []TurnDTO `json:"turns"`
	ViolationCount int       `json:"violation_count"`
	Terminated     bool      `json:"terminated"`
}

type ResetSessionResponse struct {
	SessionId uuid.UUID `json:"session_id"`
}

// Stream frame types sent over the chat websocket.
const (
	FrameStatus    = "status"
	FrameToken     = "token"
	FrameError     = "error"
	FrameRetracted = "retracted"
	FrameDone      = "done"
)

// StreamFrame is one websocket message in a streamed answer.
type StreamFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// AskStreamRequest is the client's first websocket message.
type AskStreamRequest struct {
	Question string `json:"question" validate:"required,min=1,max=4000"`
}
