package events

import "time"

// Event types published on the bus.
const (
	TypeDocumentIndexed     = "document.indexed"
	TypeDocumentIndexFailed = "document.index_failed"
	TypeIndexProgress       = "document.index_progress"
	TypeSessionTerminated   = "chat.session_terminated"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "document.indexed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used both for publishing and
// for reconstructing events off the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewDocumentIndexed signals that a document finished indexing and the
// new collection became active.
func NewDocumentIndexed(documentID string, collectionID string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIndexed,
		Data: map[string]interface{}{
			"document_id":   documentID,
			"collection_id": collectionID,
			"chunk_count":   chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIndexFailed signals that indexing stopped with an error.
func NewDocumentIndexFailed(documentID string, reason string) Event {
	return BaseEvent{
		Type: TypeDocumentIndexFailed,
		Data: map[string]interface{}{
			"document_id": documentID,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewIndexProgress reports incremental indexing progress for UI status
// updates.
func NewIndexProgress(documentID string, stage string, done int, total int) Event {
	return BaseEvent{
		Type: TypeIndexProgress,
		Data: map[string]interface{}{
			"document_id": documentID,
			"stage":       stage,
			"done":        done,
			"total":       total,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionTerminated signals that a chat session hit the violation
// ceiling.
func NewSessionTerminated(sessionID string, violations int) Event {
	return BaseEvent{
		Type: TypeSessionTerminated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"violations": violations,
		},
		OccurredAt: time.Now(),
	}
}
