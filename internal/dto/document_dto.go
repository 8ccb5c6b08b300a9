package dto

import (
	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Status   string    `json:"status"`
}

type DocumentStatusResponse struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
	PageCount  int       `json:"page_count"`
	ChunkCount int       `json:"chunk_count"`
	Error      string    `json:"error,omitempty"`
	IndexReady bool      `json:"index_ready"`
}

// IndexDocumentMessage is the async job payload published when an
// uploaded document is ready for indexing.
type IndexDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	FilePath   string    `json:"file_path"`
}
