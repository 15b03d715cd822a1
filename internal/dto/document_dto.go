package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type UploadDocumentResponse struct {
	Id       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	Status   string    `json:"status"`
}

// PublishEmbedDocumentMessage is the ingestion queue payload.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type SearchRequest struct {
	Query         string `json:"query" validate:"required,min=1"`
	DocumentScope string `json:"document_scope" validate:"omitempty"`
	Limit         int    `json:"limit" validate:"omitempty,min=1,max=20"`
}

type SearchHit struct {
	FileName   string  `json:"file_name"`
	ChunkText  string  `json:"chunk_text"`
	Similarity float64 `json:"similarity"`
}

type SearchResponse struct {
	Hits    []SearchHit `json:"hits"`
	Summary string      `json:"summary,omitempty"`
}
