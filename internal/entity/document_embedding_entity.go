package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentEmbedding is one embedded chunk of an uploaded document.
type DocumentEmbedding struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	ChunkIndex     int
	ChunkText      string
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
