package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded source file owned by a user. Fragments retrieved
// for answering always trace back to one of these rows.
type Document struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	FileName    string
	StoragePath string
	SizeBytes   int64
	ChunkCount  int
	Metadata    map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
