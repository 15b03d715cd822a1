package contract

import (
	"context"

	"doc-chat-be/internal/entity"
	"doc-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk wraps a DocumentEmbedding with its cosine similarity and the
// file name of the owning document, so callers don't need a second lookup.
type ScoredChunk struct {
	Embedding  *entity.DocumentEmbedding
	FileName   string
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocumentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.DocumentEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar returns the closest chunks for a query vector, best first,
	// restricted to documents owned by userId. When fileName is non-empty the
	// search is scoped to documents with exactly that file name.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, fileName string) ([]*ScoredChunk, error)
}
