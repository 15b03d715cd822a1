package retriever

import (
	"context"

	"doc-chat-be/internal/repository/unitofwork"
	"doc-chat-be/pkg/store"

	"github.com/google/uuid"
)

// DefaultTopK is the retrieval depth used when the caller doesn't specify one.
const DefaultTopK = 5

// Retriever maps a query vector onto the user's most similar document
// fragments. Read-only; zero matches is a valid, empty result.
type Retriever struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewRetriever(uowFactory unitofwork.RepositoryFactory) *Retriever {
	return &Retriever{
		uowFactory: uowFactory,
	}
}

// Retrieve returns the topK best-matching fragments for queryVector, best
// similarity first. scope, when non-empty, restricts results to documents
// whose file name matches exactly.
func (r *Retriever) Retrieve(ctx context.Context, userId uuid.UUID, queryVector []float32, scope string, topK int) ([]store.Fragment, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.DocumentEmbeddingRepository().SearchSimilar(ctx, queryVector, topK, userId, scope)
	if err != nil {
		return nil, err
	}

	fragments := make([]store.Fragment, 0, len(chunks))
	for i, chunk := range chunks {
		fragments = append(fragments, store.Fragment{
			DocumentID: chunk.Embedding.DocumentId.String(),
			FileName:   chunk.FileName,
			Text:       chunk.Embedding.ChunkText,
			Rank:       i,
			Score:      chunk.Similarity,
		})
	}
	return fragments, nil
}
