package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/repository/unitofwork"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/llm"
)

const searchSummaryPrompt = `Summarize what the following document excerpts say about "%s" in 2-3 sentences. Only use the excerpts.

%s`

type ISearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
) ISearchService {
	return &searchService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
	}
}

func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}

	queryVector, err := s.embeddingProvider.Generate(req.Query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.DocumentEmbeddingRepository().SearchSimilar(ctx, queryVector, limit, userId, req.DocumentScope)
	if err != nil {
		return nil, err
	}

	hits := make([]dto.SearchHit, 0, len(chunks))
	var excerpts []string
	for _, chunk := range chunks {
		hits = append(hits, dto.SearchHit{
			FileName:   chunk.FileName,
			ChunkText:  chunk.Embedding.ChunkText,
			Similarity: chunk.Similarity,
		})
		excerpts = append(excerpts, chunk.Embedding.ChunkText)
	}

	res := &dto.SearchResponse{Hits: hits}
	if len(excerpts) == 0 {
		return res, nil
	}

	// Summary is auxiliary: a generation failure degrades the response to
	// plain hits rather than failing the search.
	prompt := fmt.Sprintf(searchSummaryPrompt, req.Query, strings.Join(excerpts, "\n---\n"))
	summary, err := s.llmProvider.Generate(ctx, prompt)
	if err == nil {
		res.Summary = summary
	}

	return res, nil
}
