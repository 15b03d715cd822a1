package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/repository/contract"
	"doc-chat-be/pkg/embedding"
	"doc-chat-be/pkg/rag/history"
	"doc-chat-be/pkg/rag/pipeline"
	"doc-chat-be/pkg/store"
)

// FragmentRetriever narrows the retriever to what one chat turn needs.
type FragmentRetriever interface {
	Retrieve(ctx context.Context, userId uuid.UUID, queryVector []float32, scope string, topK int) ([]store.Fragment, error)
}

// AnswerController runs the generation loop for one question.
type AnswerController interface {
	Ask(ctx context.Context, question string, fragments []store.Fragment, history []store.Turn) (*pipeline.Result, error)
}

// LivePusher delivers a frame to the user's live connection, if any.
type LivePusher interface {
	Send(userId uuid.UUID, data []byte) bool
}

type IChatService interface {
	Ask(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, userId uuid.UUID) ([]dto.HistoryTurnResponse, error)
	HandleInbound(userId uuid.UUID, text string)
}

type chatService struct {
	historyStore contract.HistoryStore
	embedder     embedding.EmbeddingProvider
	retriever    FragmentRetriever
	controller   AnswerController
	compactor    *history.Compactor
	pusher       LivePusher
	topK         int
	logger       logger.ILogger
}

func NewChatService(
	historyStore contract.HistoryStore,
	embedder embedding.EmbeddingProvider,
	retriever FragmentRetriever,
	controller AnswerController,
	compactor *history.Compactor,
	pusher LivePusher,
	topK int,
	log logger.ILogger,
) IChatService {
	return &chatService{
		historyStore: historyStore,
		embedder:     embedder,
		retriever:    retriever,
		controller:   controller,
		compactor:    compactor,
		pusher:       pusher,
		topK:         topK,
		logger:       log,
	}
}

// Ask runs one full conversation turn. A history store outage degrades the
// turn (empty history, no persistence) instead of failing it; retrieval or
// generation failures are fatal for the turn and leave history untouched.
func (s *chatService) Ask(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	// 1. Read history; degrade on failure.
	pastTurns, err := s.historyStore.Read(ctx, userId)
	historyHealthy := err == nil
	if err != nil {
		s.logger.Warn("ChatService", "HistoryStoreUnavailable, continuing with empty history", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		pastTurns = nil
	}

	// 2. Embed the question.
	queryVector, err := s.embedder.Generate(req.Question, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}

	// 3. Retrieve ranked fragments, optionally scoped to one file.
	fragments, err := s.retriever.Retrieve(ctx, userId, queryVector, req.DocumentScope, s.topK)
	if err != nil {
		return nil, err
	}

	// 4. Generate with adaptive truncation.
	result, err := s.controller.Ask(ctx, req.Question, fragments, pastTurns)
	if err != nil {
		return nil, err
	}

	// 5. Persist the turn and compact, only when the store is reachable.
	if historyHealthy {
		s.persistTurn(ctx, userId, pastTurns, req.Question, result.Answer)
	}

	// 6. Push to a live connection, best effort.
	s.pushLive(userId, req.Question, result)

	return &dto.ChatResponse{
		Answer:    result.Answer,
		Citations: result.Citations,
		Attempts:  result.Attempts,
	}, nil
}

func (s *chatService) persistTurn(ctx context.Context, userId uuid.UUID, pastTurns []store.Turn, question, answer string) {
	retained := s.compactor.Compact(pastTurns, answer)
	dropped := len(pastTurns) - len(retained)
	if dropped > 0 {
		if err := s.historyStore.TrimOldest(ctx, userId, dropped); err != nil {
			s.logger.Warn("ChatService", "History trim failed", map[string]interface{}{
				"user_id": userId,
				"dropped": dropped,
				"error":   err.Error(),
			})
			return
		}
		s.logger.Info("ChatService", "History compacted", map[string]interface{}{
			"user_id": userId,
			"dropped": dropped,
		})
	}

	turns := []store.Turn{
		{Speaker: store.SpeakerUser, Message: question},
		{Speaker: store.SpeakerBot, Message: answer},
	}
	for _, turn := range turns {
		if err := s.historyStore.Append(ctx, userId, turn); err != nil {
			s.logger.Warn("ChatService", "History append failed", map[string]interface{}{
				"user_id": userId,
				"speaker": turn.Speaker,
				"error":   err.Error(),
			})
			return
		}
	}
}

func (s *chatService) pushLive(userId uuid.UUID, question string, result *pipeline.Result) {
	if s.pusher == nil {
		return
	}
	frame, err := json.Marshal(dto.ChatPush{
		Type:      "chat_answer",
		Question:  question,
		Answer:    result.Answer,
		Citations: result.Citations,
	})
	if err != nil {
		return
	}
	s.pusher.Send(userId, frame)
}

func (s *chatService) History(ctx context.Context, userId uuid.UUID) ([]dto.HistoryTurnResponse, error) {
	turns, err := s.historyStore.Read(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]dto.HistoryTurnResponse, 0, len(turns))
	for _, turn := range turns {
		res = append(res, dto.HistoryTurnResponse{Speaker: turn.Speaker, Message: turn.Message})
	}
	return res, nil
}

// HandleInbound services a chat message that arrived over a live websocket.
// The answer comes back over the same connection; errors are reported there
// too instead of being dropped.
func (s *chatService) HandleInbound(userId uuid.UUID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, err := s.Ask(ctx, userId, &dto.ChatRequest{Question: text})
	if err != nil {
		s.logger.Error("ChatService", "Inbound chat turn failed", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		if s.pusher != nil {
			frame, _ := json.Marshal(map[string]string{
				"type":    "chat_error",
				"message": err.Error(),
			})
			s.pusher.Send(userId, frame)
		}
	}
}
