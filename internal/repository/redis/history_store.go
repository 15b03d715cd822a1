package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"doc-chat-be/internal/repository/contract"
	"doc-chat-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// HistoryStore keeps each user's conversation as a Redis list under
// "chat:{user_id}". Turns are JSON-encoded; RPUSH appends preserve
// conversation order and LPOP trims from the oldest end.
type HistoryStore struct {
	rdb *redis.Client
}

func NewHistoryStore(rdb *redis.Client) contract.HistoryStore {
	return &HistoryStore{rdb: rdb}
}

func historyKey(userId uuid.UUID) string {
	return fmt.Sprintf("chat:%s", userId)
}

func (s *HistoryStore) Read(ctx context.Context, userId uuid.UUID) ([]store.Turn, error) {
	raw, err := s.rdb.LRange(ctx, historyKey(userId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	turns := make([]store.Turn, 0, len(raw))
	for _, item := range raw {
		var turn store.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// A corrupt entry should not poison the whole conversation
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *HistoryStore) Append(ctx context.Context, userId uuid.UUID, turn store.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	if err := s.rdb.RPush(ctx, historyKey(userId), data).Err(); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *HistoryStore) TrimOldest(ctx context.Context, userId uuid.UUID, count int) error {
	if count <= 0 {
		return nil
	}
	if err := s.rdb.LPopCount(ctx, historyKey(userId), count).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}
