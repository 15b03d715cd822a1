package contract

import (
	"context"

	"doc-chat-be/pkg/store"

	"github.com/google/uuid"
)

// HistoryStore is the per-user append log of conversation turns. It is the
// single source of truth for conversation ordering: the pipeline only reads
// a full copy, appends, and trims the oldest entries, never arbitrary
// mutation.
type HistoryStore interface {
	Read(ctx context.Context, userId uuid.UUID) ([]store.Turn, error)
	Append(ctx context.Context, userId uuid.UUID, turn store.Turn) error
	// TrimOldest discards the count oldest turns.
	TrimOldest(ctx context.Context, userId uuid.UUID, count int) error
}
