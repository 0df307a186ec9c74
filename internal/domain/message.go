package domain

import (
	"context"
	"time"
)

// ChatMessage is one relayed chat line. The relay keeps a short in-memory
// tail per room so late joiners get context; nothing is persisted.
type ChatMessage struct {
	ID        string    `json:"id"`
	RoomKey   string    `json:"roomKey"`
	From      string    `json:"from"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type HistoryRepository interface {
	Append(ctx context.Context, message *ChatMessage) error
	Recent(ctx context.Context, roomKey string) ([]ChatMessage, error)
	Drop(ctx context.Context, roomKey string) error
}
