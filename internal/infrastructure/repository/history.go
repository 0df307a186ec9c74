package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dkozyar/parlor/internal/domain"
	"github.com/google/uuid"
)

// Oldest messages are evicted when capacity is exceeded.
type historyRepository struct {
	messages map[string][]domain.ChatMessage // roomKey -> []ChatMessage
	capacity uint
	mu       *sync.RWMutex
}

func NewHistoryRepository(capacity uint) domain.HistoryRepository {
	if capacity == 0 {
		capacity = 100 // sane default
	}
	return &historyRepository{
		capacity: capacity,
		messages: make(map[string][]domain.ChatMessage),
		mu:       &sync.RWMutex{},
	}
}

func (r *historyRepository) Append(ctx context.Context, message *domain.ChatMessage) error {
	if message == nil || message.RoomKey == "" {
		return domain.ErrInvalidInput
	}

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	roomMsgs, exists := r.messages[message.RoomKey]
	if !exists {
		roomMsgs = make([]domain.ChatMessage, 0, r.capacity)
	}

	roomMsgs = append(roomMsgs, *message)

	// Evict oldest if over capacity
	if len(roomMsgs) > int(r.capacity) {
		excess := len(roomMsgs) - int(r.capacity)
		roomMsgs = roomMsgs[excess:]
	}

	r.messages[message.RoomKey] = roomMsgs

	return nil
}

func (r *historyRepository) Recent(ctx context.Context, roomKey string) ([]domain.ChatMessage, error) {
	if roomKey == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	roomMsgs, exists := r.messages[roomKey]
	if !exists || len(roomMsgs) == 0 {
		return []domain.ChatMessage{}, nil
	}

	// Return a copy to prevent external mutation
	cpy := make([]domain.ChatMessage, len(roomMsgs))
	copy(cpy, roomMsgs)

	return cpy, nil
}

// Drop discards a room's tail once its last member has left.
func (r *historyRepository) Drop(ctx context.Context, roomKey string) error {
	if roomKey == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.messages, roomKey)

	return nil
}
