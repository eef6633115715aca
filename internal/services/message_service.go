package services

import (
	"context"
	"fmt"

	"studiodesk/internal/core"
	"studiodesk/internal/storage"
)

// MessageService handles the shift-note channel. Notes are plain rows; the
// delivery model is polling, so posting is just a validated insert.
type MessageService struct {
	storage *storage.SQLiteRepository
}

func NewMessageService(storage *storage.SQLiteRepository) *MessageService {
	return &MessageService{storage: storage}
}

// PostMessage validates and stores a shift note.
func (s *MessageService) PostMessage(ctx context.Context, in core.MessageInput) (core.Message, error) {
	if err := in.Validate(); err != nil {
		return core.Message{}, err
	}

	msg, err := s.storage.CreateMessage(ctx, in)
	if err != nil {
		return core.Message{}, fmt.Errorf("save message: %w", err)
	}

	return msg, nil
}

// ListMessages returns the whole channel oldest first. Pollers re-fetch the
// full list; there is no incremental delivery.
func (s *MessageService) ListMessages(ctx context.Context) ([]core.Message, error) {
	return s.storage.ListMessages(ctx)
}
