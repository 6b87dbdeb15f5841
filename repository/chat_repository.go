package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"apparel-designer/models"
)

const chatKey = "design-helper-messages"

// ChatRepository persists the design helper log of each session
type ChatRepository struct {
	store KVStore
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(store KVStore) *ChatRepository {
	return &ChatRepository{store: store}
}

// Load returns the log of a session; a missing key is an empty log
func (r *ChatRepository) Load(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	data, ok, err := SessionScope(r.store, sessionID).Get(ctx, chatKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.ChatMessage{}, nil
	}
	var messages []models.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode chat log: %w", err)
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

// Save replaces the log of a session
func (r *ChatRepository) Save(ctx context.Context, sessionID string, messages []models.ChatMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode chat log: %w", err)
	}
	return SessionScope(r.store, sessionID).Set(ctx, chatKey, data)
}

// Delete removes the log key of a session
func (r *ChatRepository) Delete(ctx context.Context, sessionID string) error {
	return SessionScope(r.store, sessionID).Delete(ctx, chatKey)
}
