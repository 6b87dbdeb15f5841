package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"apparel-designer/models"
)

const selectionKey = "design-selection"

// SessionScope returns the key namespace that belongs to one design session
func SessionScope(store KVStore, sessionID string) *ScopedKVStore {
	return NewScopedKVStore(store, "session:"+sessionID+":")
}

// SelectionRepository persists session selections as JSON in the key-value store
type SelectionRepository struct {
	store KVStore
}

// NewSelectionRepository creates a new SelectionRepository
func NewSelectionRepository(store KVStore) *SelectionRepository {
	return &SelectionRepository{store: store}
}

// Save writes the selection of a session
func (r *SelectionRepository) Save(ctx context.Context, sessionID string, sel models.Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	return SessionScope(r.store, sessionID).Set(ctx, selectionKey, data)
}

// Load reads the selection of a session, or ErrNotFound
func (r *SelectionRepository) Load(ctx context.Context, sessionID string) (models.Selection, error) {
	data, ok, err := SessionScope(r.store, sessionID).Get(ctx, selectionKey)
	if err != nil {
		return models.Selection{}, err
	}
	if !ok {
		return models.Selection{}, fmt.Errorf("selection for session %s: %w", sessionID, ErrNotFound)
	}
	var sel models.Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return models.Selection{}, fmt.Errorf("failed to decode selection: %w", err)
	}
	return sel, nil
}

// Delete removes the selection of a session
func (r *SelectionRepository) Delete(ctx context.Context, sessionID string) error {
	return SessionScope(r.store, sessionID).Delete(ctx, selectionKey)
}
