package repository

import (
	"context"
	"errors"

	"apparel-designer/models"
)

// ErrNotFound is returned when a catalog entry or stored value does not exist
var ErrNotFound = errors.New("not found")

// CatalogRepositoryInterface defines the contract for catalog lookups
type CatalogRepositoryInterface interface {
	Catalog() models.Catalog
	Sports() []models.Sport
	Sport(id string) (*models.Sport, error)
	League(sportID, leagueID string) (*models.League, error)
	Team(sportID, leagueID, teamID string) (*models.Team, error)
	Colors() []models.ColorOption
	TextColors() []models.ColorOption
	ColorName(hex string) (string, bool)
	TextColorName(hex string) (string, bool)
}

// KVStore is the key-value persistence API consumed by the chat log and the
// session selections. Get reports ok=false for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
