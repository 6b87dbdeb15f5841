package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"apparel-designer/config"
	"apparel-designer/repository"
)

func TestOpenRequiresConnectionSettings(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestPostgresKVStoreIntegration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()

	conn, err := Open(ctx, config.DatabaseConfig{URL: url}, zap.NewNop())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, EnsureSchema(ctx, conn))

	store := repository.NewPostgresKVStore(conn)
	key := "session:test:design-selection"
	require.NoError(t, store.Set(ctx, key, []byte(`{"productType":"cap"}`)))

	v, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"productType":"cap"}`, string(v))

	require.NoError(t, store.Delete(ctx, key))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
