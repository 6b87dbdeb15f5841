package repository

import "context"

// ScopedKVStore prefixes every key, giving each design session its own
// namespace inside a shared store.
//
// Example usage:
//
//	sessionStore := NewScopedKVStore(store, "session:3f1c...:")
//	sessionStore.Set(ctx, "design-helper-messages", data)
type ScopedKVStore struct {
	inner  KVStore
	prefix string
}

// Ensure ScopedKVStore implements KVStore
var _ KVStore = (*ScopedKVStore)(nil)

// NewScopedKVStore wraps inner with a key prefix
func NewScopedKVStore(inner KVStore, prefix string) *ScopedKVStore {
	return &ScopedKVStore{inner: inner, prefix: prefix}
}

// Get reads prefix+key
func (s *ScopedKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set writes prefix+key
func (s *ScopedKVStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

// Delete removes prefix+key
func (s *ScopedKVStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close does not close the shared inner store
func (s *ScopedKVStore) Close() error { return nil }
