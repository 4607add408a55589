package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore is an in-process [Store]. When full, the least recently used
// session is evicted.
type MemoryStore struct {
	lru *expirable.LRU[string, *Session]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding at most size sessions, each expiring
// ttl after its last use. Non-positive values select [DefaultSize] and
// [DefaultTTL].
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{lru: expirable.NewLRU[string, *Session](size, nil, ttl)}
}

// Create implements [Store].
func (m *MemoryStore) Create(_ context.Context, language string) (*Session, error) {
	s := New(language)
	m.lru.Add(s.ID, s)
	return s, nil
}

// Get implements [Store].
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s, ok := m.lru.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	// Re-adding restarts the expiry clock.
	m.lru.Add(id, s)
	return s, nil
}

// Delete implements [Store].
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.lru.Remove(id)
	return nil
}

// Len implements [Store].
func (m *MemoryStore) Len() int {
	return m.lru.Len()
}
