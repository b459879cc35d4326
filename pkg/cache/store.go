package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store persiste o instante do último refresh bem-sucedido de cada fonte.
type Store interface {
	LastRefresh(ctx context.Context, sourceID string) (time.Time, bool, error)
	MarkRefreshed(ctx context.Context, sourceID string, at time.Time) error
}

// MemoryStore guarda os instantes apenas durante a vida do processo.
type MemoryStore struct {
	mu    sync.RWMutex
	stamp map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stamp: make(map[string]time.Time)}
}

func (m *MemoryStore) LastRefresh(_ context.Context, sourceID string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.stamp[strings.ToLower(sourceID)]
	return t, ok, nil
}

func (m *MemoryStore) MarkRefreshed(_ context.Context, sourceID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamp[strings.ToLower(sourceID)] = at
	return nil
}
