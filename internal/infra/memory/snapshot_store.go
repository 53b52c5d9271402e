package memory

import (
	"context"
	"sync"
)

// SnapshotStore is an in-memory implementation of app.SnapshotStore (useful for tests/demos).
type SnapshotStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// NewSnapshotStoreWith seeds the store, e.g. with a previously saved list.
func NewSnapshotStoreWith(data []byte) *SnapshotStore {
	return &SnapshotStore{data: append([]byte(nil), data...)}
}

func (s *SnapshotStore) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

func (s *SnapshotStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}
