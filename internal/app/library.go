package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"genquiz-service/internal/domain"
)

// StorageKey is the fixed namespace the session list is persisted under.
const StorageKey = "genquiz_sessions"

// SnapshotStore persists the whole session list as one JSON document
// (in-memory, SQLite, Redis, Postgres).
type SnapshotStore interface {
	// Load returns nil data when nothing has been stored yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Library is the ordered session list, most recently touched first.
// Every mutation rewrites the full list; the in-memory copy only changes once the write succeeds.
type Library struct {
	store SnapshotStore

	mu       sync.RWMutex
	sessions []domain.Session
}

func NewLibrary(store SnapshotStore) *Library {
	return &Library{store: store}
}

// Load reads the persisted list. Unparseable data is logged and treated as empty.
func (l *Library) Load(ctx context.Context) error {
	data, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	var sessions []domain.Session
	if len(data) > 0 {
		if err := json.Unmarshal(data, &sessions); err != nil {
			slog.Error("failed to parse stored sessions, starting empty", "error", err)
			sessions = nil
		}
	}

	l.mu.Lock()
	l.sessions = sessions
	l.mu.Unlock()
	slog.Info("sessions loaded", "count", len(sessions))
	return nil
}

// List returns copies of all sessions in stored order.
func (l *Library) List() []domain.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Session, len(l.sessions))
	for i, s := range l.sessions {
		out[i] = s.Clone()
	}
	return out
}

// Get returns a copy of the session with id.
func (l *Library) Get(id string) (domain.Session, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.sessions {
		if s.ID == id {
			return s.Clone(), true
		}
	}
	return domain.Session{}, false
}

// Upsert removes any entry with the same id and prepends session.
func (l *Library) Upsert(ctx context.Context, session domain.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Session, 0, len(l.sessions)+1)
	next = append(next, session.Clone())
	for _, s := range l.sessions {
		if s.ID != session.ID {
			next = append(next, s)
		}
	}
	return l.commitLocked(ctx, next)
}

// Delete filters id out of the list.
func (l *Library) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		if s.ID != id {
			next = append(next, s)
		}
	}
	if len(next) == len(l.sessions) {
		return domain.ErrSessionNotFound
	}
	return l.commitLocked(ctx, next)
}

// Rename changes a stored session's title without moving it.
func (l *Library) Rename(ctx context.Context, id, title string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	next := make([]domain.Session, len(l.sessions))
	for i, s := range l.sessions {
		if s.ID == id {
			s.Title = title
			found = true
		}
		next[i] = s
	}
	if !found {
		return domain.ErrSessionNotFound
	}
	return l.commitLocked(ctx, next)
}

func (l *Library) commitLocked(ctx context.Context, next []domain.Session) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := l.store.Save(ctx, data); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	l.sessions = next
	return nil
}
