package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Persister keeps sessions beyond process memory.
type Persister interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
	FindByHash(ctx context.Context, hash string) (string, error)
}

// Lister is implemented by persisters that can enumerate stored papers.
type Lister interface {
	List(ctx context.Context) ([]Info, error)
}

// Store is a thread-safe in-memory session registry with TTL eviction. With
// a Persister, evicted sessions are reloaded on demand.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	persist  Persister
	log      *slog.Logger
}

// NewStore creates a store. persist may be nil for memory-only operation.
func NewStore(ttl time.Duration, persist Persister, log *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		persist:  persist,
		log:      log,
	}
}

// Add registers a session and persists it.
func (s *Store) Add(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return s.Save(ctx, sess)
}

// Get returns the session with id, loading it from the persister when it is
// no longer in memory.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}
	if s.persist == nil {
		return nil, ErrNotFound
	}

	snap, err := s.persist.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	sess = FromSnapshot(snap)
	sess.touch()

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	s.sessions[id] = sess
	return sess, nil
}

// Save writes the session's current state to the persister, if any. Saves of
// one session run one at a time, so the last save holds the latest state.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if s.persist == nil {
		return nil
	}
	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()
	if err := s.persist.Save(ctx, sess.Snapshot()); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// Delete removes the session from memory and the persister.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	_, inMemory := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if s.persist == nil {
		if !inMemory {
			return ErrNotFound
		}
		return nil
	}
	if err := s.persist.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) && inMemory {
			return nil
		}
		return err
	}
	return nil
}

// FindByHash returns the ID of a session built from identical content.
func (s *Store) FindByHash(ctx context.Context, hash string) (string, bool, error) {
	if hash == "" {
		return "", false, nil
	}
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.ContentHash == hash {
			s.mu.Unlock()
			return id, true, nil
		}
	}
	s.mu.Unlock()

	if s.persist == nil {
		return "", false, nil
	}
	id, err := s.persist.FindByHash(ctx, hash)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find session by hash: %w", err)
	}
	return id, true, nil
}

// List returns every known paper, most recently updated first. In-memory
// state wins over the persisted copy.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	byID := make(map[string]Info)
	if l, ok := s.persist.(Lister); ok {
		stored, err := l.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		for _, info := range stored {
			byID[info.ID] = info
		}
	}

	s.mu.Lock()
	for id, sess := range s.sessions {
		byID[id] = sess.Info()
	}
	s.mu.Unlock()

	out := make([]Info, 0, len(byID))
	for _, info := range byID {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len reports the number of sessions held in memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup evicts sessions idle for longer than the TTL. Persisted copies stay.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed()) > s.ttl {
			delete(s.sessions, id)
			s.log.Debug("session evicted", "paper_id", id)
		}
	}
}
