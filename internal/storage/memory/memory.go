package memory

// Package memory provides an in-memory session store used for development and
// tests, and as the fallback when no shared backend is configured. Sessions
// held here are visible to this process only.

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/draingate/internal/errs"
	"github.com/tinoosan/draingate/internal/session"
)

// Store is an in-memory implementation of session.Store guarded by an RWMutex
// for concurrent reads/writes. Expired sessions are pruned lazily on reads.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]session.Session
	ttl      time.Duration
}

// New constructs an empty store with the given session TTL.
func New(ttl time.Duration) *Store {
	return &Store{sessions: make(map[uuid.UUID]session.Session), ttl: ttl}
}

// Seed inserts a session directly, for tests.
func (s *Store) Seed(sess session.Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

// Reset drops all sessions, for tests.
func (s *Store) Reset() {
	s.mu.Lock()
	s.sessions = map[uuid.UUID]session.Session{}
	s.mu.Unlock()
}

func (s *Store) Create(_ context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return errs.ErrNotFound
	}
	sess.LastActivity = at
	s.sessions[id] = sess
	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) List(_ context.Context) ([]session.Session, error) {
	s.prune()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.prune()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func (s *Store) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.sessions)
	s.sessions = map[uuid.UUID]session.Session{}
	return n, nil
}

// Ready reports the store usable; it always is.
func (s *Store) Ready(_ context.Context) error { return nil }

// prune drops sessions idle past the TTL. Matches the TTL the shared backends
// enforce server-side.
func (s *Store) prune() {
	if s.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}
