package audience

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps the live sessions of one process. Sessions are never persisted.
type Store struct {
	gen         Generator
	sessionOpts []SessionOption
	idleTTL     time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithIdleTTL makes Sweep close sessions idle for longer than ttl.
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.idleTTL = ttl
	}
}

// WithSessionOptions applies opts to every session the store opens.
func WithSessionOptions(opts ...SessionOption) StoreOption {
	return func(s *Store) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// WithStoreClock overrides the time source for sessions and sweeping.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore returns an empty store whose sessions generate with gen.
func NewStore(gen Generator, opts ...StoreOption) *Store {
	s := &Store{
		gen:      gen,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open creates a new session in the initial state.
func (s *Store) Open(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := append([]SessionOption{WithClock(s.now)}, s.sessionOpts...)
	session := NewSession(s.newID(), s.gen, opts...)

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	return session, nil
}

// Get returns a live session.
func (s *Store) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, SessionNotFoundError(id)
	}
	return session, nil
}

// Close tears a session down and forgets it.
func (s *Store) Close(_ context.Context, id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return SessionNotFoundError(id)
	}
	session.Close()
	return nil
}

// Sweep closes sessions idle past the configured TTL and returns how many it closed.
// A zero TTL disables sweeping. Loading sessions are never swept.
func (s *Store) Sweep(_ context.Context) int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	var stale []*Session
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.Snapshot().IsLoading || !session.LastActive().Before(cutoff) {
			continue
		}
		stale = append(stale, session)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, session := range stale {
		session.Close()
	}
	return len(stale)
}

// Run sweeps every interval until ctx ends.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// CloseAll tears every session down.
func (s *Store) CloseAll() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
