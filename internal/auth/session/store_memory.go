package session

import (
	"context"
	"sync"
	"time"

	"olivecrm/pkg/platform/sentinel"
)

// InMemory keeps sessions in a map guarded by a mutex. Expired sessions are
// dropped lazily on lookup.
type InMemory struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewInMemory constructs an empty in-memory session store.
func NewInMemory() *InMemory {
	return &InMemory{sessions: map[string]Session{}}
}

func (s *InMemory) Save(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, sentinel.ErrNotFound
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return Session{}, sentinel.ErrExpired
	}
	return sess, nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}
