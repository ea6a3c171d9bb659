// Package store provides newsletter persistence, in-memory and PostgreSQL.
package store

import (
	"context"
	"sort"
	"sync"

	"olivecrm/internal/newsletter/models"
	"olivecrm/pkg/platform/sentinel"
)

// InMemory keeps newsletters in a map guarded by a mutex.
type InMemory struct {
	mu          sync.RWMutex
	newsletters map[int]models.Newsletter
	nextID      int
}

// NewInMemory constructs an empty in-memory newsletter store.
func NewInMemory() *InMemory {
	return &InMemory{newsletters: map[int]models.Newsletter{}, nextID: 1}
}

func (s *InMemory) Create(ctx context.Context, n *models.Newsletter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = s.nextID
	s.nextID++
	s.newsletters[n.ID] = *n
	return nil
}

func (s *InMemory) Update(ctx context.Context, n models.Newsletter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.newsletters[n.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.newsletters[n.ID] = n
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id int) (models.Newsletter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.newsletters[id]
	if !ok {
		return models.Newsletter{}, sentinel.ErrNotFound
	}
	return n, nil
}

func (s *InMemory) FindAll(ctx context.Context) ([]models.Newsletter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Newsletter, 0, len(s.newsletters))
	for _, n := range s.newsletters {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.newsletters[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.newsletters, id)
	return nil
}
