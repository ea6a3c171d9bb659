// Package store provides customer persistence, in-memory and PostgreSQL.
package store

import (
	"context"
	"sort"
	"sync"

	"olivecrm/internal/customer/models"
	"olivecrm/pkg/platform/sentinel"
)

// InMemory keeps customers in a map guarded by a mutex.
type InMemory struct {
	mu        sync.RWMutex
	customers map[int]models.Customer
}

// NewInMemory constructs an empty in-memory customer store.
func NewInMemory() *InMemory {
	return &InMemory{customers: map[int]models.Customer{}}
}

func (s *InMemory) Upsert(ctx context.Context, c models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id int) (models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return models.Customer{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *InMemory) FindAll(ctx context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}
