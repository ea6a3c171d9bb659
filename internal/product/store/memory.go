// Package store provides product persistence, in-memory and PostgreSQL.
package store

import (
	"context"
	"sort"
	"sync"

	"olivecrm/internal/product/models"
	"olivecrm/pkg/platform/sentinel"
)

// InMemory keeps products in a map guarded by a mutex.
type InMemory struct {
	mu       sync.RWMutex
	products map[int]models.Product
	nextID   int
}

// NewInMemory constructs an empty in-memory product store.
func NewInMemory() *InMemory {
	return &InMemory{products: map[int]models.Product{}, nextID: 1}
}

func (s *InMemory) Create(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	s.products[p.ID] = *p
	return nil
}

func (s *InMemory) Update(ctx context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id int) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemory) FindByNameVariant(ctx context.Context, name, variant string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ProductName == name && p.ProductVariant == variant {
			return p, nil
		}
	}
	return models.Product{}, sentinel.ErrNotFound
}

func (s *InMemory) FindAll(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.products, id)
	return nil
}
