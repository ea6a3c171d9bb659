// Package store provides employee persistence, in-memory and PostgreSQL.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"olivecrm/internal/employee/models"
	"olivecrm/pkg/platform/sentinel"
)

// InMemory keeps employees in a map guarded by a mutex.
type InMemory struct {
	mu        sync.RWMutex
	employees map[int]models.Employee
	nextID    int
}

// NewInMemory constructs an empty in-memory employee store.
func NewInMemory() *InMemory {
	return &InMemory{employees: map[int]models.Employee{}, nextID: 1}
}

func (s *InMemory) Create(ctx context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.employees {
		if existing.Username == e.Username {
			return sentinel.ErrConflict
		}
	}
	e.ID = s.nextID
	s.nextID++
	s.employees[e.ID] = *e
	return nil
}

func (s *InMemory) Update(ctx context.Context, e models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[e.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.employees[e.ID] = e
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id int) (models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok {
		return models.Employee{}, sentinel.ErrNotFound
	}
	return e, nil
}

func (s *InMemory) FindByUsername(ctx context.Context, username string) (models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.employees {
		if e.Username == username {
			return e, nil
		}
	}
	return models.Employee{}, sentinel.ErrNotFound
}

func (s *InMemory) FindAll(ctx context.Context) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

// MarkInactiveSince flips ACTIVE employees whose last login predates the
// cutoff to INACTIVE, returning how many changed.
func (s *InMemory) MarkInactiveSince(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for id, e := range s.employees {
		if e.Status == models.StatusActive && e.LastLogin.Before(cutoff) {
			e.Status = models.StatusInactive
			s.employees[id] = e
			changed++
		}
	}
	return changed, nil
}
