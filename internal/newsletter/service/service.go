// Package service holds the newsletter domain logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"olivecrm/internal/newsletter/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/sentinel"
	"olivecrm/pkg/requestcontext"
)

// Store is the newsletter persistence the service depends on.
type Store interface {
	Create(ctx context.Context, n *models.Newsletter) error
	Update(ctx context.Context, n models.Newsletter) error
	FindByID(ctx context.Context, id int) (models.Newsletter, error)
	FindAll(ctx context.Context) ([]models.Newsletter, error)
	Delete(ctx context.Context, id int) error
}

// Service orchestrates newsletter operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New constructs the newsletter service.
func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create persists a new newsletter, stamping the authenticated employee as
// its author when the request carries one.
func (s *Service) Create(ctx context.Context, n models.Newsletter) (models.Newsletter, error) {
	if strings.TrimSpace(n.Title) == "" {
		return models.Newsletter{}, dErrors.New(dErrors.CodeBadRequest, "title must not be empty")
	}
	if author := requestcontext.Employee(ctx); author != "" {
		n.CreatedBy = author
	}
	if err := s.store.Create(ctx, &n); err != nil {
		return models.Newsletter{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create newsletter")
	}
	return n, nil
}

// Update replaces the editable fields of a newsletter. The author stays.
func (s *Service) Update(ctx context.Context, n models.Newsletter) (models.Newsletter, error) {
	if strings.TrimSpace(n.Title) == "" {
		return models.Newsletter{}, dErrors.New(dErrors.CodeBadRequest, "title must not be empty")
	}
	err := s.store.Update(ctx, n)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Newsletter{}, dErrors.New(dErrors.CodeNotFound, "newsletter not found")
	}
	if err != nil {
		return models.Newsletter{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update newsletter")
	}
	return s.Get(ctx, n.ID)
}

// Get returns one newsletter by id.
func (s *Service) Get(ctx context.Context, id int) (models.Newsletter, error) {
	n, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Newsletter{}, dErrors.New(dErrors.CodeNotFound, "newsletter not found")
	}
	if err != nil {
		return models.Newsletter{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load newsletter")
	}
	return n, nil
}

// List returns every newsletter ordered by id.
func (s *Service) List(ctx context.Context) ([]models.Newsletter, error) {
	newsletters, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list newsletters")
	}
	return newsletters, nil
}

// Delete removes one newsletter by id.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "newsletter not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete newsletter")
	}
	return nil
}
