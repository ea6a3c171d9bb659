// Package service holds the product domain logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"olivecrm/internal/product/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/sentinel"
)

// Store is the product persistence the service depends on.
type Store interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p models.Product) error
	FindByID(ctx context.Context, id int) (models.Product, error)
	FindByNameVariant(ctx context.Context, name, variant string) (models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Delete(ctx context.Context, id int) error
}

// Service orchestrates product operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New constructs the product service.
func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if strings.TrimSpace(p.ProductName) == "" {
		return models.Product{}, dErrors.New(dErrors.CodeBadRequest, "product name must not be empty")
	}
	if p.IndividualPrice < 0 {
		return models.Product{}, dErrors.New(dErrors.CodeBadRequest, "price must not be negative")
	}
	if err := s.store.Create(ctx, &p); err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create product")
	}
	return p, nil
}

// Update replaces an existing product.
func (s *Service) Update(ctx context.Context, p models.Product) (models.Product, error) {
	if strings.TrimSpace(p.ProductName) == "" {
		return models.Product{}, dErrors.New(dErrors.CodeBadRequest, "product name must not be empty")
	}
	err := s.store.Update(ctx, p)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Product{}, dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update product")
	}
	return p, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id int) (models.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Product{}, dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	return p, nil
}

// FindOrCreate returns the product matching (name, variant), creating it with
// the given price if absent, or refreshing the price when it changed. The
// ingestion path relies on this upsert.
func (s *Service) FindOrCreate(ctx context.Context, name, variant string, price float64) (models.Product, error) {
	p, err := s.store.FindByNameVariant(ctx, name, variant)
	switch {
	case err == nil:
		if p.IndividualPrice != price {
			p.IndividualPrice = price
			if err := s.store.Update(ctx, p); err != nil {
				return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to refresh product price")
			}
		}
		return p, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return s.Create(ctx, models.Product{
			ProductName:     name,
			ProductVariant:  variant,
			IndividualPrice: price,
		})
	default:
		return models.Product{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up product")
	}
}

// List returns every product ordered by id.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}
	return products, nil
}

// Delete removes one product by id.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete product")
	}
	return nil
}
