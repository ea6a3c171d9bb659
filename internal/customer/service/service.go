// Package service holds the customer domain logic. It also answers the
// existence checks the order module needs when validating references.
package service

import (
	"context"
	"errors"
	"log/slog"

	"olivecrm/internal/customer/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/sentinel"
)

// Store is the customer persistence the service depends on.
type Store interface {
	Upsert(ctx context.Context, c models.Customer) error
	FindByID(ctx context.Context, id int) (models.Customer, error)
	FindAll(ctx context.Context) ([]models.Customer, error)
	Delete(ctx context.Context, id int) error
}

// Service orchestrates customer operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// New constructs the customer service.
func New(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Save creates or updates a customer. Ids come from the sales data, so a save
// with an existing id refreshes the zipcode.
func (s *Service) Save(ctx context.Context, c models.Customer) (models.Customer, error) {
	if c.ID <= 0 {
		return models.Customer{}, dErrors.New(dErrors.CodeBadRequest, "customer id must be a positive integer")
	}
	if err := s.store.Upsert(ctx, c); err != nil {
		return models.Customer{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save customer")
	}
	return c, nil
}

// Get returns one customer by id.
func (s *Service) Get(ctx context.Context, id int) (models.Customer, error) {
	c, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Customer{}, dErrors.New(dErrors.CodeNotFound, "customer not found")
	}
	if err != nil {
		return models.Customer{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}
	return c, nil
}

// List returns every customer ordered by id.
func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customers")
	}
	return customers, nil
}

// Delete removes one customer by id.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "customer not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete customer")
	}
	return nil
}

// CustomerExists reports whether a customer id is known. The order service
// validates order references through this.
func (s *Service) CustomerExists(ctx context.Context, id int) (bool, error) {
	_, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
