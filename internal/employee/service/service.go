// Package service holds the employee domain logic: account management, login
// and the background status sweeper.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"olivecrm/internal/auth/session"
	"olivecrm/internal/employee/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/sentinel"
	"olivecrm/pkg/requestcontext"
)

const minPasswordLength = 8

// Store is the employee persistence the service depends on.
type Store interface {
	Create(ctx context.Context, e *models.Employee) error
	Update(ctx context.Context, e models.Employee) error
	FindByID(ctx context.Context, id int) (models.Employee, error)
	FindByUsername(ctx context.Context, username string) (models.Employee, error)
	FindAll(ctx context.Context) ([]models.Employee, error)
	Delete(ctx context.Context, id int) error
	MarkInactiveSince(ctx context.Context, cutoff time.Time) (int, error)
}

// TokenIssuer signs access tokens for logged-in employees.
type TokenIssuer interface {
	Generate(username, sessionID string) (string, error)
}

// Service orchestrates employee operations.
type Service struct {
	store      Store
	sessions   session.Store
	tokens     TokenIssuer
	sessionTTL time.Duration
	logger     *slog.Logger
}

// New constructs the employee service.
func New(store Store, sessions session.Store, tokens TokenIssuer, sessionTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// CreateInput carries an employee creation request.
type CreateInput struct {
	Username string
	Name     string
	Password string
	Role     models.Role
}

// Create registers a new employee account. Admin accounts cannot be created
// through the API.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Employee, error) {
	if strings.TrimSpace(in.Username) == "" {
		return models.Employee{}, dErrors.New(dErrors.CodeBadRequest, "username must not be empty")
	}
	if len(in.Password) < minPasswordLength {
		return models.Employee{}, dErrors.Newf(dErrors.CodeBadRequest, "password must be at least %d characters", minPasswordLength)
	}
	if !in.Role.Valid() {
		return models.Employee{}, dErrors.New(dErrors.CodeBadRequest, "unknown role")
	}
	if in.Role == models.RoleAdmin {
		return models.Employee{}, dErrors.New(dErrors.CodeForbidden, "admin accounts cannot be created through the API")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Employee{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	e := models.Employee{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         in.Role,
		Status:       models.StatusActive,
		LastLogin:    requestcontext.Now(ctx),
	}
	err = s.store.Create(ctx, &e)
	if errors.Is(err, sentinel.ErrConflict) {
		return models.Employee{}, dErrors.New(dErrors.CodeConflict, "username already taken")
	}
	if err != nil {
		return models.Employee{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create employee")
	}
	return e, nil
}

// UpdateInput carries an employee update. Zero fields are left unchanged; a
// non-empty Password is re-hashed.
type UpdateInput struct {
	Name     string
	Password string
	Role     models.Role
	Status   models.Status
}

// Update modifies an employee account. Admin accounts are immutable through
// the API, and no account can be promoted to admin.
func (s *Service) Update(ctx context.Context, id int, in UpdateInput) (models.Employee, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return models.Employee{}, err
	}
	if e.Role == models.RoleAdmin {
		return models.Employee{}, dErrors.New(dErrors.CodeForbidden, "admin accounts cannot be modified through the API")
	}
	if in.Role == models.RoleAdmin {
		return models.Employee{}, dErrors.New(dErrors.CodeForbidden, "accounts cannot be promoted to admin")
	}

	if in.Name != "" {
		e.Name = in.Name
	}
	if in.Role != "" {
		if !in.Role.Valid() {
			return models.Employee{}, dErrors.New(dErrors.CodeBadRequest, "unknown role")
		}
		e.Role = in.Role
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return models.Employee{}, dErrors.New(dErrors.CodeBadRequest, "unknown status")
		}
		e.Status = in.Status
	}
	if in.Password != "" {
		if len(in.Password) < minPasswordLength {
			return models.Employee{}, dErrors.Newf(dErrors.CodeBadRequest, "password must be at least %d characters", minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.Employee{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		e.PasswordHash = string(hash)
	}

	if err := s.store.Update(ctx, e); err != nil {
		return models.Employee{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update employee")
	}
	return e, nil
}

// Get returns one employee by id.
func (s *Service) Get(ctx context.Context, id int) (models.Employee, error) {
	return s.get(ctx, id)
}

// List returns every employee ordered by id.
func (s *Service) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list employees")
	}
	return employees, nil
}

// Delete removes an employee account. Admin accounts cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int) error {
	e, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if e.Role == models.RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "admin accounts cannot be deleted through the API")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete employee")
	}
	return nil
}

func (s *Service) get(ctx context.Context, id int) (models.Employee, error) {
	e, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Employee{}, dErrors.New(dErrors.CodeNotFound, "employee not found")
	}
	if err != nil {
		return models.Employee{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load employee")
	}
	return e, nil
}
