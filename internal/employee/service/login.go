package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"olivecrm/internal/auth/session"
	"olivecrm/internal/employee/models"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/sentinel"
	"olivecrm/pkg/requestcontext"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Employee  models.Employee `json:"employee"`
	Token     string          `json:"token"`
	SessionID string          `json:"sessionId"`
}

// Login verifies credentials, refuses suspended accounts, stamps the last
// login, records a session with the caller's device and issues a token.
// Unknown usernames and wrong passwords produce the same error so the
// endpoint does not leak which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	e, err := s.store.FindByUsername(ctx, username)
	if errors.Is(err, sentinel.ErrNotFound) {
		return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load employee")
	}

	if e.Status == models.StatusSuspended {
		return LoginResult{}, dErrors.New(dErrors.CodeForbidden, "account is suspended")
	}
	if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := requestcontext.Now(ctx)
	e.LastLogin = now
	// A login also revives an account the sweeper had parked.
	if e.Status == models.StatusInactive {
		e.Status = models.StatusActive
	}
	if err := s.store.Update(ctx, e); err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login")
	}

	sess := session.Session{
		ID:        uuid.NewString(),
		Username:  e.Username,
		Device:    requestcontext.Device(ctx),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}

	token, err := s.tokens.Generate(e.Username, sess.ID)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "employee logged in",
		"username", e.Username,
		"session_id", sess.ID,
		"device", sess.Device,
	)
	return LoginResult{Employee: e, Token: token, SessionID: sess.ID}, nil
}
