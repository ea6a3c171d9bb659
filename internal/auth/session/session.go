// Package session stores employee login sessions, in memory or in Redis.
package session

import (
	"context"
	"time"
)

// Session records one employee login: who, from which device, and until when
// the session is valid.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store is the session persistence used by login and logout.
type Store interface {
	Save(ctx context.Context, s Session) error
	Find(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
