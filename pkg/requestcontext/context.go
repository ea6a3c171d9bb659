// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware and consumed by services. Keeping this package
// free of net/http dependencies means services can read request metadata
// without pulling in transport code.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	employeeKey    struct{}
	deviceKey      struct{}
)

// WithRequestID injects a request identifier into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request identifier, or "" when absent.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithTime pins the request time. Middleware sets this once per request;
// tests use it to make date-window arithmetic deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithEmployee records the authenticated employee's username.
func WithEmployee(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, employeeKey{}, username)
}

// Employee returns the authenticated employee's username, or "" when the
// request is unauthenticated.
func Employee(ctx context.Context) string {
	if u, ok := ctx.Value(employeeKey{}).(string); ok {
		return u
	}
	return ""
}

// WithDevice records a human-readable browser/OS description for the request.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey{}, device)
}

// Device returns the browser/OS description captured by middleware.
func Device(ctx context.Context) string {
	if d, ok := ctx.Value(deviceKey{}).(string); ok {
		return d
	}
	return ""
}
