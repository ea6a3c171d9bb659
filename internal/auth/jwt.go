// Package auth issues and validates the JWT access tokens carried by
// employee sessions.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "olivecrm/pkg/domain-errors"
)

// Claims are the token claims for an employee access token.
type Claims struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenService creates and validates HS256 access tokens.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenService constructs a token service. ttl bounds token lifetime.
func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	return &TokenService{signingKey: []byte(signingKey), ttl: ttl}
}

// Generate signs an access token for the given employee and session.
func (s *TokenService) Generate(username, sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username:  username,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "olivecrm",
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token and returns the employee username
// it was issued to. The auth middleware consumes this.
func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Username == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims.Username, nil
}
