// Package auth verifies optional bearer tokens so a caller can only act on
// their own user_id.
package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// ErrSubjectMismatch is returned when a verified token belongs to a different user.
var ErrSubjectMismatch = errors.New("token subject does not match user_id")

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// GetClaims retrieves JWT claims from the request context.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok && claims != nil
}

// GetToken retrieves the raw JWT token string from the request context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// WithClaims stores verified claims and the raw token in ctx.
func WithClaims(ctx context.Context, claims *Claims, token string) context.Context {
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return context.WithValue(ctx, TokenKey, token)
}

// CheckSubject enforces that a verified caller only names themselves.
// Requests without claims pass: verification is optional unless the
// middleware is configured to require it.
func CheckSubject(ctx context.Context, userID string) error {
	claims, ok := GetClaims(ctx)
	if !ok {
		return nil
	}
	if claims.Subject != userID {
		return ErrSubjectMismatch
	}
	return nil
}
