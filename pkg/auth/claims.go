// Package auth provides JWT-based authentication for pricewatch-engine.
// Tokens are issued at login and validated with an HMAC secret.
package auth

import (
	"context"

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

// Claims represents the JWT claims issued at login.
// It embeds RegisteredClaims for standard JWT fields (sub, exp, iat)
// and adds custom claims for user context.
type Claims struct {
	jwt.RegisteredClaims
	UserID int    `json:"uid"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// UserIDFromContext extracts the authenticated user ID from context.
// Returns 0 and false when the request is unauthenticated.
func UserIDFromContext(ctx context.Context) (int, bool) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return 0, false
	}
	return claims.UserID, true
}
