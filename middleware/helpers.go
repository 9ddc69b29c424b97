package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

// Claim names accepted for the user id. Supabase style tokens carry "sub",
// older tokens "user_id".
const (
	jwtClaimSubject = "sub"
	jwtClaimUserID  = "user_id"
)

var ErrNoUserInContext = errors.New("user claims not found in context or invalid type")

// WithClaims stores verified claims on ctx.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", ErrNoUserInContext
	}
	return userIDFromClaims(claims)
}

func userIDFromClaims(claims jwt.MapClaims) (string, error) {
	for _, name := range []string{jwtClaimSubject, jwtClaimUserID} {
		raw, ok := claims[name]
		if !ok {
			continue
		}
		id, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", name, raw)
		}
		if id = strings.TrimSpace(id); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("missing '%s' claim in token", jwtClaimSubject)
}
