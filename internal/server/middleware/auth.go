// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// principalKey is the context key for the authenticated principal.
const principalKey ContextKey = "principal"

// AdminRole is the role RequireAdmin admits.
const AdminRole = "admin"

// Principal is what a validated token says about the caller.
type Principal interface {
	GetUserID() uuid.UUID
	GetRole() string
}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

type principal struct {
	userID uuid.UUID
	role   string
}

func (p principal) GetUserID() uuid.UUID { return p.userID }
func (p principal) GetRole() string      { return p.role }

// AuthMiddleware validates the bearer token and stores the caller in the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "auth/unauthenticated", "Sign in to continue.")
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "auth/unauthenticated", "Your session has expired. Sign in again.")
				return
			}

			ctx := WithPrincipal(r.Context(), claims.GetUserID(), claims.GetRole())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := r.Context().Value(principalKey).(principal)
		if !ok {
			writeError(w, http.StatusUnauthorized, "auth/unauthenticated", "Sign in to continue.")
			return
		}
		if p.role != AdminRole {
			writeError(w, http.StatusForbidden, "auth/forbidden", "Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], parts[1] != ""
}

// WithPrincipal returns ctx carrying the given caller. Tests use it to skip token validation.
func WithPrincipal(ctx context.Context, userID uuid.UUID, role string) context.Context {
	return context.WithValue(ctx, principalKey, principal{userID: userID, role: role})
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	p, ok := r.Context().Value(principalKey).(principal)
	if !ok {
		return uuid.Nil, fmt.Errorf("user ID not found in request context")
	}
	return p.userID, nil
}

// GetRole returns the authenticated caller's role, or "" when unauthenticated.
func GetRole(r *http.Request) string {
	p, _ := r.Context().Value(principalKey).(principal)
	return p.role
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
