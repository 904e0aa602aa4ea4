package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sparkmeet/sparkmeet-api/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

// SessionResolver looks up the cached user snapshot for a session token.
// A nil user with a nil error means "not logged in".
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.User, error)
}

// SessionAuth validates the session token from the Authorization header and
// injects the resolved user into the request context. Mobile clients send
// the raw token; an optional "Bearer " prefix is tolerated.
func SessionAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}
			u, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			if u == nil {
				http.Error(w, `{"error":"session expired, please log in again"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the session user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok
}
