package middleware

import (
	"context"
	"net/http"
	"strings"

	"konkan-properties/internal/response"
	"konkan-properties/internal/token"
)

type ctxKey string

const (
	userIDKey  ctxKey = "user_id"
	isAdminKey ctxKey = "is_admin"
)

// UserID returns the authenticated user's id from the request context, or ""
// on an unauthenticated request.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// IsAdmin reports whether the authenticated user carries the admin flag.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(isAdminKey).(bool)
	return admin
}

// WithUser injects identity into a context. Exported for handler tests.
func WithUser(ctx context.Context, userID string, isAdmin bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, isAdminKey, isAdmin)
}

// RequireAuth validates the Authorization bearer token and injects the
// resolved identity into the request context.
func RequireAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				response.Message(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				response.Message(w, http.StatusUnauthorized, "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.IsAdmin)))
		})
	}
}

// RequireAdmin rejects authenticated requests whose token lacks the admin
// flag. Must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			response.Message(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
