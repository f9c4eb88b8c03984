package middleware

import (
	"context"
	"net/http"
	"strings"

	"board-backend/internal/services"
)

type contextKey string

const userIDKey contextKey = "user_id"

// AuthMiddleware creates a middleware that requires a valid bearer token.
func AuthMiddleware(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := bearerUID(r, authService)
			if !ok {
				respondError(w, "Invalid or missing token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves a bearer token when one is present but
// lets anonymous requests through. Posting and commenting are open to
// anonymous callers; only deletes require identity.
func OptionalAuthMiddleware(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, ok := bearerUID(r, authService); ok {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, uid))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerUID(r *http.Request, authService *services.AuthService) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	uid, err := authService.ValidateJWT(parts[1])
	if err != nil {
		return "", false
	}
	return uid, true
}

// GetUserID extracts the account uid from context. Empty for anonymous
// requests.
func GetUserID(ctx context.Context) string {
	uid, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return uid
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
