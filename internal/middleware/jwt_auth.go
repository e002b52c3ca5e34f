package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hondealz/internal/auth"
)

type ctxKey string

const ctxUserID ctxKey = "user_id"

// JWTAuth decodes and validates the bearer token. A forged or malformed
// token is 401; an authentic but expired token is 403. The two must not
// collapse into one status.
func JWTAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Invalid Authorization header", http.StatusUnauthorized)
				return
			}

			payload, err := tokens.Decode(parts[1])
			if err != nil {
				http.Error(w, "Verification Failed", http.StatusUnauthorized)
				return
			}
			if err := tokens.Validate(payload); err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					http.Error(w, "Token Expire", http.StatusForbidden)
					return
				}
				http.Error(w, "Verification Failed", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, payload.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id set by JWTAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxUserID).(int64)
	return id, ok
}
