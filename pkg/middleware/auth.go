package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const UserPhoneKey contextKey = "user_phone"

// TokenValidator validates a bearer token and returns the verified subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// AuthMiddleware consumes the identity token issued by the external auth
// service: it validates the Bearer JWT and injects the verified phone number
// into the request context. This core never issues or refreshes tokens.
func AuthMiddleware(tokenSvc TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
				return
			}
			phone, err := tokenSvc.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserPhoneKey, phone)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
