package middleware

import (
	"context"
	"net/http"

	"rms-sync-service/internal/auth"
	"rms-sync-service/pkg/response"
)

type contextKey string

const authContextKey contextKey = "authContext"

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, authContextKey, claims)
}

func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// Authenticated verifies the bearer token issued at login and stores
// its claims on the request context.
func Authenticated(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "valid session token required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
