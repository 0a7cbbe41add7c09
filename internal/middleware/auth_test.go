package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rms-sync-service/internal/auth"
	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/middleware"
)

func TestAuthenticated(t *testing.T) {
	const secret = "test-secret"

	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		require.True(t, ok)
		seenUserID = claims.UserID
		w.WriteHeader(http.StatusNoContent)
	})
	handler := middleware.Authenticated(secret)(next)

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.IssueAccessToken(
			domain.User{ID: "usr_002", Role: domain.RoleCashier}, secret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "usr_002", seenUserID)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.IssueAccessToken(
			domain.User{ID: "usr_002", Role: domain.RoleCashier}, secret, -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
