package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rms-sync-service/internal/auth"
	"rms-sync-service/internal/domain"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	user := domain.User{ID: "usr_002", Role: domain.RoleCashier, Email: "cashier@rms.com"}

	token, err := auth.IssueAccessToken(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := auth.VerifyAccessToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "usr_002", claims.UserID)
	require.Equal(t, domain.RoleCashier, claims.Role)
	require.Equal(t, "cashier@rms.com", claims.Email)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	user := domain.User{ID: "usr_002", Role: domain.RoleCashier}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := auth.IssueAccessToken(user, "secret", time.Hour)
		require.NoError(t, err)
		_, err = auth.VerifyAccessToken(token, "other")
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := auth.IssueAccessToken(user, "secret", -time.Minute)
		require.NoError(t, err)
		_, err = auth.VerifyAccessToken(token, "secret")
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := auth.VerifyAccessToken("", "secret")
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.VerifyAccessToken("not.a.token", "secret")
		require.Error(t, err)
	})
}

func TestParseBearerToken(t *testing.T) {
	require.Equal(t, "abc", auth.ParseBearerToken("Bearer abc"))
	require.Equal(t, "abc", auth.ParseBearerToken("bearer abc"))
	require.Empty(t, auth.ParseBearerToken("abc"))
	require.Empty(t, auth.ParseBearerToken("Basic abc"))
	require.Empty(t, auth.ParseBearerToken(""))
}

func TestCanPerform(t *testing.T) {
	require.True(t, auth.CanPerform(domain.RoleAdmin, "addStaff"))
	require.False(t, auth.CanPerform(domain.RoleCashier, "addStaff"))
	require.False(t, auth.CanPerform(domain.RoleCustomer, "deleteUser"))

	require.True(t, auth.CanPerform(domain.RoleKitchen, "updateMenuItem"))
	require.False(t, auth.CanPerform(domain.RoleCustomer, "recordCashPayment"))

	// Anyone authenticated may place orders or book tables.
	require.True(t, auth.CanPerform(domain.RoleCustomer, "addOrder"))
	require.True(t, auth.CanPerform(domain.RoleCustomer, "createReservation"))
}
