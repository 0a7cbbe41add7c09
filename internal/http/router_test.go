package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rms-sync-service/internal/auth"
	"rms-sync-service/internal/config"
	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/engine"
	httpapi "rms-sync-service/internal/http"
	"rms-sync-service/internal/http/handlers"
	"rms-sync-service/internal/payment"
	"rms-sync-service/internal/persist"
	"rms-sync-service/internal/textgen"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (http.Handler, *engine.Engine) {
	t.Helper()
	eng, err := engine.New(context.Background(), persist.NewMemory(), zap.NewNop(), engine.Options{})
	require.NoError(t, err)
	t.Cleanup(eng.Close)

	h := &handlers.Handler{
		Engine:   eng,
		Logger:   zap.NewNop(),
		TextGen:  textgen.Template{},
		Payments: payment.AlwaysApprove{},
	}
	cfg := config.Config{Env: "test", JWTSecret: testSecret}
	return httpapi.NewRouter(h, zap.NewNop(), cfg, nil), eng
}

func bearerFor(t *testing.T, role domain.Role) string {
	t.Helper()
	token, err := auth.IssueAccessToken(domain.User{ID: "usr_002", Role: role}, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStateReturnsSanitizedSnapshot(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool            `json:"success"`
		Data    domain.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.Data.Users)
	for _, u := range body.Data.Users {
		require.Empty(t, u.PasswordHash)
	}
}

func TestDescribeMenuItem(t *testing.T) {
	router, eng := newTestRouter(t)
	itemID := eng.Snapshot().MenuItems[0].ID

	t.Run("requires session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/menu/"+itemID+"/describe", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("known item", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/menu/"+itemID+"/describe", nil)
		req.Header.Set("Authorization", bearerFor(t, domain.RoleAdmin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body.Data["description"])
	})

	t.Run("unknown item", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/menu/item_missing/describe", nil)
		req.Header.Set("Authorization", bearerFor(t, domain.RoleAdmin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOrderETA(t *testing.T) {
	router, eng := newTestRouter(t)

	cashier := domain.User{}
	for _, u := range eng.Snapshot().Users {
		if u.Role == domain.RoleCashier {
			cashier = u
		}
	}
	res, err := eng.Apply(context.Background(), &cashier, engine.AddOrderOp{Order: domain.Order{
		CustomerName: "Far Away Fred",
		Items:        []domain.OrderItem{{MenuItemID: "item_1", Quantity: 1}},
		Status:       domain.OrderPending,
		Type:         domain.OrderDelivery,
	}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+res.Order.ID+"/eta", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data struct {
			EtaMinutes int `json:"etaMinutes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Greater(t, out.Data.EtaMinutes, 0)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/ord_missing/eta", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorizePayment(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("approved", func(t *testing.T) {
		body, _ := json.Marshal(payment.Request{OrderDraftID: "draft_1", Amount: 430, Method: "Card"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/authorize", bytes.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		var out struct {
			Data payment.Result `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		require.True(t, out.Data.Approved)
		require.NotEmpty(t, out.Data.Reference)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/authorize", bytes.NewReader([]byte("{"))))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
