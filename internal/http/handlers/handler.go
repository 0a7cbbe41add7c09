package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/engine"
	"rms-sync-service/internal/payment"
	"rms-sync-service/internal/textgen"
	"rms-sync-service/pkg/response"
)

type Handler struct {
	Engine   *engine.Engine
	Logger   *zap.Logger
	TextGen  textgen.Generator
	Payments payment.Authorizer
}

// State returns the current snapshot for clients that bootstrap over
// HTTP before opening the socket.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.Engine.Snapshot().Sanitized())
}

// OrderETA estimates minutes until a delivery order arrives, from the
// courier's last known position. Orders not out for delivery fall back
// to the default estimate.
func (h *Handler) OrderETA(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	snap := h.Engine.Snapshot()

	for _, order := range snap.Orders {
		if order.ID != orderID {
			continue
		}
		var courier *domain.Location
		for _, u := range snap.Users {
			if u.ID == order.DeliveryPartnerID {
				courier = u.Location
			}
		}
		response.Success(w, map[string]any{
			"orderId":    orderID,
			"etaMinutes": domain.EtaMinutes(courier, order.CustomerLocation),
		})
		return
	}
	response.Error(w, http.StatusNotFound, "NOT_FOUND", "order not found")
}

// DescribeMenuItem generates marketing copy for one menu item. The
// result is advisory; saving it goes through the normal update flow.
func (h *Handler) DescribeMenuItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")
	snap := h.Engine.Snapshot()

	for _, item := range snap.MenuItems {
		if item.ID != itemID {
			continue
		}
		text, err := h.TextGen.DescribeMenuItem(r.Context(), item.Name, item.Category)
		if err != nil {
			h.Logger.Warn("description generation failed", zap.String("itemId", itemID), zap.Error(err))
			response.Error(w, http.StatusBadGateway, "TEXTGEN_FAILED", "description service unavailable")
			return
		}
		response.Success(w, map[string]string{"itemId": itemID, "description": text})
		return
	}
	response.Error(w, http.StatusNotFound, "NOT_FOUND", "menu item not found")
}

// AuthorizePayment runs a card authorization ahead of order placement.
func (h *Handler) AuthorizePayment(w http.ResponseWriter, r *http.Request) {
	var req payment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "BAD_REQUEST", "malformed payment request")
		return
	}

	result, err := h.Payments.Authorize(r.Context(), req)
	if err != nil {
		h.Logger.Warn("payment authorization failed", zap.Error(err))
		response.Error(w, http.StatusBadGateway, "PAYMENT_FAILED", "payment gateway unavailable")
		return
	}
	response.Success(w, result)
}
