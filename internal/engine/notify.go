package engine

import (
	"context"

	"rms-sync-service/internal/domain"
)

// Wire event names. The snapshot event goes to every client; the rest
// are point notifications the receiving client filters by identity.
const (
	EventDataUpdate          = "dataUpdate"
	EventAdminNotification   = "adminNotification"
	EventOrderReadyForPickup = "orderReadyForPickup"
	EventReservationUpdated  = "reservationUpdated"
	EventUserUpdated         = "userUpdated"
)

type AdminNotification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type OrderReadyForPickup struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
}

type ReservationUpdated struct {
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
}

type UserUpdated struct {
	User domain.User `json:"user"`
}

type Notification struct {
	Event   string
	Payload any
}

// Broadcaster pushes the full snapshot and point notifications to all
// connected clients after each applied mutation.
type Broadcaster interface {
	BroadcastSnapshot(snap domain.Snapshot)
	BroadcastEvent(event string, payload any)
}

// EventPublisher forwards order lifecycle events to the message queue
// for out-of-process consumers. Publishing is best effort.
type EventPublisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error
}

// NopBroadcaster is used before any transport is attached.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastSnapshot(domain.Snapshot)  {}
func (NopBroadcaster) BroadcastEvent(event string, _ any) {}
