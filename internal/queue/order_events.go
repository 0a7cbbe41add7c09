package queue

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

const (
	// OrderEventsQueue receives every order lifecycle event published
	// to the topic exchange.
	OrderEventsQueue = "rms.order-events"

	OrderEventsBinding = "order.#"
)

// EnsureOrderEventsTopology declares the durable queue that collects
// order lifecycle events for out-of-process consumers.
func EnsureOrderEventsTopology(c *Client, exchange string) error {
	if err := c.EnsureExchange(exchange); err != nil {
		return err
	}
	if _, err := c.EnsureQueue(OrderEventsQueue); err != nil {
		return err
	}
	return c.BindQueue(OrderEventsQueue, exchange, OrderEventsBinding)
}

type orderEvent struct {
	ID           string  `json:"id"`
	CustomerName string  `json:"customerName"`
	Status       string  `json:"status"`
	Type         string  `json:"type"`
	Total        float64 `json:"total"`
}

// LogOrderEvent is the built-in daemon handler: it records each order
// lifecycle event so operators can trace the stream without a
// dedicated consumer service.
func LogOrderEvent(logger *zap.Logger) HandlerFunc {
	return func(ctx context.Context, routingKey string, body []byte) error {
		var ev orderEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			logger.Warn("undecodable order event", zap.String("routingKey", routingKey), zap.Error(err))
			return nil
		}
		logger.Info("order event",
			zap.String("routingKey", routingKey),
			zap.String("orderId", ev.ID),
			zap.String("status", ev.Status),
			zap.String("type", ev.Type),
			zap.Float64("total", ev.Total))
		return nil
	}
}
