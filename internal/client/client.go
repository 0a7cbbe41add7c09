// Package client is the Go SDK for the sync service: it mirrors the
// broadcast snapshot, exposes operation calls with acknowledgements,
// and queues order placement while offline for replay on reconnect.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/engine"
)

var (
	// ErrOffline is returned for non-critical operations issued while
	// disconnected; they are dropped, not queued.
	ErrOffline = errors.New("client offline")

	// ErrQueued is returned when an order placement was recorded for
	// replay instead of being sent.
	ErrQueued = errors.New("operation queued for replay")
)

// Ack is the server's per-operation response.
type Ack struct {
	ID          string              `json:"id"`
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	User        *domain.User        `json:"user,omitempty"`
	Credentials *engine.Credentials `json:"credentials,omitempty"`
	Order       *domain.Order       `json:"order,omitempty"`
	Token       string              `json:"token,omitempty"`
}

type EventHandler func(payload json.RawMessage)

type Client struct {
	url     string
	logger  *zap.Logger
	offline *offlineQueue

	mu        sync.RWMutex
	conn      *websocket.Conn
	writeMu   sync.Mutex
	connected bool
	snapshot  domain.Snapshot
	hasState  bool
	pending   map[string]chan Ack
	handlers  map[string][]EventHandler
	nextID    uint64
	readDone  chan struct{}
}

func New(url, queuePath string, logger *zap.Logger) *Client {
	return &Client{
		url:      url,
		logger:   logger,
		offline:  newOfflineQueue(queuePath),
		pending:  make(map[string]chan Ack),
		handlers: make(map[string][]EventHandler),
	}
}

// Connect dials the server, waits for the initial snapshot, then
// replays any actions queued while offline, in order.
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.readDone = make(chan struct{})
	c.mu.Unlock()

	go c.readLoop(conn)

	if err := c.waitForSnapshot(ctx); err != nil {
		c.Close()
		return err
	}
	c.replayQueued(ctx)
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// Connected reports whether the socket is up.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Snapshot returns the latest mirrored state.
func (c *Client) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Clone()
}

// QueuedActions reports how many operations await replay.
func (c *Client) QueuedActions() int {
	return c.offline.len()
}

// On registers a handler for a pushed event (adminNotification,
// orderReadyForPickup, reservationUpdated, userUpdated).
func (c *Client) On(event string, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

// Emit sends one operation and waits for its acknowledgement. While
// offline, order placement is queued durably and everything else is
// dropped.
func (c *Client) Emit(ctx context.Context, event string, actor *domain.User, payload any) (Ack, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Ack{}, err
	}

	if !c.Connected() {
		if event == "addOrder" {
			if qerr := c.offline.append(queuedAction{
				Event:      event,
				Actor:      actor,
				Payload:    raw,
				EnqueuedAt: time.Now().UTC(),
			}); qerr != nil {
				return Ack{}, qerr
			}
			return Ack{}, ErrQueued
		}
		c.logger.Warn("dropping operation while offline", zap.String("event", event))
		return Ack{}, ErrOffline
	}

	return c.send(ctx, event, actor, raw)
}

func (c *Client) send(ctx context.Context, event string, actor *domain.User, payload json.RawMessage) (Ack, error) {
	c.mu.Lock()
	c.nextID++
	id := fmt.Sprintf("req_%d", c.nextID)
	reply := make(chan Ack, 1)
	c.pending[id] = reply
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.dropPending(id)
		return Ack{}, ErrOffline
	}

	msg := map[string]any{
		"id":    id,
		"event": event,
		"data": map[string]any{
			"actor":   actor,
			"payload": payload,
		},
	}
	c.writeMu.Lock()
	err := conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		c.dropPending(id)
		return Ack{}, err
	}

	select {
	case out := <-reply:
		return out, nil
	case <-ctx.Done():
		c.dropPending(id)
		return Ack{}, ctx.Err()
	}
}

func (c *Client) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// replayQueued sends each recorded action once, oldest first. Actions
// rejected by the server are logged and discarded; transport failures
// put the remainder back for the next reconnect.
func (c *Client) replayQueued(ctx context.Context) {
	actions, err := c.offline.drain()
	if err != nil {
		c.logger.Warn("offline queue read failed", zap.Error(err))
		return
	}
	for i, action := range actions {
		ack, sendErr := c.send(ctx, action.Event, action.Actor, action.Payload)
		if sendErr != nil {
			if qerr := c.offline.requeue(actions[i:]); qerr != nil {
				c.logger.Error("offline queue requeue failed", zap.Error(qerr))
			}
			return
		}
		if !ack.Success {
			c.logger.Warn("queued operation rejected",
				zap.String("event", action.Event),
				zap.String("message", ack.Message))
		}
	}
}

func (c *Client) waitForSnapshot(ctx context.Context) error {
	deadline := time.NewTimer(10 * time.Second)
	defer deadline.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		c.mu.RLock()
		ready := c.hasState
		c.mu.RUnlock()
		if ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return errors.New("timed out waiting for initial snapshot")
		case <-tick.C:
		}
	}
}

type serverFrame struct {
	ID      string          `json:"id"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
	Success *bool           `json:"success"`
	Message string          `json:"message"`

	User        *domain.User        `json:"user"`
	Credentials *engine.Credentials `json:"credentials"`
	Order       *domain.Order       `json:"order"`
	Token       string              `json:"token"`
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.connected = false
		}
		close(c.readDone)
		c.mu.Unlock()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame serverFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.logger.Warn("undecodable frame", zap.Error(err))
			continue
		}

		if frame.Success != nil {
			c.deliverAck(frame)
			continue
		}

		switch frame.Event {
		case engine.EventDataUpdate:
			var snap domain.Snapshot
			if err := json.Unmarshal(frame.Data, &snap); err != nil {
				c.logger.Warn("undecodable snapshot", zap.Error(err))
				continue
			}
			c.mu.Lock()
			c.snapshot = snap
			c.hasState = true
			c.mu.Unlock()
		default:
			c.dispatch(frame.Event, frame.Data)
		}
	}
}

func (c *Client) deliverAck(frame serverFrame) {
	c.mu.Lock()
	reply, ok := c.pending[frame.ID]
	if ok {
		delete(c.pending, frame.ID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	reply <- Ack{
		ID:          frame.ID,
		Success:     *frame.Success,
		Message:     frame.Message,
		User:        frame.User,
		Credentials: frame.Credentials,
		Order:       frame.Order,
		Token:       frame.Token,
	}
}

func (c *Client) dispatch(event string, payload json.RawMessage) {
	c.mu.RLock()
	handlers := append([]EventHandler(nil), c.handlers[event]...)
	c.mu.RUnlock()
	for _, h := range handlers {
		h(payload)
	}
}
