// Package ws is the realtime transport: every connected client gets
// the full snapshot after each applied mutation, plus the point
// notifications it filters by identity.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rms-sync-service/internal/auth"
	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// writeTimeout bounds every outbound frame so one wedged client cannot
// stall a broadcast for the rest.
const writeTimeout = 10 * time.Second

type Server struct {
	engine    *engine.Engine
	logger    *zap.Logger
	jwtSecret string
	jwtExpiry time.Duration

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func New(eng *engine.Engine, logger *zap.Logger, jwtSecret string, jwtExpiry time.Duration) *Server {
	return &Server{
		engine:    eng,
		logger:    logger,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		clients:   make(map[*wsClient]struct{}),
	}
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// sessionUserID is set when the connection presented a valid token;
	// it stands in for the actor when a message omits one.
	sessionUserID string
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(value)
}

// serverMessage is every frame the server pushes.
type serverMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// clientMessage is one operation request. Data wraps the acting user
// and the operation payload.
type clientMessage struct {
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type opEnvelope struct {
	Actor   *domain.User    `json:"actor,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// ack is the per-request response to the issuing client only.
type ack struct {
	ID          string              `json:"id"`
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	User        *domain.User        `json:"user,omitempty"`
	Credentials *engine.Credentials `json:"credentials,omitempty"`
	Order       *domain.Order       `json:"order,omitempty"`
	Token       string              `json:"token,omitempty"`
}

// BroadcastSnapshot implements engine.Broadcaster.
func (s *Server) BroadcastSnapshot(snap domain.Snapshot) {
	s.BroadcastEvent(engine.EventDataUpdate, snap.Sanitized())
}

func (s *Server) BroadcastEvent(event string, payload any) {
	msg := serverMessage{Event: event, Data: payload}

	s.mu.RLock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(msg); err != nil {
			_ = c.conn.Close()
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
		}
	}
}

// Handle upgrades one client connection, replays the current snapshot
// and then serves operation requests until the peer disconnects.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	// A token is optional (login happens over the socket itself), but a
	// presented token must be valid.
	sessionUserID := ""
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.ParseBearerToken(r.Header.Get("Authorization"))
	}
	if token != "" {
		claims, err := auth.VerifyAccessToken(token, s.jwtSecret)
		if err != nil {
			http.Error(w, "invalid session token", http.StatusUnauthorized)
			return
		}
		sessionUserID = claims.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := &wsClient{conn: conn, sessionUserID: sessionUserID}
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
	}()

	// A freshly connected client replaces whatever it mirrored before.
	_ = client.writeJSON(serverMessage{
		Event: engine.EventDataUpdate,
		Data:  s.engine.Snapshot().Sanitized(),
	})

	for {
		_, raw, readErr := conn.ReadMessage()
		if readErr != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = client.writeJSON(ack{Success: false, Message: "malformed message"})
			continue
		}
		s.handleMessage(r, client, msg)
	}
}

func (s *Server) handleMessage(r *http.Request, client *wsClient, msg clientMessage) {
	var env opEnvelope
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			_ = client.writeJSON(ack{ID: msg.ID, Success: false, Message: "malformed payload"})
			return
		}
	}

	op, err := decodeOp(msg.Event, env.Payload)
	if err != nil {
		_ = client.writeJSON(ack{ID: msg.ID, Success: false, Message: err.Error()})
		return
	}

	actor := s.resolveActor(env.Actor)
	if actor == nil && client.sessionUserID != "" {
		actor = s.resolveActor(&domain.User{ID: client.sessionUserID})
	}
	if !authorized(actor, msg.Event) {
		_ = client.writeJSON(ack{ID: msg.ID, Success: false, Message: "not allowed"})
		return
	}

	result, err := s.engine.Apply(r.Context(), actor, op)
	if err != nil {
		s.logger.Warn("operation rejected",
			zap.String("event", msg.Event),
			zap.Error(err))
		_ = client.writeJSON(ack{ID: msg.ID, Success: false, Message: err.Error()})
		return
	}

	out := ack{
		ID:          msg.ID,
		Success:     true,
		User:        result.User,
		Credentials: result.Credentials,
		Order:       result.Order,
	}
	if msg.Event == "login" && result.User != nil {
		token, signErr := auth.IssueAccessToken(*result.User, s.jwtSecret, s.jwtExpiry)
		if signErr != nil {
			s.logger.Error("token signing failed", zap.Error(signErr))
		} else {
			out.Token = token
		}
	}
	_ = client.writeJSON(out)
}

// resolveActor swaps the client-supplied actor for the authoritative
// record so stale names or roles never drive side effects. Unknown IDs
// resolve to no actor at all; a deleted user keeps no privileges.
func (s *Server) resolveActor(given *domain.User) *domain.User {
	if given == nil || given.ID == "" {
		return nil
	}
	snap := s.engine.Snapshot()
	for i := range snap.Users {
		if snap.Users[i].ID == given.ID {
			return &snap.Users[i]
		}
	}
	return nil
}

func authorized(actor *domain.User, event string) bool {
	if actor == nil {
		switch event {
		case "login", "signup":
			return true
		}
		return false
	}
	return auth.CanPerform(actor.Role, event)
}

func decodeOp(event string, payload json.RawMessage) (engine.Op, error) {
	unmarshal := func(into any) error {
		if len(payload) == 0 {
			return nil
		}
		return json.Unmarshal(payload, into)
	}

	switch event {
	case "login":
		var op engine.LoginOp
		return op, unmarshal(&op)
	case "logout":
		var op engine.LogoutOp
		return op, unmarshal(&op)
	case "signup":
		var op engine.SignupOp
		return op, unmarshal(&op)
	case "addStaff":
		var op engine.AddStaffOp
		return op, unmarshal(&op)
	case "deleteUser":
		var op engine.DeleteUserOp
		return op, unmarshal(&op)
	case "addOrder":
		var op engine.AddOrderOp
		return op, unmarshal(&op)
	case "updateOrder":
		var op engine.UpdateOrderOp
		return op, unmarshal(&op)
	case "recordCashPayment":
		var op engine.RecordCashPaymentOp
		return op, unmarshal(&op)
	case "addMenuItem":
		var op engine.AddMenuItemOp
		return op, unmarshal(&op)
	case "updateMenuItem":
		var op engine.UpdateMenuItemOp
		return op, unmarshal(&op)
	case "deleteMenuItem":
		var op engine.DeleteMenuItemOp
		return op, unmarshal(&op)
	case "saveIngredient":
		var op engine.SaveIngredientOp
		return op, unmarshal(&op)
	case "deleteIngredient":
		var op engine.DeleteIngredientOp
		return op, unmarshal(&op)
	case "saveSchedule":
		var op engine.SaveScheduleOp
		return op, unmarshal(&op)
	case "deleteSchedule":
		var op engine.DeleteScheduleOp
		return op, unmarshal(&op)
	case "saveModifierGroup":
		var op engine.SaveModifierGroupOp
		return op, unmarshal(&op)
	case "deleteModifierGroup":
		var op engine.DeleteModifierGroupOp
		return op, unmarshal(&op)
	case "createReservation":
		var op engine.CreateReservationOp
		return op, unmarshal(&op)
	case "updateReservationStatus":
		var op engine.UpdateReservationStatusOp
		return op, unmarshal(&op)
	case "updateTable":
		var op engine.UpdateTableOp
		return op, unmarshal(&op)
	case "startShift":
		var op engine.StartShiftOp
		return op, unmarshal(&op)
	case "endShift":
		var op engine.EndShiftOp
		return op, unmarshal(&op)
	case "updateUserLocation":
		var op engine.UpdateUserLocationOp
		return op, unmarshal(&op)
	default:
		return nil, errUnknownEvent(event)
	}
}

type errUnknownEvent string

func (e errUnknownEvent) Error() string { return "unknown event: " + string(e) }
