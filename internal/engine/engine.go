// Package engine applies the closed set of named operations to the
// snapshot store, derives cross-entity side effects, and pushes the
// full snapshot to every connected client after each mutation.
//
// A single worker goroutine drains one command channel; client
// operations and delivery-simulator ticks both enqueue into it, so no
// two mutations ever interleave.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/persist"
	"rms-sync-service/internal/store"
)

const (
	activityLogCap = 50

	// EventsExchange is the topic exchange order lifecycle events are
	// published to.
	EventsExchange = "rms.events"
)

type Options struct {
	// TickInterval is the delivery simulator period.
	TickInterval time.Duration
	// StepFraction is how far a courier moves toward the destination
	// each tick.
	StepFraction float64
	// IngredientLowStock triggers a restocking notification when an
	// ingredient drops below it.
	IngredientLowStock float64
	// MenuLowStock triggers a low-stock notification when a menu item
	// drops below it.
	MenuLowStock int
}

func (o *Options) fillDefaults() {
	if o.TickInterval <= 0 {
		o.TickInterval = 2 * time.Second
	}
	if o.StepFraction <= 0 {
		o.StepFraction = 0.1
	}
	if o.IngredientLowStock <= 0 {
		o.IngredientLowStock = 10
	}
	if o.MenuLowStock <= 0 {
		o.MenuLowStock = 15
	}
}

// Result carries the request/response payload of operations that have
// one (login, signup, addStaff, addOrder).
type Result struct {
	User        *domain.User `json:"user,omitempty"`
	Credentials *Credentials `json:"credentials,omitempty"`
	Order       *domain.Order `json:"order,omitempty"`
}

// Credentials are the generated login details returned from addStaff.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type queueEvent struct {
	routingKey string
	payload    any
}

type simRequest struct {
	courierID string
	orderID   string
}

// effects collects everything a handler wants to happen after its
// mutation commits: point notifications, queue events, simulator
// starts and stops.
type effects struct {
	mutated       bool
	notifications []Notification
	events        []queueEvent
	startSims     []simRequest
	stopCouriers  []string
}

func (fx *effects) notify(event string, payload any) {
	fx.notifications = append(fx.notifications, Notification{Event: event, Payload: payload})
}

func (fx *effects) admin(title, message string) {
	fx.notify(EventAdminNotification, AdminNotification{Title: title, Message: message})
}

func (fx *effects) publish(routingKey string, payload any) {
	fx.events = append(fx.events, queueEvent{routingKey: routingKey, payload: payload})
}

type command struct {
	actor *domain.User
	op    Op
	reply chan commandOutcome
}

type commandOutcome struct {
	result Result
	err    error
}

type Engine struct {
	store   *store.Store
	persist persist.Adapter
	logger  *zap.Logger
	bcast   Broadcaster
	events  EventPublisher
	opts    Options

	cmds chan command
	quit chan struct{}
	done chan struct{}

	sims *simulators
}

// New loads the persisted snapshot (or seeds a fresh one) and starts
// the worker. The broadcaster may be attached later via SetBroadcaster
// but must be in place before clients connect.
func New(ctx context.Context, adapter persist.Adapter, logger *zap.Logger, opts Options) (*Engine, error) {
	opts.fillDefaults()

	snap, found, err := adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		snap = domain.Seed()
		if err := adapter.Save(ctx, snap); err != nil {
			logger.Warn("initial snapshot save failed", zap.Error(err))
		}
	}

	e := &Engine{
		store:   store.New(snap),
		persist: adapter,
		logger:  logger,
		bcast:   NopBroadcaster{},
		opts:    opts,
		cmds:    make(chan command),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	e.sims = newSimulators(e)
	go e.run()
	return e, nil
}

// SetBroadcaster attaches the transport that receives snapshots and
// notifications. Call before serving client connections.
func (e *Engine) SetBroadcaster(b Broadcaster) {
	if b == nil {
		b = NopBroadcaster{}
	}
	e.bcast = b
}

// SetEventPublisher attaches the optional queue publisher.
func (e *Engine) SetEventPublisher(p EventPublisher) {
	e.events = p
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() domain.Snapshot {
	return e.store.View()
}

// Apply runs one named operation to completion. Operations are
// serialized; Apply returns once the mutation, persistence and
// broadcast have all happened (or the operation was rejected).
func (e *Engine) Apply(ctx context.Context, actor *domain.User, op Op) (Result, error) {
	cmd := command{actor: actor, op: op, reply: make(chan commandOutcome, 1)}
	select {
	case e.cmds <- cmd:
	case <-e.quit:
		return Result{}, ErrClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case out := <-cmd.reply:
		return out.result, out.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Close stops the worker and cancels all simulator tasks.
func (e *Engine) Close() {
	close(e.quit)
	<-e.done
	e.sims.stopAll()
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		select {
		case cmd := <-e.cmds:
			result, err := e.process(cmd.actor, cmd.op)
			cmd.reply <- commandOutcome{result: result, err: err}
		case <-e.quit:
			return
		}
	}
}

// process validates and applies one operation, then persists,
// broadcasts and emits the collected effects. Handlers mutate nothing
// until validation has passed, so a failed operation is invisible to
// everyone but the initiator.
func (e *Engine) process(actor *domain.User, op Op) (Result, error) {
	fx := &effects{}
	var result Result
	var err error

	e.store.Mutate(func(s *domain.Snapshot) {
		result, err = e.dispatch(s, actor, op, fx)
	})
	if err != nil {
		return Result{}, err
	}
	if !fx.mutated {
		e.applySimEffects(fx)
		return result, nil
	}

	snap := e.store.View()

	// Durability failure must not lose the in-memory mutation; the
	// running process stays correct and we retry on the next write.
	if perr := e.persist.Save(context.Background(), snap); perr != nil {
		e.logger.Error("snapshot persist failed", zap.String("op", op.OpName()), zap.Error(perr))
	}

	e.bcast.BroadcastSnapshot(snap)
	for _, n := range fx.notifications {
		e.bcast.BroadcastEvent(n.Event, n.Payload)
	}
	e.publishEvents(op, fx)
	e.applySimEffects(fx)

	return result, nil
}

func (e *Engine) publishEvents(op Op, fx *effects) {
	if e.events == nil {
		return
	}
	for _, ev := range fx.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := e.events.PublishJSON(ctx, EventsExchange, ev.routingKey, ev.payload); err != nil {
			e.logger.Warn("event publish failed",
				zap.String("op", op.OpName()),
				zap.String("routingKey", ev.routingKey),
				zap.Error(err))
		}
		cancel()
	}
}

func (e *Engine) applySimEffects(fx *effects) {
	for _, courierID := range fx.stopCouriers {
		e.sims.stop(courierID)
	}
	for _, req := range fx.startSims {
		e.sims.start(req.courierID, req.orderID)
	}
}

// logActivity prepends a bounded, human-readable audit entry.
func logActivity(s *domain.Snapshot, actor *domain.User, message string) {
	if actor == nil {
		return
	}
	entry := domain.ActivityEntry{
		ID: domain.NewID("log"),
		Actor: domain.ActivityActor{
			ID:   actor.ID,
			Name: actor.Name,
			Role: actor.Role,
		},
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	s.ActivityLog = append([]domain.ActivityEntry{entry}, s.ActivityLog...)
	if len(s.ActivityLog) > activityLogCap {
		s.ActivityLog = s.ActivityLog[:activityLogCap]
	}
}

// shortID matches the "#xxxx" style used in log messages.
func shortID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[len(id)-4:]
}
