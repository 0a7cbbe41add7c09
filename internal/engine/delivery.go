package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"rms-sync-service/internal/domain"
)

// simulators owns one background task per courier currently out on a
// delivery. Tasks never touch state directly; each tick is enqueued as
// a command and serialized with everything else.
type simulators struct {
	engine *Engine

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func newSimulators(e *Engine) *simulators {
	return &simulators{
		engine:  e,
		cancels: make(map[string]context.CancelFunc),
	}
}

// start launches the tick loop for one courier. A courier carries at
// most one active delivery; reassignment replaces the running task.
func (sm *simulators) start(courierID, orderID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if cancel, ok := sm.cancels[courierID]; ok {
		cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sm.cancels[courierID] = cancel

	sm.wg.Add(1)
	go sm.runTask(ctx, courierID, orderID)
}

func (sm *simulators) stop(courierID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if cancel, ok := sm.cancels[courierID]; ok {
		cancel()
		delete(sm.cancels, courierID)
	}
}

func (sm *simulators) stopAll() {
	sm.mu.Lock()
	for id, cancel := range sm.cancels {
		cancel()
		delete(sm.cancels, id)
	}
	sm.mu.Unlock()
	sm.wg.Wait()
}

func (sm *simulators) runTask(ctx context.Context, courierID, orderID string) {
	defer sm.wg.Done()

	ticker := time.NewTicker(sm.engine.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := sm.engine.Apply(ctx, nil, courierTickOp{courierID: courierID, orderID: orderID})
			if err != nil {
				if !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
					sm.engine.logger.Warn("courier tick failed",
						zap.String("courierId", courierID),
						zap.String("orderId", orderID),
						zap.Error(err))
				}
				return
			}
		}
	}
}

// applyCourierTick advances one courier a fixed fraction of the way to
// the destination. The tick re-reads the order each time; if it has
// left Out for Delivery or been handed to another courier since the
// task was scheduled, the task is told to stop and nothing moves.
func (e *Engine) applyCourierTick(s *domain.Snapshot, op courierTickOp, fx *effects) error {
	order := findOrder(s, op.orderID)
	if order == nil || order.Status != domain.OrderOutForDelivery ||
		order.DeliveryPartnerID != op.courierID || order.CustomerLocation == nil {
		fx.stopCouriers = append(fx.stopCouriers, op.courierID)
		return nil
	}

	courier := findUser(s, op.courierID)
	if courier == nil || courier.Location == nil {
		fx.stopCouriers = append(fx.stopCouriers, op.courierID)
		return nil
	}

	next := domain.MoveTowards(*courier.Location, *order.CustomerLocation, e.opts.StepFraction)
	courier.Location = &next
	fx.mutated = true
	return nil
}
