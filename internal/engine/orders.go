package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/loyalty"
)

func (e *Engine) applyAddOrder(s *domain.Snapshot, actor *domain.User, op AddOrderOp, fx *effects) (Result, error) {
	if actor == nil {
		return Result{}, validationf("addOrder requires an actor")
	}
	order := op.Order
	if len(order.Items) == 0 {
		return Result{}, validationf("order must contain at least one item")
	}

	if order.Type == domain.OrderDineIn && order.TableNumber > 0 {
		table := findTableByNumber(s, order.TableNumber)
		if table == nil {
			return Result{}, validationf("table %d does not exist", order.TableNumber)
		}
		if table.OrderID != "" {
			return Result{}, conflictf("table %d is already serving order %s", order.TableNumber, shortID(table.OrderID))
		}
	}

	order.ID = domain.NewID("ord")
	order.CreatedAt = time.Now().UTC()
	order.Total = recomputeTotal(s, order.Items)

	switch order.Type {
	case domain.OrderDineIn:
		if table := findTableByNumber(s, order.TableNumber); table != nil {
			table.Status = domain.TableOccupied
			table.OrderID = order.ID
		}
	case domain.OrderDelivery:
		order.CustomerLocation = &domain.Location{
			Lat: domain.RestaurantLocation.Lat + (rand.Float64()-0.5)*0.1,
			Lng: domain.RestaurantLocation.Lng + (rand.Float64()-0.5)*0.1,
		}
	}

	s.Orders = append([]domain.Order{order}, s.Orders...)
	logActivity(s, actor, fmt.Sprintf("created a new %s order #%s.", order.Type, shortID(order.ID)))
	fx.admin("New Order Placed",
		fmt.Sprintf("Order #%s (%s) for ₹%.2f was created by %s.", shortID(order.ID), order.Type, order.Total, actor.Name))
	fx.publish("order.created", order)
	fx.mutated = true

	placed := order
	return Result{Order: &placed}, nil
}

// applyUpdateOrder replaces an order wholesale and runs every side
// effect the status transition implies. The branches are independent;
// an order may trigger several in one update.
func (e *Engine) applyUpdateOrder(s *domain.Snapshot, actor *domain.User, op UpdateOrderOp, fx *effects) error {
	incoming := op.Order
	current := findOrder(s, incoming.ID)
	if current == nil {
		return validationf("order %s not found", incoming.ID)
	}
	old := *current

	if old.Status.Terminal() && incoming.Status != old.Status {
		return conflictf("order %s is already %s", shortID(old.ID), old.Status)
	}

	incoming.CreatedAt = old.CreatedAt
	incoming.Total = recomputeTotal(s, incoming.Items)
	*current = incoming

	statusChanged := old.Status != current.Status
	if statusChanged {
		logActivity(s, actor, fmt.Sprintf("updated order #%s status to %s.", shortID(current.ID), current.Status))
		fx.admin("Order Status Updated",
			fmt.Sprintf("Order #%s is now %s. Updated by %s.", shortID(current.ID), current.Status, actorName(actor)))
		fx.publish("order.status.updated", *current)

		if current.Status == domain.OrderPreparing {
			e.deductIngredients(s, current.Items, fx)
		}

		if current.Status == domain.OrderReady && current.Type == domain.OrderTakeout && current.CustomerID != "" {
			fx.notify(EventOrderReadyForPickup, OrderReadyForPickup{
				OrderID:    current.ID,
				CustomerID: current.CustomerID,
			})
		}
	}

	if incoming.Rating > 0 && old.Rating == 0 {
		logActivity(s, actor, fmt.Sprintf("rated order #%s with %d stars.", shortID(current.ID), current.Rating))
		fx.admin("New Customer Review",
			fmt.Sprintf("%s left a %d-star review for order #%s.", actorName(actor), current.Rating, shortID(current.ID)))
	}

	if statusChanged && current.Status.Terminal() && old.Type == domain.OrderDineIn {
		if table := findTableByOrderID(s, current.ID); table != nil {
			table.Status = domain.TableNeedsCleaning
			table.OrderID = ""
		}
	}

	// A courier handoff mid-delivery re-dispatches even without a
	// status change; the outgoing courier's task is stopped first.
	courierChanged := current.DeliveryPartnerID != old.DeliveryPartnerID
	if (statusChanged || courierChanged) && current.Status == domain.OrderOutForDelivery {
		if courierChanged && old.DeliveryPartnerID != "" {
			fx.stopCouriers = append(fx.stopCouriers, old.DeliveryPartnerID)
		}
		if current.DeliveryPartnerID != "" && current.CustomerLocation != nil {
			fx.startSims = append(fx.startSims, simRequest{
				courierID: current.DeliveryPartnerID,
				orderID:   current.ID,
			})
		}
	}

	if statusChanged && current.Status == domain.OrderDelivered && current.CustomerID != "" {
		if customer := findUser(s, current.CustomerID); customer != nil && customer.LoyaltyPoints != nil {
			*customer.LoyaltyPoints += int(math.Floor(current.Total / 100))
			customer.LoyaltyTier = loyalty.Promote(customer.LoyaltyTier, *customer.LoyaltyPoints)
			fx.notify(EventUserUpdated, UserUpdated{User: customer.Sanitized()})
		}
	}

	fx.mutated = true
	return nil
}

func (e *Engine) applyRecordCashPayment(s *domain.Snapshot, actor *domain.User, op RecordCashPaymentOp, fx *effects) error {
	order := findOrder(s, op.OrderID)
	if order == nil {
		return validationf("order %s not found", op.OrderID)
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return conflictf("order %s is already paid", shortID(order.ID))
	}
	order.PaymentStatus = domain.PaymentPaid
	order.PaymentMethod = domain.PayCash
	logActivity(s, actor, fmt.Sprintf("recorded cash payment for order #%s.", shortID(order.ID)))
	fx.mutated = true
	return nil
}

// recomputeTotal prices an order from the current menu plus selected
// modifier surcharges. The client's claimed total is never trusted.
func recomputeTotal(s *domain.Snapshot, items []domain.OrderItem) float64 {
	var total float64
	for _, item := range items {
		var base float64
		if mi := findMenuItem(s, item.MenuItemID); mi != nil {
			base = mi.Price
		}
		var mods float64
		for _, mod := range item.SelectedModifiers {
			mods += mod.Price
		}
		total += (base + mods) * float64(item.Quantity)
	}
	return total
}

// deductIngredients walks each line item's recipe and draws down raw
// stock, alerting when an ingredient crosses the restocking threshold.
func (e *Engine) deductIngredients(s *domain.Snapshot, items []domain.OrderItem, fx *effects) {
	for _, item := range items {
		mi := findMenuItem(s, item.MenuItemID)
		if mi == nil {
			continue
		}
		for _, recipe := range mi.Recipe {
			ing := findIngredient(s, recipe.IngredientID)
			if ing == nil {
				continue
			}
			ing.Stock -= recipe.Quantity * float64(item.Quantity)
			if ing.Stock < e.opts.IngredientLowStock {
				fx.admin("Low Ingredient Stock",
					fmt.Sprintf("%s is running low (%.2f %s left).", ing.Name, ing.Stock, ing.Unit))
			}
		}
	}
}

func actorName(actor *domain.User) string {
	if actor == nil {
		return "system"
	}
	return actor.Name
}
