package engine

import (
	"time"

	"rms-sync-service/internal/domain"
)

// Op is the closed set of named operations the engine accepts. Each
// payload is its own type so dispatch is an exhaustive type switch.
type Op interface {
	OpName() string
	isOp()
}

type LoginOp struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type LogoutOp struct {
	UserID string `json:"userId"`
}

type SignupOp struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddStaffOp struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	HourlyRate float64     `json:"hourlyRate"`
}

type DeleteUserOp struct {
	UserID string `json:"userId"`
}

// AddOrderOp carries the client's order draft. Total is advisory; the
// engine always recomputes it from current prices.
type AddOrderOp struct {
	Order domain.Order `json:"order"`
}

type UpdateOrderOp struct {
	Order domain.Order `json:"order"`
}

type RecordCashPaymentOp struct {
	OrderID string `json:"orderId"`
}

type AddMenuItemOp struct {
	Item domain.MenuItem `json:"item"`
}

type UpdateMenuItemOp struct {
	Item domain.MenuItem `json:"item"`
}

type DeleteMenuItemOp struct {
	ItemID string `json:"itemId"`
}

type SaveIngredientOp struct {
	Ingredient domain.Ingredient `json:"ingredient"`
}

type DeleteIngredientOp struct {
	IngredientID string `json:"ingredientId"`
}

type SaveScheduleOp struct {
	Schedule domain.StaffSchedule `json:"schedule"`
}

type DeleteScheduleOp struct {
	ScheduleID string `json:"scheduleId"`
}

type SaveModifierGroupOp struct {
	Group domain.ModifierGroup `json:"group"`
}

type DeleteModifierGroupOp struct {
	GroupID string `json:"groupId"`
}

type CreateReservationOp struct {
	TableNumber     int       `json:"tableNumber"`
	ReservationTime time.Time `json:"reservationTime"`
	PartySize       int       `json:"partySize"`
}

type UpdateReservationStatusOp struct {
	ReservationID string                   `json:"reservationId"`
	Status        domain.ReservationStatus `json:"status"`
}

type UpdateTableOp struct {
	Table domain.Table `json:"table"`
}

type StartShiftOp struct {
	CashierID  string  `json:"cashierId"`
	StartFloat float64 `json:"startFloat"`
}

type EndShiftOp struct {
	ShiftID  string  `json:"shiftId"`
	EndFloat float64 `json:"endFloat"`
}

type UpdateUserLocationOp struct {
	UserID   string          `json:"userId"`
	Location domain.Location `json:"location"`
}

// courierTickOp is enqueued by the delivery simulator; it shares the
// serialized mutation path with client operations.
type courierTickOp struct {
	courierID string
	orderID   string
}

func (LoginOp) OpName() string                   { return "login" }
func (LogoutOp) OpName() string                  { return "logout" }
func (SignupOp) OpName() string                  { return "signup" }
func (AddStaffOp) OpName() string                { return "addStaff" }
func (DeleteUserOp) OpName() string              { return "deleteUser" }
func (AddOrderOp) OpName() string                { return "addOrder" }
func (UpdateOrderOp) OpName() string             { return "updateOrder" }
func (RecordCashPaymentOp) OpName() string       { return "recordCashPayment" }
func (AddMenuItemOp) OpName() string             { return "addMenuItem" }
func (UpdateMenuItemOp) OpName() string          { return "updateMenuItem" }
func (DeleteMenuItemOp) OpName() string          { return "deleteMenuItem" }
func (SaveIngredientOp) OpName() string          { return "saveIngredient" }
func (DeleteIngredientOp) OpName() string        { return "deleteIngredient" }
func (SaveScheduleOp) OpName() string            { return "saveSchedule" }
func (DeleteScheduleOp) OpName() string          { return "deleteSchedule" }
func (SaveModifierGroupOp) OpName() string       { return "saveModifierGroup" }
func (DeleteModifierGroupOp) OpName() string     { return "deleteModifierGroup" }
func (CreateReservationOp) OpName() string       { return "createReservation" }
func (UpdateReservationStatusOp) OpName() string { return "updateReservationStatus" }
func (UpdateTableOp) OpName() string             { return "updateTable" }
func (StartShiftOp) OpName() string              { return "startShift" }
func (EndShiftOp) OpName() string                { return "endShift" }
func (UpdateUserLocationOp) OpName() string      { return "updateUserLocation" }
func (courierTickOp) OpName() string             { return "courierTick" }

func (LoginOp) isOp()                   {}
func (LogoutOp) isOp()                  {}
func (SignupOp) isOp()                  {}
func (AddStaffOp) isOp()                {}
func (DeleteUserOp) isOp()              {}
func (AddOrderOp) isOp()                {}
func (UpdateOrderOp) isOp()             {}
func (RecordCashPaymentOp) isOp()       {}
func (AddMenuItemOp) isOp()             {}
func (UpdateMenuItemOp) isOp()          {}
func (DeleteMenuItemOp) isOp()          {}
func (SaveIngredientOp) isOp()          {}
func (DeleteIngredientOp) isOp()        {}
func (SaveScheduleOp) isOp()            {}
func (DeleteScheduleOp) isOp()          {}
func (SaveModifierGroupOp) isOp()       {}
func (DeleteModifierGroupOp) isOp()     {}
func (CreateReservationOp) isOp()       {}
func (UpdateReservationStatusOp) isOp() {}
func (UpdateTableOp) isOp()             {}
func (StartShiftOp) isOp()              {}
func (EndShiftOp) isOp()                {}
func (UpdateUserLocationOp) isOp()      {}
func (courierTickOp) isOp()             {}
