package engine

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rms-sync-service/internal/domain"
)

// dispatch routes one operation to its handler. The switch is
// exhaustive over the closed Op set; adding an operation without a
// branch falls through to the final error.
func (e *Engine) dispatch(s *domain.Snapshot, actor *domain.User, op Op, fx *effects) (Result, error) {
	switch v := op.(type) {
	case LoginOp:
		return e.applyLogin(s, v, fx)
	case LogoutOp:
		return Result{}, e.applyLogout(s, v, fx)
	case SignupOp:
		return e.applySignup(s, v, fx)
	case AddStaffOp:
		return e.applyAddStaff(s, actor, v, fx)
	case DeleteUserOp:
		return Result{}, e.applyDeleteUser(s, actor, v, fx)
	case AddOrderOp:
		return e.applyAddOrder(s, actor, v, fx)
	case UpdateOrderOp:
		return Result{}, e.applyUpdateOrder(s, actor, v, fx)
	case RecordCashPaymentOp:
		return Result{}, e.applyRecordCashPayment(s, actor, v, fx)
	case AddMenuItemOp:
		return Result{}, e.applyAddMenuItem(s, actor, v, fx)
	case UpdateMenuItemOp:
		return Result{}, e.applyUpdateMenuItem(s, actor, v, fx)
	case DeleteMenuItemOp:
		return Result{}, e.applyDeleteMenuItem(s, actor, v, fx)
	case SaveIngredientOp:
		return Result{}, e.applySaveIngredient(s, actor, v, fx)
	case DeleteIngredientOp:
		return Result{}, e.applyDeleteIngredient(s, actor, v, fx)
	case SaveScheduleOp:
		return Result{}, e.applySaveSchedule(s, actor, v, fx)
	case DeleteScheduleOp:
		return Result{}, e.applyDeleteSchedule(s, actor, v, fx)
	case SaveModifierGroupOp:
		return Result{}, e.applySaveModifierGroup(s, actor, v, fx)
	case DeleteModifierGroupOp:
		return Result{}, e.applyDeleteModifierGroup(s, actor, v, fx)
	case CreateReservationOp:
		return Result{}, e.applyCreateReservation(s, actor, v, fx)
	case UpdateReservationStatusOp:
		return Result{}, e.applyUpdateReservationStatus(s, actor, v, fx)
	case UpdateTableOp:
		return Result{}, e.applyUpdateTable(s, v, fx)
	case StartShiftOp:
		return Result{}, e.applyStartShift(s, actor, v, fx)
	case EndShiftOp:
		return Result{}, e.applyEndShift(s, actor, v, fx)
	case UpdateUserLocationOp:
		return Result{}, e.applyUpdateUserLocation(s, v, fx)
	case courierTickOp:
		return Result{}, e.applyCourierTick(s, v, fx)
	default:
		return Result{}, validationf("unknown operation %q", op.OpName())
	}
}

func (e *Engine) applyLogin(s *domain.Snapshot, op LoginOp, fx *effects) (Result, error) {
	user := findUserByEmail(s, op.Email)
	if user == nil || user.Role != op.Role {
		return Result{}, authf("invalid credentials or role")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(op.Password)) != nil {
		return Result{}, authf("invalid credentials or role")
	}

	user.Status = domain.UserOnline
	user.LastLogin = time.Now().UTC()
	logActivity(s, user, "logged in.")
	fx.mutated = true

	sanitized := user.Sanitized()
	return Result{User: &sanitized}, nil
}

func (e *Engine) applyLogout(s *domain.Snapshot, op LogoutOp, fx *effects) error {
	user := findUser(s, op.UserID)
	if user == nil {
		return nil
	}
	user.Status = domain.UserOffline
	logActivity(s, user, "logged out.")
	fx.mutated = true
	return nil
}

func (e *Engine) applySignup(s *domain.Snapshot, op SignupOp, fx *effects) (Result, error) {
	if op.Name == "" || op.Email == "" || op.Password == "" {
		return Result{}, validationf("name, email and password are required")
	}
	if findUserByEmail(s, op.Email) != nil {
		return Result{}, authf("email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(op.Password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, err
	}

	points := 0
	user := domain.User{
		ID:            domain.NewID("usr"),
		Name:          op.Name,
		Email:         op.Email,
		PasswordHash:  string(hash),
		Role:          domain.RoleCustomer,
		AvatarURL:     fmt.Sprintf("https://picsum.photos/seed/%s/100/100", op.Name),
		Status:        domain.UserOffline,
		LastLogin:     time.Now().UTC(),
		LoyaltyPoints: &points,
		LoyaltyTier:   domain.TierNone,
	}
	s.Users = append(s.Users, user)
	fx.admin("New Customer Signup", fmt.Sprintf("%s (%s) has just signed up.", op.Name, op.Email))
	fx.mutated = true

	sanitized := user.Sanitized()
	return Result{User: &sanitized}, nil
}

func (e *Engine) applyAddStaff(s *domain.Snapshot, actor *domain.User, op AddStaffOp, fx *effects) (Result, error) {
	if actor == nil {
		return Result{}, validationf("addStaff requires an actor")
	}
	if op.Name == "" || op.Email == "" || op.Role == "" {
		return Result{}, validationf("name, email and role are required")
	}
	if findUserByEmail(s, op.Email) != nil {
		return Result{}, authf("email already in use")
	}

	password := randomPassword()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, err
	}

	user := domain.User{
		ID:           domain.NewID("usr"),
		Name:         op.Name,
		Email:        op.Email,
		PasswordHash: string(hash),
		Role:         op.Role,
		HourlyRate:   op.HourlyRate,
		AvatarURL:    fmt.Sprintf("https://picsum.photos/seed/%s/100/100", op.Name),
		Status:       domain.UserOffline,
		LastLogin:    time.Now().UTC(),
	}
	s.Users = append(s.Users, user)
	logActivity(s, actor, fmt.Sprintf("added new staff member: %s (%s).", op.Name, op.Role))
	fx.admin("New Staff Added", fmt.Sprintf("%s (%s) was added by %s.", op.Name, op.Role, actor.Name))
	fx.mutated = true

	return Result{Credentials: &Credentials{Email: op.Email, Password: password}}, nil
}

func (e *Engine) applyDeleteUser(s *domain.Snapshot, actor *domain.User, op DeleteUserOp, fx *effects) error {
	for i, u := range s.Users {
		if u.ID == op.UserID {
			s.Users = append(s.Users[:i], s.Users[i+1:]...)
			logActivity(s, actor, fmt.Sprintf("deleted user (ID: %s).", shortID(op.UserID)))
			fx.mutated = true
			return nil
		}
	}
	return nil
}

func (e *Engine) applyAddMenuItem(s *domain.Snapshot, actor *domain.User, op AddMenuItemOp, fx *effects) error {
	if op.Item.Name == "" {
		return validationf("menu item name is required")
	}
	item := op.Item
	item.ID = domain.NewID("item")
	if item.Stock < 0 {
		item.Stock = 0
	}
	s.MenuItems = append(s.MenuItems, item)
	logActivity(s, actor, fmt.Sprintf("added menu item: %s.", item.Name))
	fx.mutated = true
	return nil
}

func (e *Engine) applyUpdateMenuItem(s *domain.Snapshot, actor *domain.User, op UpdateMenuItemOp, fx *effects) error {
	item := op.Item
	if item.Stock < 0 {
		item.Stock = 0
	}
	for i, existing := range s.MenuItems {
		if existing.ID != item.ID {
			continue
		}
		if existing.Stock > 0 && item.Stock == 0 {
			fx.admin("Item Out of Stock", fmt.Sprintf("%s is now out of stock.", item.Name))
		} else if existing.Stock >= e.opts.MenuLowStock && item.Stock < e.opts.MenuLowStock {
			fx.admin("Low Stock Alert", fmt.Sprintf("%s is running low (%d left).", item.Name, item.Stock))
		}
		s.MenuItems[i] = item
		logActivity(s, actor, fmt.Sprintf("updated menu item: %s.", item.Name))
		fx.mutated = true
		return nil
	}
	return validationf("menu item %s not found", item.ID)
}

func (e *Engine) applyDeleteMenuItem(s *domain.Snapshot, actor *domain.User, op DeleteMenuItemOp, fx *effects) error {
	for i, item := range s.MenuItems {
		if item.ID == op.ItemID {
			s.MenuItems = append(s.MenuItems[:i], s.MenuItems[i+1:]...)
			logActivity(s, actor, fmt.Sprintf("deleted menu item: %s.", item.Name))
			fx.mutated = true
			return nil
		}
	}
	return nil
}

func (e *Engine) applySaveIngredient(s *domain.Snapshot, actor *domain.User, op SaveIngredientOp, fx *effects) error {
	ing := op.Ingredient
	if ing.Name == "" {
		return validationf("ingredient name is required")
	}
	if ing.Stock < 0 {
		ing.Stock = 0
	}
	if ing.ID == "" {
		ing.ID = domain.NewID("ing")
	}
	for i, existing := range s.Ingredients {
		if existing.ID == ing.ID {
			s.Ingredients[i] = ing
			logActivity(s, actor, fmt.Sprintf("updated ingredient: %s.", ing.Name))
			fx.mutated = true
			return nil
		}
	}
	s.Ingredients = append(s.Ingredients, ing)
	logActivity(s, actor, fmt.Sprintf("created new ingredient: %s.", ing.Name))
	fx.mutated = true
	return nil
}

func (e *Engine) applyDeleteIngredient(s *domain.Snapshot, actor *domain.User, op DeleteIngredientOp, fx *effects) error {
	for i, ing := range s.Ingredients {
		if ing.ID == op.IngredientID {
			s.Ingredients = append(s.Ingredients[:i], s.Ingredients[i+1:]...)
			logActivity(s, actor, fmt.Sprintf("deleted ingredient: %s.", ing.Name))
			fx.mutated = true
			return nil
		}
	}
	return nil
}

func (e *Engine) applySaveSchedule(s *domain.Snapshot, actor *domain.User, op SaveScheduleOp, fx *effects) error {
	sched := op.Schedule
	if sched.StaffID == "" {
		return validationf("schedule staffId is required")
	}
	if sched.ID == "" {
		sched.ID = domain.NewID("sched")
	}
	for i, existing := range s.StaffSchedules {
		if existing.ID == sched.ID {
			s.StaffSchedules[i] = sched
			logActivity(s, actor, "updated the staff schedule.")
			fx.mutated = true
			return nil
		}
	}
	s.StaffSchedules = append(s.StaffSchedules, sched)
	logActivity(s, actor, "updated the staff schedule.")
	fx.mutated = true
	return nil
}

func (e *Engine) applyDeleteSchedule(s *domain.Snapshot, actor *domain.User, op DeleteScheduleOp, fx *effects) error {
	for i, sched := range s.StaffSchedules {
		if sched.ID == op.ScheduleID {
			s.StaffSchedules = append(s.StaffSchedules[:i], s.StaffSchedules[i+1:]...)
			logActivity(s, actor, "removed a shift from the schedule.")
			fx.mutated = true
			return nil
		}
	}
	return nil
}

func (e *Engine) applySaveModifierGroup(s *domain.Snapshot, actor *domain.User, op SaveModifierGroupOp, fx *effects) error {
	group := op.Group
	if group.Name == "" {
		return validationf("modifier group name is required")
	}
	if group.ID == "" {
		group.ID = domain.NewID("mod_grp")
	}
	for i, existing := range s.ModifierGroups {
		if existing.ID == group.ID {
			s.ModifierGroups[i] = group
			logActivity(s, actor, fmt.Sprintf("updated modifier group: %s.", group.Name))
			fx.mutated = true
			return nil
		}
	}
	s.ModifierGroups = append(s.ModifierGroups, group)
	logActivity(s, actor, fmt.Sprintf("created new modifier group: %s.", group.Name))
	fx.mutated = true
	return nil
}

func (e *Engine) applyDeleteModifierGroup(s *domain.Snapshot, actor *domain.User, op DeleteModifierGroupOp, fx *effects) error {
	for i, group := range s.ModifierGroups {
		if group.ID == op.GroupID {
			s.ModifierGroups = append(s.ModifierGroups[:i], s.ModifierGroups[i+1:]...)
			logActivity(s, actor, fmt.Sprintf("deleted modifier group: %s.", group.Name))
			fx.mutated = true
			return nil
		}
	}
	return nil
}

func (e *Engine) applyCreateReservation(s *domain.Snapshot, actor *domain.User, op CreateReservationOp, fx *effects) error {
	if actor == nil {
		return validationf("createReservation requires an actor")
	}
	if op.PartySize <= 0 {
		return validationf("party size must be positive")
	}
	if findTableByNumber(s, op.TableNumber) == nil {
		return validationf("table %d does not exist", op.TableNumber)
	}

	reservation := domain.Reservation{
		ID:              domain.NewID("res"),
		CustomerID:      actor.ID,
		CustomerName:    actor.Name,
		TableNumber:     op.TableNumber,
		ReservationTime: op.ReservationTime,
		PartySize:       op.PartySize,
		Status:          domain.ReservationPending,
	}
	s.Reservations = append(s.Reservations, reservation)
	logActivity(s, actor, fmt.Sprintf("requested a reservation for table %d.", op.TableNumber))
	fx.admin("New Reservation", fmt.Sprintf("%s requested a reservation for table %d.", actor.Name, op.TableNumber))
	fx.mutated = true
	return nil
}

func (e *Engine) applyUpdateReservationStatus(s *domain.Snapshot, actor *domain.User, op UpdateReservationStatusOp, fx *effects) error {
	var res *domain.Reservation
	for i := range s.Reservations {
		if s.Reservations[i].ID == op.ReservationID {
			res = &s.Reservations[i]
			break
		}
	}
	if res == nil {
		return validationf("reservation %s not found", op.ReservationID)
	}

	res.Status = op.Status
	logActivity(s, actor, fmt.Sprintf("%s reservation for %s.", strings.ToLower(string(op.Status)), res.CustomerName))

	// Active occupancy always wins: a reservation change never flips a
	// table that an order currently holds.
	if table := findTableByNumber(s, res.TableNumber); table != nil && table.Status != domain.TableOccupied {
		switch op.Status {
		case domain.ReservationConfirmed:
			table.Status = domain.TableReserved
		case domain.ReservationCancelled, domain.ReservationCompleted:
			table.Status = domain.TableAvailable
		}
	}

	fx.notify(EventReservationUpdated, ReservationUpdated{
		CustomerID: res.CustomerID,
		Message:    fmt.Sprintf("Your reservation for table %d has been %s.", res.TableNumber, strings.ToLower(string(op.Status))),
	})
	fx.mutated = true
	return nil
}

func (e *Engine) applyUpdateTable(s *domain.Snapshot, op UpdateTableOp, fx *effects) error {
	for i, table := range s.Tables {
		if table.ID == op.Table.ID {
			s.Tables[i] = op.Table
			// High-frequency floor operation; intentionally unlogged.
			fx.mutated = true
			return nil
		}
	}
	return validationf("table %s not found", op.Table.ID)
}

func (e *Engine) applyStartShift(s *domain.Snapshot, actor *domain.User, op StartShiftOp, fx *effects) error {
	if op.CashierID == "" {
		return validationf("cashierId is required")
	}
	for _, shift := range s.Shifts {
		if shift.CashierID == op.CashierID && shift.EndTime == nil {
			return conflictf("staff member %s already has an open shift", op.CashierID)
		}
	}

	s.Shifts = append(s.Shifts, domain.Shift{
		ID:         domain.NewID("shift"),
		CashierID:  op.CashierID,
		StartTime:  time.Now().UTC(),
		StartFloat: op.StartFloat,
	})
	logActivity(s, actor, "started a new shift.")
	if actor != nil {
		fx.admin("Shift Started", fmt.Sprintf("%s has clocked in and started a shift.", actor.Name))
	}
	fx.mutated = true
	return nil
}

func (e *Engine) applyEndShift(s *domain.Snapshot, actor *domain.User, op EndShiftOp, fx *effects) error {
	for i := range s.Shifts {
		if s.Shifts[i].ID != op.ShiftID {
			continue
		}
		if s.Shifts[i].EndTime != nil {
			return conflictf("shift %s is already closed", op.ShiftID)
		}
		now := time.Now().UTC()
		endFloat := op.EndFloat
		s.Shifts[i].EndTime = &now
		s.Shifts[i].EndFloat = &endFloat
		logActivity(s, actor, "ended their shift.")
		if actor != nil {
			fx.admin("Shift Ended", fmt.Sprintf("%s has clocked out and ended their shift.", actor.Name))
		}
		fx.mutated = true
		return nil
	}
	return validationf("shift %s not found", op.ShiftID)
}

func (e *Engine) applyUpdateUserLocation(s *domain.Snapshot, op UpdateUserLocationOp, fx *effects) error {
	user := findUser(s, op.UserID)
	if user == nil {
		return nil
	}
	loc := op.Location
	user.Location = &loc
	// Broadcast-triggering but never activity-logged: location pings
	// arrive too often for the audit ring.
	fx.mutated = true
	return nil
}

func findUser(s *domain.Snapshot, id string) *domain.User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

func findUserByEmail(s *domain.Snapshot, email string) *domain.User {
	for i := range s.Users {
		if strings.EqualFold(s.Users[i].Email, email) {
			return &s.Users[i]
		}
	}
	return nil
}

func findOrder(s *domain.Snapshot, id string) *domain.Order {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return &s.Orders[i]
		}
	}
	return nil
}

func findTableByNumber(s *domain.Snapshot, number int) *domain.Table {
	for i := range s.Tables {
		if s.Tables[i].Number == number {
			return &s.Tables[i]
		}
	}
	return nil
}

func findTableByOrderID(s *domain.Snapshot, orderID string) *domain.Table {
	for i := range s.Tables {
		if s.Tables[i].OrderID == orderID {
			return &s.Tables[i]
		}
	}
	return nil
}

func findMenuItem(s *domain.Snapshot, id string) *domain.MenuItem {
	for i := range s.MenuItems {
		if s.MenuItems[i].ID == id {
			return &s.MenuItems[i]
		}
	}
	return nil
}

func findIngredient(s *domain.Snapshot, id string) *domain.Ingredient {
	for i := range s.Ingredients {
		if s.Ingredients[i].ID == id {
			return &s.Ingredients[i]
		}
	}
	return nil
}

func randomPassword() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "changeme1"
	}
	return hex.EncodeToString(buf)
}
