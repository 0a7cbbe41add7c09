package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Snapshot is the complete, consistent set of all entity collections
// at one instant. It is the unit of persistence and of broadcast.
type Snapshot struct {
	Users          []User          `json:"users"`
	Orders         []Order         `json:"orders"`
	MenuItems      []MenuItem      `json:"menuItems"`
	Shifts         []Shift         `json:"shifts"`
	ActivityLog    []ActivityEntry `json:"activityLog"`
	Tables         []Table         `json:"tables"`
	ModifierGroups []ModifierGroup `json:"modifierGroups"`
	Reservations   []Reservation   `json:"reservations"`
	Ingredients    []Ingredient    `json:"ingredients"`
	StaffSchedules []StaffSchedule `json:"staffSchedules"`
}

// Clone returns a deep copy so that consumers can never alias the
// engine's live collections.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Users:          make([]User, len(s.Users)),
		Orders:         make([]Order, len(s.Orders)),
		MenuItems:      make([]MenuItem, len(s.MenuItems)),
		Shifts:         make([]Shift, len(s.Shifts)),
		ActivityLog:    make([]ActivityEntry, len(s.ActivityLog)),
		Tables:         make([]Table, len(s.Tables)),
		ModifierGroups: make([]ModifierGroup, len(s.ModifierGroups)),
		Reservations:   make([]Reservation, len(s.Reservations)),
		Ingredients:    make([]Ingredient, len(s.Ingredients)),
		StaffSchedules: make([]StaffSchedule, len(s.StaffSchedules)),
	}
	for i, u := range s.Users {
		out.Users[i] = u.clone()
	}
	for i, o := range s.Orders {
		out.Orders[i] = o.clone()
	}
	for i, m := range s.MenuItems {
		out.MenuItems[i] = m.clone()
	}
	for i, sh := range s.Shifts {
		out.Shifts[i] = sh.clone()
	}
	copy(out.ActivityLog, s.ActivityLog)
	copy(out.Tables, s.Tables)
	for i, g := range s.ModifierGroups {
		out.ModifierGroups[i] = g.clone()
	}
	copy(out.Reservations, s.Reservations)
	copy(out.Ingredients, s.Ingredients)
	copy(out.StaffSchedules, s.StaffSchedules)
	return out
}

func (u User) clone() User {
	if u.Location != nil {
		loc := *u.Location
		u.Location = &loc
	}
	if u.LoyaltyPoints != nil {
		pts := *u.LoyaltyPoints
		u.LoyaltyPoints = &pts
	}
	if len(u.Rewards) > 0 {
		rewards := make([]Reward, len(u.Rewards))
		copy(rewards, u.Rewards)
		u.Rewards = rewards
	}
	return u
}

func (o Order) clone() Order {
	if len(o.Items) > 0 {
		items := make([]OrderItem, len(o.Items))
		for i, it := range o.Items {
			if len(it.SelectedModifiers) > 0 {
				mods := make([]SelectedModifier, len(it.SelectedModifiers))
				copy(mods, it.SelectedModifiers)
				it.SelectedModifiers = mods
			}
			items[i] = it
		}
		o.Items = items
	}
	if o.CustomerLocation != nil {
		loc := *o.CustomerLocation
		o.CustomerLocation = &loc
	}
	return o
}

func (m MenuItem) clone() MenuItem {
	if len(m.ModifierGroupIDs) > 0 {
		ids := make([]string, len(m.ModifierGroupIDs))
		copy(ids, m.ModifierGroupIDs)
		m.ModifierGroupIDs = ids
	}
	if len(m.Recipe) > 0 {
		recipe := make([]RecipeItem, len(m.Recipe))
		copy(recipe, m.Recipe)
		m.Recipe = recipe
	}
	return m
}

func (sh Shift) clone() Shift {
	if sh.EndTime != nil {
		t := *sh.EndTime
		sh.EndTime = &t
	}
	if sh.EndFloat != nil {
		f := *sh.EndFloat
		sh.EndFloat = &f
	}
	return sh
}

func (g ModifierGroup) clone() ModifierGroup {
	if len(g.Options) > 0 {
		opts := make([]ModifierOption, len(g.Options))
		copy(opts, g.Options)
		g.Options = opts
	}
	return g
}

// NewID mints a process-unique identifier with an entity prefix, e.g.
// "ord_1b9d6bcd-...".
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}

// Sanitized strips fields a client is never allowed to see.
func (u User) Sanitized() User {
	out := u.clone()
	out.PasswordHash = ""
	return out
}

// Sanitized returns a deep copy with all credential material removed.
// Every snapshot that leaves the process goes through here.
func (s Snapshot) Sanitized() Snapshot {
	out := s.Clone()
	for i := range out.Users {
		out.Users[i].PasswordHash = ""
	}
	return out
}
