package auth

import "rms-sync-service/internal/domain"

// adminOnlyOps are operations only an Admin session may issue. The
// remaining operations are open to any authenticated role; the engine
// validates their payloads.
var adminOnlyOps = map[string]struct{}{
	"addStaff":   {},
	"deleteUser": {},
}

// staffOnlyOps require any non-customer role.
var staffOnlyOps = map[string]struct{}{
	"addMenuItem":             {},
	"updateMenuItem":          {},
	"deleteMenuItem":          {},
	"saveIngredient":          {},
	"deleteIngredient":        {},
	"saveSchedule":            {},
	"deleteSchedule":          {},
	"saveModifierGroup":       {},
	"deleteModifierGroup":     {},
	"updateReservationStatus": {},
	"updateTable":             {},
	"startShift":              {},
	"endShift":                {},
	"recordCashPayment":       {},
}

// CanPerform reports whether a role is allowed to issue the named
// operation.
func CanPerform(role domain.Role, opName string) bool {
	if _, ok := adminOnlyOps[opName]; ok {
		return role == domain.RoleAdmin
	}
	if _, ok := staffOnlyOps[opName]; ok {
		return role != domain.RoleCustomer
	}
	return true
}
