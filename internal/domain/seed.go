package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RestaurantLocation anchors delivery destinations and courier spawn
// points.
var RestaurantLocation = Location{Lat: 34.0522, Lng: -118.2437}

const RestaurantAddress = "123 Flavor St, Los Angeles, CA 90012"

const seedPassword = "password123"

// Seed builds the initial dataset used when no persisted snapshot
// exists: one user per role, the base pantry, a small menu with
// recipes, two modifier groups, twelve tables and one confirmed
// reservation.
func Seed() Snapshot {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	pw := string(hash)
	now := time.Now().UTC()
	loyalty := 75

	return Snapshot{
		Users: []User{
			{ID: "usr_001", Name: "Admin User", Email: "admin@rms.com", PasswordHash: pw, Role: RoleAdmin, AvatarURL: "https://picsum.photos/seed/admin/100/100", Status: UserOnline, LastLogin: now},
			{ID: "usr_002", Name: "Cashier Cash", Email: "cashier@rms.com", PasswordHash: pw, Role: RoleCashier, AvatarURL: "https://picsum.photos/seed/cashier/100/100", Status: UserOffline, LastLogin: now, HourlyRate: 150},
			{ID: "usr_003", Name: "Server Steve", Email: "server@rms.com", PasswordHash: pw, Role: RoleServer, AvatarURL: "https://picsum.photos/seed/server/100/100", Status: UserOffline, LastLogin: now, HourlyRate: 120},
			{ID: "usr_004", Name: "Kitchen Kevin", Email: "kitchen@rms.com", PasswordHash: pw, Role: RoleKitchen, AvatarURL: "https://picsum.photos/seed/kitchen/100/100", Status: UserOffline, LastLogin: now, HourlyRate: 180},
			{ID: "usr_005", Name: "Delivery Dan", Email: "delivery@rms.com", PasswordHash: pw, Role: RoleDeliveryPartner, AvatarURL: "https://picsum.photos/seed/driver/100/100", Status: UserOffline, LastLogin: now, Location: &Location{Lat: 34.06, Lng: -118.25}, HourlyRate: 100},
			{ID: "usr_006", Name: "Customer Chris", Email: "customer@rms.com", PasswordHash: pw, Role: RoleCustomer, AvatarURL: "https://picsum.photos/seed/customer/100/100", Status: UserOffline, LastLogin: now, LoyaltyPoints: &loyalty, LoyaltyTier: TierSilver},
		},
		Ingredients: []Ingredient{
			{ID: "ing_1", Name: "Pizza Dough", Unit: UnitPiece, Stock: 100, Cost: 40},
			{ID: "ing_2", Name: "Tomato Sauce", Unit: UnitKilogram, Stock: 20, Cost: 80},
			{ID: "ing_3", Name: "Mozzarella Cheese", Unit: UnitKilogram, Stock: 15, Cost: 400},
			{ID: "ing_4", Name: "Pasta", Unit: UnitKilogram, Stock: 50, Cost: 120},
			{ID: "ing_5", Name: "Lettuce", Unit: UnitKilogram, Stock: 10, Cost: 90},
			{ID: "ing_6", Name: "Brownie Mix", Unit: UnitKilogram, Stock: 25, Cost: 200},
		},
		MenuItems: []MenuItem{
			{ID: "item_1", Name: "Margherita Pizza", Category: "Pizza", Description: "Crispy crust, tangy tomato sauce, fresh mozzarella and basil.", Price: 250, Stock: 50, ImageURL: "https://picsum.photos/seed/pizza/400/300", ModifierGroupIDs: []string{"mod_grp_1"}, Recipe: []RecipeItem{{IngredientID: "ing_1", Quantity: 1}, {IngredientID: "ing_2", Quantity: 0.15}, {IngredientID: "ing_3", Quantity: 0.1}}, PrepTimeMinutes: 12},
			{ID: "item_2", Name: "Carbonara Pasta", Category: "Pasta", Price: 300, Stock: 30, ImageURL: "https://picsum.photos/seed/pasta/400/300", Recipe: []RecipeItem{{IngredientID: "ing_4", Quantity: 0.2}}, PrepTimeMinutes: 8},
			{ID: "item_3", Name: "Caesar Salad", Category: "Salads", Price: 180, Stock: 40, ImageURL: "https://picsum.photos/seed/salad/400/300", ModifierGroupIDs: []string{"mod_grp_2"}, Recipe: []RecipeItem{{IngredientID: "ing_5", Quantity: 0.25}}, PrepTimeMinutes: 5},
			{ID: "item_4", Name: "Chocolate Brownie", Category: "Desserts", Price: 120, Stock: 60, ImageURL: "https://picsum.photos/seed/dessert/400/300", Recipe: []RecipeItem{{IngredientID: "ing_6", Quantity: 0.1}}, PrepTimeMinutes: 4},
			{ID: "item_5", Name: "Iced Tea", Category: "Beverages", Price: 80, Stock: 100, ImageURL: "https://picsum.photos/seed/tea/400/300", PrepTimeMinutes: 2},
		},
		ModifierGroups: []ModifierGroup{
			{
				ID: "mod_grp_1", Name: "Pizza Toppings", SelectionType: "multiple",
				Options: []ModifierOption{
					{ID: "opt_1", Name: "Extra Cheese", Price: 50},
					{ID: "opt_2", Name: "Mushrooms", Price: 30},
					{ID: "opt_3", Name: "Olives", Price: 30},
					{ID: "opt_4", Name: "Pepperoni", Price: 60},
				},
			},
			{
				ID: "mod_grp_2", Name: "Salad Dressing", SelectionType: "single",
				Options: []ModifierOption{
					{ID: "opt_5", Name: "Italian Vinaigrette", Price: 0},
					{ID: "opt_6", Name: "Caesar Dressing", Price: 0},
					{ID: "opt_7", Name: "Ranch", Price: 10},
				},
			},
		},
		Reservations: []Reservation{
			{ID: "res_1", CustomerID: "usr_006", CustomerName: "Customer Chris", TableNumber: 3, ReservationTime: now.Add(2 * time.Hour), PartySize: 4, Status: ReservationConfirmed},
		},
		Tables:         seedTables(),
		Orders:         []Order{},
		Shifts:         []Shift{},
		ActivityLog:    []ActivityEntry{},
		StaffSchedules: []StaffSchedule{},
	}
}

func seedTables() []Table {
	tables := make([]Table, 12)
	for i := range tables {
		tables[i] = Table{ID: NewID("tbl"), Number: i + 1, Status: TableAvailable}
	}
	tables[2].Status = TableReserved
	return tables
}
