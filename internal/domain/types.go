package domain

import "time"

type Role string

const (
	RoleAdmin           Role = "Admin"
	RoleCashier         Role = "Cashier"
	RoleServer          Role = "Server"
	RoleKitchen         Role = "Kitchen"
	RoleDeliveryPartner Role = "Delivery Partner"
	RoleCustomer        Role = "Customer"
)

type UserStatus string

const (
	UserOnline  UserStatus = "Online"
	UserOffline UserStatus = "Offline"
)

type LoyaltyTier string

const (
	TierNone   LoyaltyTier = "None"
	TierBronze LoyaltyTier = "Bronze"
	TierSilver LoyaltyTier = "Silver"
	TierGold   LoyaltyTier = "Gold"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Reward struct {
	ID          string      `json:"id"`
	Tier        LoyaltyTier `json:"tier"`
	Description string      `json:"description"`
	IsClaimed   bool        `json:"isClaimed"`
}

// User covers staff and customers alike; role distinguishes them.
// PasswordHash survives persistence but is blanked before any snapshot
// or user leaves the process.
type User struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	PasswordHash  string      `json:"passwordHash,omitempty"`
	Role          Role        `json:"role"`
	AvatarURL     string      `json:"avatarUrl,omitempty"`
	Status        UserStatus  `json:"status"`
	LastLogin     time.Time   `json:"lastLogin"`
	Location      *Location   `json:"location,omitempty"`
	LoyaltyPoints *int        `json:"loyaltyPoints,omitempty"`
	LoyaltyTier   LoyaltyTier `json:"loyaltyTier,omitempty"`
	Rewards       []Reward    `json:"rewards,omitempty"`
	Address       string      `json:"address,omitempty"`
	PhoneNumber   string      `json:"phoneNumber,omitempty"`
	HourlyRate    float64     `json:"hourlyRate,omitempty"`
}

type IngredientUnit string

const (
	UnitKilogram IngredientUnit = "kg"
	UnitGram     IngredientUnit = "g"
	UnitLitre    IngredientUnit = "litre"
	UnitMillilit IngredientUnit = "ml"
	UnitPiece    IngredientUnit = "piece"
)

type Ingredient struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Unit  IngredientUnit `json:"unit"`
	Stock float64        `json:"stock"`
	Cost  float64        `json:"cost"`
}

type RecipeItem struct {
	IngredientID string  `json:"ingredientId"`
	Quantity     float64 `json:"quantity"`
}

type ModifierOption struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ModifierGroup struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	SelectionType string           `json:"selectionType"`
	Options       []ModifierOption `json:"options"`
}

type MenuItem struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Category         string       `json:"category"`
	Description      string       `json:"description,omitempty"`
	Price            float64      `json:"price"`
	Stock            int          `json:"stock"`
	ImageURL         string       `json:"imageUrl,omitempty"`
	ModifierGroupIDs []string     `json:"modifierGroupIds,omitempty"`
	Recipe           []RecipeItem `json:"recipe,omitempty"`
	PrepTimeMinutes  int          `json:"prepTime"`
}

type OrderStatus string

const (
	OrderPending            OrderStatus = "Pending"
	OrderAwaitingAcceptance OrderStatus = "Awaiting Acceptance"
	OrderPreparing          OrderStatus = "Preparing"
	OrderReady              OrderStatus = "Ready"
	OrderOutForDelivery     OrderStatus = "Out for Delivery"
	OrderDelivered          OrderStatus = "Delivered"
	OrderCancelled          OrderStatus = "Cancelled"
)

// Terminal reports whether no further transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type OrderType string

const (
	OrderDineIn   OrderType = "Dine-in"
	OrderTakeout  OrderType = "Takeout"
	OrderDelivery OrderType = "Delivery"
)

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "Paid"
	PaymentUnpaid PaymentStatus = "Unpaid"
)

type PaymentMethod string

const (
	PayOnline PaymentMethod = "Online"
	PayCash   PaymentMethod = "Cash"
	PayCard   PaymentMethod = "Card"
)

type SelectedModifier struct {
	GroupID  string  `json:"groupId"`
	OptionID string  `json:"optionId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

type OrderItem struct {
	MenuItemID        string             `json:"menuItemId"`
	Quantity          int                `json:"quantity"`
	Name              string             `json:"name"`
	SelectedModifiers []SelectedModifier `json:"selectedModifiers,omitempty"`
}

type Order struct {
	ID                string        `json:"id"`
	CustomerName      string        `json:"customerName"`
	CustomerID        string        `json:"customerId,omitempty"`
	Items             []OrderItem   `json:"items"`
	Total             float64       `json:"total"`
	Status            OrderStatus   `json:"status"`
	Type              OrderType     `json:"type"`
	CreatedAt         time.Time     `json:"createdAt"`
	DeliveryPartnerID string        `json:"deliveryPartnerId,omitempty"`
	CustomerLocation  *Location     `json:"customerLocation,omitempty"`
	TableNumber       int           `json:"tableNumber,omitempty"`
	Rating            int           `json:"rating,omitempty"`
	Feedback          string        `json:"feedback,omitempty"`
	Address           string        `json:"address,omitempty"`
	PhoneNumber       string        `json:"phoneNumber,omitempty"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	PaymentMethod     PaymentMethod `json:"paymentMethod,omitempty"`
}

type TableStatus string

const (
	TableAvailable     TableStatus = "Available"
	TableOccupied      TableStatus = "Occupied"
	TableReserved      TableStatus = "Reserved"
	TableNeedsCleaning TableStatus = "Needs Cleaning"
)

type Table struct {
	ID      string      `json:"id"`
	Number  int         `json:"number"`
	Status  TableStatus `json:"status"`
	OrderID string      `json:"orderId,omitempty"`
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "Pending"
	ReservationConfirmed ReservationStatus = "Confirmed"
	ReservationCancelled ReservationStatus = "Cancelled"
	ReservationCompleted ReservationStatus = "Completed"
)

type Reservation struct {
	ID              string            `json:"id"`
	CustomerID      string            `json:"customerId"`
	CustomerName    string            `json:"customerName"`
	TableNumber     int               `json:"tableNumber"`
	ReservationTime time.Time         `json:"reservationTime"`
	PartySize       int               `json:"partySize"`
	Status          ReservationStatus `json:"status"`
}

// Shift is one cash-drawer session. A nil EndTime marks it open; at
// most one open shift may exist per staff member.
type Shift struct {
	ID         string     `json:"id"`
	CashierID  string     `json:"cashierId"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	StartFloat float64    `json:"startFloat"`
	EndFloat   *float64   `json:"endFloat,omitempty"`
}

// StaffSchedule is a planned slot, independent of actual Shift records.
type StaffSchedule struct {
	ID      string    `json:"id"`
	StaffID string    `json:"staffId"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

type ActivityActor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type ActivityEntry struct {
	ID        string        `json:"id"`
	Actor     ActivityActor `json:"actor"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}
