package domain

import "time"

// TicketType is a named, finite-quantity offering under an event.
// Sold counts are never stored on it; they are derived from registrations.
type TicketType struct {
	ID         string
	EventID    string
	Name       string
	Quantity   int
	SaleStart  *time.Time
	SaleEnd    *time.Time
	Currency   string
	PriceCents int
	CreatedAt  time.Time
}

// Inventory is a point-in-time snapshot derived from the registration count.
type Inventory struct {
	Quantity  int
	SoldCount int
	Available int
	OnSale    bool
}
