package market

import (
	"time"

	"github.com/google/uuid"
)

// Side represents order direction
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderStatus represents order lifecycle state
type OrderStatus string

const (
	OrderOpen      OrderStatus = "open"
	OrderPartial   OrderStatus = "partial"
	OrderFilled    OrderStatus = "filled"
	OrderCancelled OrderStatus = "cancelled"
)

// Order represents a resting order in a property's share book.
// Price is per share in minor units.
type Order struct {
	ID         uuid.UUID   `db:"id"`
	PropertyID uuid.UUID   `db:"property_id"`
	UserID     uuid.UUID   `db:"user_id"`
	Side       Side        `db:"side"`
	Price      int64       `db:"price"`
	Currency   string      `db:"currency"`
	Quantity   int64       `db:"quantity"`
	Remaining  int64       `db:"remaining"`
	Status     OrderStatus `db:"status"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

// IsOpen reports whether the order can still trade
func (o *Order) IsOpen() bool {
	return o.Status == OrderOpen || o.Status == OrderPartial
}

// Fill is one settled trade against a sell order
type Fill struct {
	ID         uuid.UUID `db:"id"`
	OrderID    uuid.UUID `db:"order_id"`
	PropertyID uuid.UUID `db:"property_id"`
	BuyerID    uuid.UUID `db:"buyer_id"`
	SellerID   uuid.UUID `db:"seller_id"`
	Quantity   int64     `db:"quantity"`
	Price      int64     `db:"price"`
	Currency   string    `db:"currency"`
	Reference  string    `db:"reference"`
	CreatedAt  time.Time `db:"created_at"`
}

// Cost returns the fill's total in minor units
func (f *Fill) Cost() int64 {
	return f.Price * f.Quantity
}
