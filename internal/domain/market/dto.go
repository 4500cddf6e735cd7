package market

import "time"

// PlaceOrderRequest rests a limit order on a property's book
type PlaceOrderRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	Side       string `json:"side" validate:"required,order_side"`
	Price      int64  `json:"price" validate:"required,min=1"`
	Quantity   int64  `json:"quantity" validate:"required,min=1"`
}

// EstimateRequest projects a market order against the book
type EstimateRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	Side       string `json:"side" validate:"required,order_side"`
	Quantity   int64  `json:"quantity" validate:"required,min=1"`
}

// OrderResponse is the API shape of an order
type OrderResponse struct {
	ID         string      `json:"id"`
	PropertyID string      `json:"property_id"`
	Side       Side        `json:"side"`
	Price      int64       `json:"price"`
	Currency   string      `json:"currency"`
	Quantity   int64       `json:"quantity"`
	Remaining  int64       `json:"remaining"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// FillResponse is the API shape of a settled trade
type FillResponse struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	PropertyID string    `json:"property_id"`
	Quantity   int64     `json:"quantity"`
	Price      int64     `json:"price"`
	TotalCost  int64     `json:"total_cost"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToOrderResponse converts entity to API response
func ToOrderResponse(o *Order) *OrderResponse {
	return &OrderResponse{
		ID:         o.ID.String(),
		PropertyID: o.PropertyID.String(),
		Side:       o.Side,
		Price:      o.Price,
		Currency:   o.Currency,
		Quantity:   o.Quantity,
		Remaining:  o.Remaining,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	}
}

// ToFillResponse converts entity to API response
func ToFillResponse(f *Fill) *FillResponse {
	return &FillResponse{
		ID:         f.ID.String(),
		OrderID:    f.OrderID.String(),
		PropertyID: f.PropertyID.String(),
		Quantity:   f.Quantity,
		Price:      f.Price,
		TotalCost:  f.Cost(),
		Currency:   f.Currency,
		CreatedAt:  f.CreatedAt,
	}
}
