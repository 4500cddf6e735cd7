package payment

import "time"

// InitializeReservationRequest opens checkout for a reservation
type InitializeReservationRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid"`
}

// InitializePurchaseRequest opens checkout for a share purchase
type InitializePurchaseRequest struct {
	OrderID  string `json:"order_id" validate:"required,uuid"`
	Quantity int64  `json:"quantity" validate:"required,min=1"`
}

// InitializeResponse carries the hosted-checkout redirect
type InitializeResponse struct {
	Payment          *Response `json:"payment"`
	AuthorizationURL string    `json:"authorization_url"`
}

// Response is the API shape of a payment
type Response struct {
	ID        string    `json:"id"`
	Purpose   Purpose   `json:"purpose"`
	Reference string    `json:"reference"`
	TargetID  string    `json:"target_id"`
	Quantity  int64     `json:"quantity,omitempty"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts entity to API response
func ToResponse(p *Payment) *Response {
	return &Response{
		ID:        p.ID.String(),
		Purpose:   p.Purpose,
		Reference: p.Reference,
		TargetID:  p.TargetID.String(),
		Quantity:  p.Quantity,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}
