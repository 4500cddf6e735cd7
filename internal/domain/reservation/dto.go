package reservation

import "time"

// QuoteRequest asks for a price breakdown without creating anything
type QuoteRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	From       string `json:"from" validate:"required,datetime=2006-01-02"`
	To         string `json:"to" validate:"required,datetime=2006-01-02"`
}

// CreateRequest creates a reservation hold on a date range
type CreateRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	From       string `json:"from" validate:"required,datetime=2006-01-02"`
	To         string `json:"to" validate:"required,datetime=2006-01-02"`
	Adults     int    `json:"adults" validate:"required,min=1,max=16"`
	Children   int    `json:"children" validate:"min=0,max=16"`
	Infants    int    `json:"infants" validate:"min=0,max=16"`
}

// AvailabilityResponse lists the days a date picker should disable
type AvailabilityResponse struct {
	PropertyID   string   `json:"property_id"`
	BlockedDates []string `json:"blocked_dates"`
}

// LineItemResponse is one row of the quoted breakdown
type LineItemResponse struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// QuoteResponse is the itemized price of a prospective stay
type QuoteResponse struct {
	PropertyID  string             `json:"property_id"`
	From        string             `json:"from"`
	To          string             `json:"to"`
	Nights      int64              `json:"nights"`
	Items       []LineItemResponse `json:"items"`
	TotalAmount int64              `json:"total_amount"`
	Currency    string             `json:"currency"`
}

// Response is the API shape of a reservation
type Response struct {
	ID          string             `json:"id"`
	PropertyID  string             `json:"property_id"`
	GuestID     string             `json:"guest_id"`
	From        string             `json:"from"`
	To          string             `json:"to"`
	Adults      int                `json:"adults"`
	Children    int                `json:"children"`
	Infants     int                `json:"infants"`
	Status      Status             `json:"status"`
	Items       []LineItemResponse `json:"items,omitempty"`
	TotalAmount int64              `json:"total_amount"`
	Currency    string             `json:"currency"`
	CreatedAt   time.Time          `json:"created_at"`
}

const dateLayout = "2006-01-02"

// ToResponse converts entity to API response
func ToResponse(r *Reservation) *Response {
	resp := &Response{
		ID:          r.ID.String(),
		PropertyID:  r.PropertyID.String(),
		GuestID:     r.GuestID.String(),
		From:        r.StartDate.Format(dateLayout),
		To:          r.EndDate.Format(dateLayout),
		Adults:      r.Adults,
		Children:    r.Children,
		Infants:     r.Infants,
		Status:      r.Status,
		TotalAmount: r.TotalAmount,
		Currency:    r.Currency,
		CreatedAt:   r.CreatedAt,
	}
	if b := r.GetBreakdown(); b != nil {
		for _, item := range b.Items {
			resp.Items = append(resp.Items, LineItemResponse{Description: item.Description, Amount: item.Amount})
		}
	}
	return resp
}

// ToResponseList converts entities to API responses
func ToResponseList(list []*Reservation) []*Response {
	out := make([]*Response, len(list))
	for i, r := range list {
		out[i] = ToResponse(r)
	}
	return out
}
