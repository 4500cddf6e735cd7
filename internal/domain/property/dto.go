package property

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /properties
type CreateRequest struct {
	Title         string `json:"title" validate:"required,min=3,max=200"`
	Description   string `json:"description" validate:"max=5000"`
	City          string `json:"city" validate:"required,min=2,max=100"`
	Address       string `json:"address" validate:"required,min=3,max=300"`
	Type          string `json:"type" validate:"required,property_type"`
	PriceAmount   int64  `json:"price_amount" validate:"required,gt=0"`
	Currency      string `json:"currency" validate:"required,currency"`
	Deposit       *int64 `json:"deposit" validate:"omitempty,gte=0"`
	ServiceCharge *int64 `json:"service_charge" validate:"omitempty,gte=0"`
	PricingPeriod string `json:"pricing_period" validate:"omitempty,oneof=night month"`
}

// UpdateRequest for PATCH /properties/{id}
type UpdateRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	City          *string `json:"city" validate:"omitempty,min=2,max=100"`
	Address       *string `json:"address" validate:"omitempty,min=3,max=300"`
	PriceAmount   *int64  `json:"price_amount" validate:"omitempty,gt=0"`
	Deposit       *int64  `json:"deposit" validate:"omitempty,gte=0"`
	ServiceCharge *int64  `json:"service_charge" validate:"omitempty,gte=0"`
}

// StatusRequest for PATCH /properties/{id}/status
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft active paused sold"`
}

// ListFilter carries list query parameters
type ListFilter struct {
	City   string
	Type   string
	Status string
	Page   int
	Limit  int
}

// Response represents a property in API responses
type Response struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	City          string    `json:"city"`
	Address       string    `json:"address"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	PriceAmount   int64     `json:"price_amount"`
	Currency      string    `json:"currency"`
	Deposit       *int64    `json:"deposit,omitempty"`
	ServiceCharge *int64    `json:"service_charge,omitempty"`
	PricingPeriod string    `json:"pricing_period"`
	TokenSymbol   string    `json:"token_symbol,omitempty"`
	TotalShares   *int64    `json:"total_shares,omitempty"`
	SharePrice    *int64    `json:"share_price,omitempty"`
	PhotoURLs     []string  `json:"photo_urls,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ResponseFromEntity converts an entity to a response
func ResponseFromEntity(p *Property, photoURLs []string) *Response {
	resp := &Response{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Title:         p.Title,
		Description:   p.Description,
		City:          p.City,
		Address:       p.Address,
		Type:          string(p.Type),
		Status:        string(p.Status),
		PriceAmount:   p.PriceAmount,
		Currency:      p.Currency,
		PricingPeriod: string(p.PricingPeriod),
		PhotoURLs:     photoURLs,
		CreatedAt:     p.CreatedAt,
	}
	if p.Deposit.Valid {
		resp.Deposit = &p.Deposit.Int64
	}
	if p.ServiceCharge.Valid {
		resp.ServiceCharge = &p.ServiceCharge.Int64
	}
	if p.TokenSymbol.Valid {
		resp.TokenSymbol = p.TokenSymbol.String
	}
	if p.TotalShares.Valid {
		resp.TotalShares = &p.TotalShares.Int64
	}
	if p.SharePrice.Valid {
		resp.SharePrice = &p.SharePrice.Int64
	}
	return resp
}
