package property

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/estora/estora-api/internal/pkg/money"
)

// Type represents property type
type Type string

const (
	TypeApartment  Type = "apartment"
	TypeHouse      Type = "house"
	TypeLand       Type = "land"
	TypeCommercial Type = "commercial"
)

// Status represents listing status
type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusSold   Status = "sold"
)

// PricingPeriod represents the billing unit of the nightly/monthly rate
type PricingPeriod string

const (
	PeriodNight PricingPeriod = "night"
	PeriodMonth PricingPeriod = "month"
)

// Property represents a listed property
type Property struct {
	ID          uuid.UUID `db:"id"`
	OwnerID     uuid.UUID `db:"owner_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	City        string    `db:"city"`
	Address     string    `db:"address"`
	Type        Type      `db:"type"`
	Status      Status    `db:"status"`

	// Pricing config, immutable input to reservation quoting.
	// All amounts are integer minor units.
	PriceAmount   int64          `db:"price_amount"`
	Currency      string         `db:"currency"`
	Deposit       sql.NullInt64  `db:"deposit"`
	ServiceCharge sql.NullInt64  `db:"service_charge"`
	PricingPeriod PricingPeriod  `db:"pricing_period"`

	// Tokenization
	TokenSymbol sql.NullString `db:"token_symbol"`
	TotalShares sql.NullInt64  `db:"total_shares"`
	SharePrice  sql.NullInt64  `db:"share_price"`

	PhotoKeys pq.StringArray `db:"photo_keys"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PricingConfig is the read-only pricing input handed to the reservation module
type PricingConfig struct {
	Amount        money.Amount
	Deposit       *money.Amount
	ServiceCharge *money.Amount
	Period        PricingPeriod
}

// Pricing extracts the pricing config from the listing
func (p *Property) Pricing() PricingConfig {
	cfg := PricingConfig{
		Amount: money.New(p.PriceAmount, p.Currency),
		Period: p.PricingPeriod,
	}
	if p.Deposit.Valid {
		d := money.New(p.Deposit.Int64, p.Currency)
		cfg.Deposit = &d
	}
	if p.ServiceCharge.Valid {
		s := money.New(p.ServiceCharge.Int64, p.Currency)
		cfg.ServiceCharge = &s
	}
	return cfg
}

// IsBookable reports whether reservations may be created against the listing
func (p *Property) IsBookable() bool {
	return p.Status == StatusActive
}

// IsTokenized reports whether a ledger token exists for the listing
func (p *Property) IsTokenized() bool {
	return p.TokenSymbol.Valid && p.TotalShares.Valid
}
