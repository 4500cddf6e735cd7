package reservation

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents reservation lifecycle state
type Status string

const (
	StatusPending         Status = "pending"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusConfirmed       Status = "confirmed"
	StatusActive          Status = "active"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusExpired         Status = "expired"
)

// BlockingStatuses are the states whose date ranges exclude other bookings
var BlockingStatuses = []Status{StatusPending, StatusAwaitingPayment, StatusConfirmed, StatusActive}

// IsBlocking reports whether a reservation in this status occupies its dates
func (s Status) IsBlocking() bool {
	for _, b := range BlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// DateRange is a stay interval at date granularity, From < To.
// From is check-in day, To is check-out day.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Nights returns the number of nights in the range
func (d DateRange) Nights() int64 {
	return int64(d.To.Sub(d.From).Hours() / 24)
}

// Normalize truncates both bounds to UTC midnight
func (d DateRange) Normalize() DateRange {
	return DateRange{From: truncateToDay(d.From), To: truncateToDay(d.To)}
}

func truncateToDay(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// GuestCount holds the party composition
type GuestCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// LineItem is one row of a price breakdown, amount in minor units
type LineItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// PriceBreakdown is the itemized cost of a stay. Recomputed from inputs,
// persisted alongside the reservation it was quoted for.
type PriceBreakdown struct {
	Items       []LineItem `json:"items"`
	TotalAmount int64      `json:"total_amount"`
	Currency    string     `json:"currency"`
}

// Reservation represents a persisted booking
type Reservation struct {
	ID         uuid.UUID `db:"id"`
	PropertyID uuid.UUID `db:"property_id"`
	GuestID    uuid.UUID `db:"guest_id"`

	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`

	Adults   int `db:"adults"`
	Children int `db:"children"`
	Infants  int `db:"infants"`

	Status Status `db:"status"`

	TotalAmount int64           `db:"total_amount"`
	Currency    string          `db:"currency"`
	Breakdown   json.RawMessage `db:"breakdown"`

	PaymentRef sql.NullString `db:"payment_ref"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Range returns the occupied interval
func (r *Reservation) Range() DateRange {
	return DateRange{From: r.StartDate, To: r.EndDate}
}

// SetBreakdown encodes the breakdown for persistence
func (r *Reservation) SetBreakdown(b *PriceBreakdown) {
	r.Breakdown, _ = json.Marshal(b)
}

// GetBreakdown decodes the persisted breakdown
func (r *Reservation) GetBreakdown() *PriceBreakdown {
	if r.Breakdown == nil {
		return nil
	}
	var b PriceBreakdown
	if err := json.Unmarshal(r.Breakdown, &b); err != nil {
		return nil
	}
	return &b
}
