package payment

import (
	"time"

	"github.com/google/uuid"
)

// Purpose represents what a payment settles
type Purpose string

const (
	PurposeReservation   Purpose = "reservation"
	PurposeSharePurchase Purpose = "share_purchase"
)

// Status represents payment lifecycle state. Paid means the provider
// confirmed the charge; completed means the purpose-specific settlement
// ran too.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusAbandoned Status = "abandoned"
)

// Payment is one charge attempt against the provider
type Payment struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Purpose   Purpose   `db:"purpose"`
	Reference string    `db:"reference"`

	// TargetID points at the reservation or the sell order being paid for
	TargetID uuid.UUID `db:"target_id"`
	// Quantity is the share count for purchases, zero for reservations
	Quantity int64 `db:"quantity"`

	Amount   int64  `db:"amount"`
	Currency string `db:"currency"`
	Status   Status `db:"status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsSettled reports whether the settlement already ran
func (p *Payment) IsSettled() bool {
	return p.Status == StatusCompleted
}
