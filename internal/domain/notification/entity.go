package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type labels what a notification is about
type Type string

const (
	TypeReservationConfirmed Type = "reservation_confirmed"
	TypeReservationCancelled Type = "reservation_cancelled"
	TypeKYCApproved          Type = "kyc_approved"
	TypeKYCRejected          Type = "kyc_rejected"
	TypePollOpened           Type = "poll_opened"
	TypeOrderFilled          Type = "order_filled"
)

// Notification is one persisted message to a user
type Notification struct {
	ID        uuid.UUID     `db:"id"`
	UserID    uuid.UUID     `db:"user_id"`
	Type      Type          `db:"type"`
	Title     string        `db:"title"`
	Body      string        `db:"body"`
	EntityID  uuid.NullUUID `db:"entity_id"`
	Read      bool          `db:"read"`
	CreatedAt time.Time     `db:"created_at"`
}
