package kyc

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DocumentType represents an accepted identity document
type DocumentType string

const (
	DocPassport       DocumentType = "passport"
	DocNationalID     DocumentType = "national_id"
	DocDriversLicense DocumentType = "drivers_license"
	DocUtilityBill    DocumentType = "utility_bill"
)

// Status represents verification lifecycle state
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Verification is one submitted identity check
type Verification struct {
	ID           uuid.UUID      `db:"id"`
	UserID       uuid.UUID      `db:"user_id"`
	DocumentType DocumentType   `db:"document_type"`
	DocumentKey  string         `db:"document_key"`
	Status       Status         `db:"status"`
	Reason       sql.NullString `db:"reason"`
	ReviewedBy   uuid.NullUUID  `db:"reviewed_by"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// IsTerminal reports whether the verification has been decided
func (v *Verification) IsTerminal() bool {
	return v.Status == StatusApproved || v.Status == StatusRejected
}
