package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleInvestor Role = "investor"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

// User represents a user account
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	FullName     sql.NullString `db:"full_name"`

	// Custodial ledger account assigned on first token association
	HederaAccountID sql.NullString `db:"hedera_account_id"`

	LastLoginAt sql.NullTime `db:"last_login_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsInvestor returns true if user is an investor
func (u *User) IsInvestor() bool {
	return u.Role == RoleInvestor
}

// IsOwner returns true if user is a property owner
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanListProperty returns true if user can create listings
func (u *User) CanListProperty() bool {
	return u.IsOwner() || u.IsAdmin()
}

// IsValidRole reports whether a role is accepted at registration.
// Admins are seeded out of band.
func IsValidRole(role string) bool {
	return role == string(RoleInvestor) || role == string(RoleOwner)
}
