package token

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PropertyToken is the ledger token backing a property's shares.
// Decimals are always zero: one unit is one share.
type PropertyToken struct {
	ID              uuid.UUID `db:"id"`
	PropertyID      uuid.UUID `db:"property_id"`
	LedgerTokenID   string    `db:"ledger_token_id"`
	Symbol          string    `db:"symbol"`
	TotalSupply     int64     `db:"total_supply"`
	TreasuryAccount string    `db:"treasury_account"`
	CreatedAt       time.Time `db:"created_at"`
}

// Holding is one user's share position in one property.
// Locked shares are listed on the market and cannot be sold again.
type Holding struct {
	UserID     uuid.UUID `db:"user_id"`
	PropertyID uuid.UUID `db:"property_id"`
	Quantity   int64     `db:"quantity"`
	Locked     int64     `db:"locked"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Available returns the shares free to list or transfer
func (h *Holding) Available() int64 {
	return h.Quantity - h.Locked
}

// Transfer is one journal entry of shares moving between users.
// FromUserID is null for the initial issuance to the owner.
type Transfer struct {
	ID         uuid.UUID      `db:"id"`
	PropertyID uuid.UUID      `db:"property_id"`
	FromUserID uuid.NullUUID  `db:"from_user_id"`
	ToUserID   uuid.UUID      `db:"to_user_id"`
	Quantity   int64          `db:"quantity"`
	Reference  string         `db:"reference"`
	LedgerTxID sql.NullString `db:"ledger_tx_id"`
	CreatedAt  time.Time      `db:"created_at"`
}
