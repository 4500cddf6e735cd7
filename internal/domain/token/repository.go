package token

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines token data access
type Repository interface {
	CreateToken(ctx context.Context, t *PropertyToken, issuance *Transfer) error
	GetTokenByProperty(ctx context.Context, propertyID uuid.UUID) (*PropertyToken, error)
	GetHolding(ctx context.Context, userID, propertyID uuid.UUID) (*Holding, error)
	ListHoldingsByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error)
	GetTransferByReference(ctx context.Context, reference string) (*Transfer, error)
	SetLedgerTx(ctx context.Context, transferID uuid.UUID, ledgerTxID string) error
	RecordTransfer(ctx context.Context, t *Transfer) error
	ListTransfersByUser(ctx context.Context, userID uuid.UUID) ([]*Transfer, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates token repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateToken persists the token row, seeds the owner's holding with
// the full supply and journals the issuance, all in one transaction.
func (r *repository) CreateToken(ctx context.Context, t *PropertyToken, issuance *Transfer) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO property_tokens (id, property_id, ledger_token_id, symbol, total_supply, treasury_account, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.PropertyID, t.LedgerTokenID, t.Symbol, t.TotalSupply, t.TreasuryAccount, t.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO token_holdings (user_id, property_id, quantity, locked, updated_at)
		VALUES ($1, $2, $3, 0, NOW())
		ON CONFLICT (user_id, property_id)
		DO UPDATE SET quantity = token_holdings.quantity + $3, updated_at = NOW()
	`, issuance.ToUserID, t.PropertyID, t.TotalSupply); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO token_transfers (id, property_id, from_user_id, to_user_id, quantity, reference, ledger_tx_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, issuance.ID, issuance.PropertyID, issuance.FromUserID, issuance.ToUserID,
		issuance.Quantity, issuance.Reference, issuance.LedgerTxID, issuance.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetTokenByProperty(ctx context.Context, propertyID uuid.UUID) (*PropertyToken, error) {
	var t PropertyToken
	err := r.db.GetContext(ctx, &t, `SELECT * FROM property_tokens WHERE property_id = $1`, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) GetHolding(ctx context.Context, userID, propertyID uuid.UUID) (*Holding, error) {
	var h Holding
	err := r.db.GetContext(ctx, &h, `
		SELECT * FROM token_holdings WHERE user_id = $1 AND property_id = $2
	`, userID, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (r *repository) ListHoldingsByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error) {
	var list []*Holding
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM token_holdings WHERE user_id = $1 AND quantity > 0 ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) GetTransferByReference(ctx context.Context, reference string) (*Transfer, error) {
	var t Transfer
	err := r.db.GetContext(ctx, &t, `SELECT * FROM token_transfers WHERE reference = $1`, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) SetLedgerTx(ctx context.Context, transferID uuid.UUID, ledgerTxID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE token_transfers SET ledger_tx_id = $2 WHERE id = $1
	`, transferID, ledgerTxID)
	return err
}

// RecordTransfer journals a share move. The unique reference makes the
// insert a no-op on replay.
func (r *repository) RecordTransfer(ctx context.Context, t *Transfer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO token_transfers (id, property_id, from_user_id, to_user_id, quantity, reference, ledger_tx_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (reference) DO NOTHING
	`, t.ID, t.PropertyID, t.FromUserID, t.ToUserID, t.Quantity, t.Reference, t.LedgerTxID, t.CreatedAt)
	return err
}

func (r *repository) ListTransfersByUser(ctx context.Context, userID uuid.UUID) ([]*Transfer, error) {
	var list []*Transfer
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM token_transfers
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return list, nil
}
