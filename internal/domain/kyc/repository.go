package kyc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines kyc data access
type Repository interface {
	Create(ctx context.Context, v *Verification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Verification, error)
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*Verification, error)
	ListPending(ctx context.Context, limit, offset int) ([]*Verification, int, error)
	Decide(ctx context.Context, id, reviewerID uuid.UUID, status Status, reason string) error
	HasApproved(ctx context.Context, userID uuid.UUID) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates kyc repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, v *Verification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kyc_verifications (id, user_id, document_type, document_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.UserID, v.DocumentType, v.DocumentKey, v.Status, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Verification, error) {
	var v Verification
	err := r.db.GetContext(ctx, &v, `SELECT * FROM kyc_verifications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*Verification, error) {
	var v Verification
	err := r.db.GetContext(ctx, &v, `
		SELECT * FROM kyc_verifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) ListPending(ctx context.Context, limit, offset int) ([]*Verification, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM kyc_verifications WHERE status = 'pending'
	`); err != nil {
		return nil, 0, err
	}

	var list []*Verification
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM kyc_verifications WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Decide settles a pending verification exactly once
func (r *repository) Decide(ctx context.Context, id, reviewerID uuid.UUID, status Status, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE kyc_verifications SET
			status = $2, reviewed_by = $3, reason = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, status, reviewerID, reason)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func (r *repository) HasApproved(ctx context.Context, userID uuid.UUID) (bool, error) {
	var approved bool
	err := r.db.GetContext(ctx, &approved, `
		SELECT EXISTS (
			SELECT 1 FROM kyc_verifications WHERE user_id = $1 AND status = 'approved'
		)
	`, userID)
	return approved, err
}
