package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines reservation data access
type Repository interface {
	CreateWithOverlapCheck(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetByPaymentRef(ctx context.Context, ref string) (*Reservation, error)
	ListBookedRanges(ctx context.Context, propertyID uuid.UUID, from time.Time) ([]DateRange, error)
	ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*Reservation, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	ConfirmByPaymentRef(ctx context.Context, id uuid.UUID, ref string) (bool, error)
	ExpireStale(ctx context.Context, olderThan time.Time) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates reservation repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateWithOverlapCheck inserts a reservation inside a transaction that
// serializes writers per property. The advisory lock closes the race
// between reading booked dates and inserting; the overlap re-check runs
// under the lock against blocking statuses only.
func (r *repository) CreateWithOverlapCheck(ctx context.Context, res *Reservation) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, res.PropertyID.String()); err != nil {
		return err
	}

	var conflicts int
	err = tx.GetContext(ctx, &conflicts, `
		SELECT COUNT(*)
		FROM reservations
		WHERE property_id = $1
		  AND status IN ('pending', 'awaiting_payment', 'confirmed', 'active')
		  AND start_date <= $3
		  AND end_date >= $2
	`, res.PropertyID, res.StartDate, res.EndDate)
	if err != nil {
		return err
	}
	if conflicts > 0 {
		return ErrDatesConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reservations (
			id, property_id, guest_id, start_date, end_date,
			adults, children, infants, status,
			total_amount, currency, breakdown, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		res.ID, res.PropertyID, res.GuestID, res.StartDate, res.EndDate,
		res.Adults, res.Children, res.Infants, res.Status,
		res.TotalAmount, res.Currency, res.Breakdown, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	query := `SELECT * FROM reservations WHERE id = $1`
	var res Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *repository) GetByPaymentRef(ctx context.Context, ref string) (*Reservation, error) {
	query := `SELECT * FROM reservations WHERE payment_ref = $1`
	var res Reservation
	err := r.db.GetContext(ctx, &res, query, ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *repository) ListBookedRanges(ctx context.Context, propertyID uuid.UUID, from time.Time) ([]DateRange, error) {
	rows := []struct {
		StartDate time.Time `db:"start_date"`
		EndDate   time.Time `db:"end_date"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT start_date, end_date
		FROM reservations
		WHERE property_id = $1
		  AND status IN ('pending', 'awaiting_payment', 'confirmed', 'active')
		  AND end_date >= $2
		ORDER BY start_date
	`, propertyID, from)
	if err != nil {
		return nil, err
	}

	ranges := make([]DateRange, len(rows))
	for i, row := range rows {
		ranges[i] = DateRange{From: row.StartDate, To: row.EndDate}
	}
	return ranges, nil
}

func (r *repository) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*Reservation, error) {
	query := `SELECT * FROM reservations WHERE guest_id = $1 ORDER BY created_at DESC`
	var list []*Reservation
	if err := r.db.SelectContext(ctx, &list, query, guestID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Reservation, error) {
	query := `SELECT * FROM reservations WHERE property_id = $1 ORDER BY start_date DESC`
	var list []*Reservation
	if err := r.db.SelectContext(ctx, &list, query, propertyID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.db.ExecContext(ctx, `UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

// ConfirmByPaymentRef confirms a reservation once for a given provider
// reference. Returns false when no payable row matched, which callers
// must treat as a failed confirmation, not a success: the hold may have
// expired or been cancelled since the charge was initiated.
func (r *repository) ConfirmByPaymentRef(ctx context.Context, id uuid.UUID, ref string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET
			status = 'confirmed', payment_ref = $2, updated_at = NOW()
		WHERE id = $1
		  AND status IN ('pending', 'awaiting_payment')
		  AND (payment_ref IS NULL OR payment_ref = $2)
	`, id, ref)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExpireStale releases dates held by abandoned reservations
func (r *repository) ExpireStale(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations SET status = 'expired', updated_at = NOW()
		WHERE status IN ('pending', 'awaiting_payment')
		  AND created_at < $1
	`, olderThan)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
