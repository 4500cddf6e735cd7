package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines property data access
type Repository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	Update(ctx context.Context, p *Property) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	SetToken(ctx context.Context, id uuid.UUID, symbol string, totalShares, sharePrice int64) error
	AddPhotoKey(ctx context.Context, id uuid.UUID, key string) error
	List(ctx context.Context, filter ListFilter) ([]*Property, int, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Property, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates property repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Property) error {
	query := `
		INSERT INTO properties (
			id, owner_id, title, description, city, address, type, status,
			price_amount, currency, deposit, service_charge, pricing_period,
			photo_keys, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.OwnerID, p.Title, p.Description, p.City, p.Address, p.Type, p.Status,
		p.PriceAmount, p.Currency, p.Deposit, p.ServiceCharge, p.PricingPeriod,
		p.PhotoKeys, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	query := `SELECT * FROM properties WHERE id = $1`
	var p Property
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Property) error {
	query := `
		UPDATE properties SET
			title = $2, description = $3, city = $4, address = $5,
			price_amount = $6, deposit = $7, service_charge = $8, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.City, p.Address,
		p.PriceAmount, p.Deposit, p.ServiceCharge,
	)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.db.ExecContext(ctx, `UPDATE properties SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repository) SetToken(ctx context.Context, id uuid.UUID, symbol string, totalShares, sharePrice int64) error {
	query := `
		UPDATE properties SET
			token_symbol = $2, total_shares = $3, share_price = $4, updated_at = NOW()
		WHERE id = $1 AND token_symbol IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, symbol, totalShares, sharePrice)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyTokenized
	}
	return nil
}

func (r *repository) AddPhotoKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE properties SET photo_keys = array_append(photo_keys, $2), updated_at = NOW() WHERE id = $1`,
		id, key,
	)
	return err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Property, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filter.City != "" {
		where = append(where, fmt.Sprintf("city ILIKE $%d", idx))
		args = append(args, filter.City)
		idx++
	}
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("type = $%d", idx))
		args = append(args, filter.Type)
		idx++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	} else {
		where = append(where, "status = 'active'")
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM properties WHERE ` + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM properties
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, idx, idx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	var props []*Property
	if err := r.db.SelectContext(ctx, &props, query, args...); err != nil {
		return nil, 0, err
	}
	return props, total, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Property, error) {
	query := `SELECT * FROM properties WHERE owner_id = $1 ORDER BY created_at DESC`
	var props []*Property
	if err := r.db.SelectContext(ctx, &props, query, ownerID); err != nil {
		return nil, err
	}
	return props, nil
}
