package market

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines market data access
type Repository interface {
	PlaceBuy(ctx context.Context, order *Order) error
	PlaceSell(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOpenByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	Cancel(ctx context.Context, orderID, userID uuid.UUID) error
	GetFillByReference(ctx context.Context, reference string) (*Fill, error)
	Settle(ctx context.Context, orderID, buyerID uuid.UUID, quantity int64, reference string) (*Fill, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates market repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const insertOrder = `
	INSERT INTO market_orders (
		id, property_id, user_id, side, price, currency,
		quantity, remaining, status, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func (r *repository) PlaceBuy(ctx context.Context, order *Order) error {
	_, err := r.db.ExecContext(ctx, insertOrder,
		order.ID, order.PropertyID, order.UserID, order.Side, order.Price, order.Currency,
		order.Quantity, order.Remaining, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	return err
}

// PlaceSell locks the seller's shares for the lifetime of the order.
// The lock and the insert commit together so listed shares can never
// be sold twice.
func (r *repository) PlaceSell(ctx context.Context, order *Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE token_holdings SET locked = locked + $3, updated_at = NOW()
		WHERE user_id = $1 AND property_id = $2
		  AND quantity - locked >= $3
	`, order.UserID, order.PropertyID, order.Quantity)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrInsufficientShares
	}

	if _, err := tx.ExecContext(ctx, insertOrder,
		order.ID, order.PropertyID, order.UserID, order.Side, order.Price, order.Currency,
		order.Quantity, order.Remaining, order.Status, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.GetContext(ctx, &order, `SELECT * FROM market_orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOpenByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Order, error) {
	var orders []*Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM market_orders
		WHERE property_id = $1 AND status IN ('open', 'partial')
		ORDER BY created_at
	`, propertyID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	var orders []*Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM market_orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Cancel closes an order and, for sells, releases the locked remainder
func (r *repository) Cancel(ctx context.Context, orderID, userID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var order Order
	err = tx.GetContext(ctx, &order, `SELECT * FROM market_orders WHERE id = $1 FOR UPDATE`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	if order.UserID != userID {
		return ErrNotOrderOwner
	}
	if !order.IsOpen() {
		return ErrOrderClosed
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE market_orders SET status = 'cancelled', updated_at = NOW() WHERE id = $1
	`, orderID); err != nil {
		return err
	}

	if order.Side == SideSell && order.Remaining > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE token_holdings SET locked = locked - $3, updated_at = NOW()
			WHERE user_id = $1 AND property_id = $2
		`, order.UserID, order.PropertyID, order.Remaining); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetFillByReference(ctx context.Context, reference string) (*Fill, error) {
	var fill Fill
	err := r.db.GetContext(ctx, &fill, `SELECT * FROM market_fills WHERE reference = $1`, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &fill, nil
}

// Settle moves shares from the seller to the buyer against an open sell
// order. Everything commits together: the order remainder, both holdings
// and the fill journal row. The reference makes replays no-ops.
func (r *repository) Settle(ctx context.Context, orderID, buyerID uuid.UUID, quantity int64, reference string) (*Fill, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing Fill
	err = tx.GetContext(ctx, &existing, `SELECT * FROM market_fills WHERE reference = $1`, reference)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var order Order
	err = tx.GetContext(ctx, &order, `SELECT * FROM market_orders WHERE id = $1 FOR UPDATE`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Side != SideSell || !order.IsOpen() {
		return nil, ErrOrderClosed
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > order.Remaining {
		return nil, ErrQuantityExceedsOrder
	}

	// Seller side: shares leave both quantity and the listing lock
	result, err := tx.ExecContext(ctx, `
		UPDATE token_holdings SET
			quantity = quantity - $3,
			locked = locked - $3,
			updated_at = NOW()
		WHERE user_id = $1 AND property_id = $2 AND locked >= $3
	`, order.UserID, order.PropertyID, quantity)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrInsufficientShares
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO token_holdings (user_id, property_id, quantity, locked, updated_at)
		VALUES ($1, $2, $3, 0, NOW())
		ON CONFLICT (user_id, property_id)
		DO UPDATE SET quantity = token_holdings.quantity + $3, updated_at = NOW()
	`, buyerID, order.PropertyID, quantity); err != nil {
		return nil, err
	}

	newRemaining := order.Remaining - quantity
	newStatus := OrderPartial
	if newRemaining == 0 {
		newStatus = OrderFilled
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE market_orders SET remaining = $2, status = $3, updated_at = NOW() WHERE id = $1
	`, orderID, newRemaining, newStatus); err != nil {
		return nil, err
	}

	fill := &Fill{
		ID:         uuid.New(),
		OrderID:    orderID,
		PropertyID: order.PropertyID,
		BuyerID:    buyerID,
		SellerID:   order.UserID,
		Quantity:   quantity,
		Price:      order.Price,
		Currency:   order.Currency,
		Reference:  reference,
	}
	err = tx.GetContext(ctx, &fill.CreatedAt, `
		INSERT INTO market_fills (id, order_id, property_id, buyer_id, seller_id, quantity, price, currency, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`, fill.ID, fill.OrderID, fill.PropertyID, fill.BuyerID, fill.SellerID, fill.Quantity, fill.Price, fill.Currency, fill.Reference)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return fill, nil
}
