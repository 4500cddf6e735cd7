package market

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
)

// PropertyStore is the subset of the property repository the service needs
type PropertyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// Ledger mirrors settled fills onto the external token ledger. Both
// sides of the call are idempotent on the reference.
type Ledger interface {
	TransferShares(ctx context.Context, propertyID, fromUserID, toUserID uuid.UUID, quantity int64, reference string) error
}

// Service handles marketplace business logic
type Service struct {
	repo       Repository
	properties PropertyStore
	ledger     Ledger
}

// NewService creates market service
func NewService(repo Repository, properties PropertyStore, ledger Ledger) *Service {
	return &Service{repo: repo, properties: properties, ledger: ledger}
}

// Depth returns the rendered order book for a property's shares
func (s *Service) Depth(ctx context.Context, propertyID uuid.UUID) (*DepthTable, error) {
	prop, err := s.tradable(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.ListOpenByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return BuildDepth(orders, prop.Currency), nil
}

// Estimate projects a market order against the current book
func (s *Service) Estimate(ctx context.Context, propertyID uuid.UUID, side Side, quantity int64) (*Estimate, error) {
	prop, err := s.tradable(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.ListOpenByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return EstimateMarketOrder(side, quantity, orders, prop.Currency)
}

// Place rests a limit order on the book. Sellers must hold enough
// unlocked shares; the shares stay locked while the order is open.
func (s *Service) Place(ctx context.Context, userID, propertyID uuid.UUID, side Side, price, quantity int64) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	prop, err := s.tradable(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &Order{
		ID:         uuid.New(),
		PropertyID: propertyID,
		UserID:     userID,
		Side:       side,
		Price:      price,
		Currency:   prop.Currency,
		Quantity:   quantity,
		Remaining:  quantity,
		Status:     OrderOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if side == SideSell {
		err = s.repo.PlaceSell(ctx, order)
	} else {
		err = s.repo.PlaceBuy(ctx, order)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel closes the caller's order and releases any locked shares
func (s *Service) Cancel(ctx context.Context, userID, orderID uuid.UUID) error {
	return s.repo.Cancel(ctx, orderID, userID)
}

// GetOrder returns a single order
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListMine returns the caller's orders
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// QuotePurchase prices taking quantity shares from one sell order.
// Used to size the payment before settlement.
func (s *Service) QuotePurchase(ctx context.Context, buyerID, orderID uuid.UUID, quantity int64) (*Order, int64, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, 0, err
	}
	if order == nil {
		return nil, 0, ErrOrderNotFound
	}
	if order.Side != SideSell || !order.IsOpen() {
		return nil, 0, ErrOrderClosed
	}
	if order.UserID == buyerID {
		return nil, 0, ErrSelfTrade
	}
	if quantity <= 0 {
		return nil, 0, ErrInvalidQuantity
	}
	if quantity > order.Remaining {
		return nil, 0, ErrQuantityExceedsOrder
	}
	return order, order.Price * quantity, nil
}

// GetFill looks up a settled trade by its payment reference. Only the
// two parties to the trade can read the receipt; everyone else gets a
// not-found so references stay unguessable.
func (s *Service) GetFill(ctx context.Context, userID uuid.UUID, reference string) (*Fill, error) {
	fill, err := s.repo.GetFillByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if fill == nil || (fill.BuyerID != userID && fill.SellerID != userID) {
		return nil, ErrFillNotFound
	}
	return fill, nil
}

// Settle fills a sell order after payment lands. The database move and
// the ledger transfer are both idempotent on the reference, so retries
// from either the webhook or the verify path converge.
func (s *Service) Settle(ctx context.Context, orderID, buyerID uuid.UUID, quantity int64, reference string) (*Fill, error) {
	fill, err := s.repo.Settle(ctx, orderID, buyerID, quantity, reference)
	if err != nil {
		return nil, err
	}

	if s.ledger != nil {
		if err := s.ledger.TransferShares(ctx, fill.PropertyID, fill.SellerID, fill.BuyerID, fill.Quantity, reference); err != nil {
			return nil, err
		}
	}
	return fill, nil
}

func (s *Service) tradable(ctx context.Context, propertyID uuid.UUID) (*property.Property, error) {
	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, property.ErrNotFound
	}
	if !prop.IsTokenized() {
		return nil, ErrNotTokenized
	}
	return prop, nil
}
