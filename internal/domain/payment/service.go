package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/estora/estora-api/internal/domain/market"
	"github.com/estora/estora-api/internal/domain/reservation"
	"github.com/estora/estora-api/internal/domain/user"
	"github.com/estora/estora-api/internal/pkg/paystack"
)

// Provider is the hosted-checkout client the service charges through
type Provider interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResponse, error)
}

// ReservationGateway moves reservations through their payment states
type ReservationGateway interface {
	BeginPayment(ctx context.Context, guestID, id uuid.UUID) (*reservation.Reservation, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID, reference string, paidAmount int64, paidCurrency string) (*reservation.Reservation, error)
}

// MarketGateway prices and settles share purchases
type MarketGateway interface {
	QuotePurchase(ctx context.Context, buyerID, orderID uuid.UUID, quantity int64) (*market.Order, int64, error)
	Settle(ctx context.Context, orderID, buyerID uuid.UUID, quantity int64, reference string) (*market.Fill, error)
}

// UserStore is the subset of the user repository the service needs
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Notifier fans settlement events out to the parties involved
type Notifier interface {
	ReservationConfirmed(ctx context.Context, guestID, reservationID uuid.UUID)
	OrderFilled(ctx context.Context, buyerID, sellerID, orderID uuid.UUID, quantity int64)
}

// Service handles payment business logic
type Service struct {
	repo         Repository
	provider     Provider
	reservations ReservationGateway
	mkt          MarketGateway
	users        UserStore
	notifier     Notifier
	secretKey    string
}

// NewService creates payment service
func NewService(repo Repository, provider Provider, reservations ReservationGateway, mkt MarketGateway, users UserStore, notifier Notifier, secretKey string) *Service {
	return &Service{
		repo:         repo,
		provider:     provider,
		reservations: reservations,
		mkt:          mkt,
		users:        users,
		notifier:     notifier,
		secretKey:    secretKey,
	}
}

// InitializeReservation opens a checkout session for a reservation's
// quoted total. The server-side quote is the only amount charged.
func (s *Service) InitializeReservation(ctx context.Context, userID, reservationID uuid.UUID) (*Payment, string, error) {
	res, err := s.reservations.BeginPayment(ctx, userID, reservationID)
	if err != nil {
		return nil, "", err
	}

	return s.initialize(ctx, userID, PurposeReservation, res.ID, 0, res.TotalAmount, res.Currency)
}

// InitializeSharePurchase opens a checkout session for taking quantity
// shares from one sell order.
func (s *Service) InitializeSharePurchase(ctx context.Context, userID, orderID uuid.UUID, quantity int64) (*Payment, string, error) {
	order, cost, err := s.mkt.QuotePurchase(ctx, userID, orderID, quantity)
	if err != nil {
		return nil, "", err
	}

	return s.initialize(ctx, userID, PurposeSharePurchase, order.ID, quantity, cost, order.Currency)
}

func (s *Service) initialize(ctx context.Context, userID uuid.UUID, purpose Purpose, targetID uuid.UUID, quantity, amount int64, currency string) (*Payment, string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", user.ErrNotFound
	}

	now := time.Now().UTC()
	p := &Payment{
		ID:        uuid.New(),
		UserID:    userID,
		Purpose:   purpose,
		Reference: fmt.Sprintf("est_%s", uuid.New()),
		TargetID:  targetID,
		Quantity:  quantity,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	session, err := s.provider.Initialize(ctx, paystack.InitializeRequest{
		Email:     u.Email,
		Amount:    amount,
		Currency:  currency,
		Reference: p.Reference,
		Metadata: map[string]string{
			"purpose":   string(purpose),
			"target_id": targetID.String(),
		},
	})
	if err != nil {
		return nil, "", err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, "", err
	}
	return p, session.AuthorizationURL, nil
}

// Verify checks the charge with the provider and runs the settlement.
// Safe to call any number of times for the same reference.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, reference string) (*Payment, error) {
	p, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.UserID != userID {
		return nil, ErrNotPayer
	}
	if p.IsSettled() {
		return p, nil
	}

	vr, err := s.provider.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	switch vr.Status {
	case "success":
		return s.complete(ctx, p, vr.Amount, vr.Currency)
	case "abandoned":
		if err := s.repo.UpdateStatus(ctx, p.ID, StatusAbandoned); err != nil {
			return nil, err
		}
		p.Status = StatusAbandoned
		return p, nil
	default:
		if err := s.repo.UpdateStatus(ctx, p.ID, StatusFailed); err != nil {
			return nil, err
		}
		p.Status = StatusFailed
		return p, ErrProviderDeclined
	}
}

// HandleWebhook settles a charge event from the provider. The raw body
// signature must check out before anything is trusted.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	event, err := paystack.ParseWebhook(s.secretKey, body, signature)
	if err != nil {
		return ErrBadSignature
	}
	if !event.IsChargeSuccess() {
		return nil
	}

	p, err := s.repo.GetByReference(ctx, event.Data.Reference)
	if err != nil {
		return err
	}
	if p == nil || p.IsSettled() {
		// Unknown references are ignored rather than retried forever
		return nil
	}

	_, err = s.complete(ctx, p, event.Data.Amount, event.Data.Currency)
	return err
}

// GetByReference returns the caller's payment
func (s *Service) GetByReference(ctx context.Context, userID uuid.UUID, reference string) (*Payment, error) {
	p, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.UserID != userID {
		return nil, ErrNotPayer
	}
	return p, nil
}

// ListMine returns the caller's payments
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// complete runs the purpose-specific settlement after a confirmed
// charge. The charged amount must equal the stored amount exactly.
func (s *Service) complete(ctx context.Context, p *Payment, paidAmount int64, paidCurrency string) (*Payment, error) {
	if paidCurrency != p.Currency {
		s.markFailed(ctx, p.ID)
		return nil, ErrCurrencyMismatch
	}
	if paidAmount != p.Amount {
		s.markFailed(ctx, p.ID)
		return nil, ErrAmountMismatch
	}

	if err := s.repo.UpdateStatus(ctx, p.ID, StatusPaid); err != nil {
		return nil, err
	}
	p.Status = StatusPaid

	switch p.Purpose {
	case PurposeReservation:
		res, err := s.reservations.ConfirmPayment(ctx, p.TargetID, p.Reference, paidAmount, paidCurrency)
		if err != nil {
			// The hold can expire or be cancelled between checkout and
			// charge. The money was taken for nothing, flag the payment
			// for refund instead of leaving it stuck in paid.
			if errors.Is(err, reservation.ErrNotPayable) {
				s.markFailed(ctx, p.ID)
			}
			return nil, err
		}
		if s.notifier != nil {
			s.notifier.ReservationConfirmed(ctx, res.GuestID, res.ID)
		}
	case PurposeSharePurchase:
		fill, err := s.mkt.Settle(ctx, p.TargetID, p.UserID, p.Quantity, p.Reference)
		if err != nil {
			return nil, err
		}
		if s.notifier != nil {
			s.notifier.OrderFilled(ctx, fill.BuyerID, fill.SellerID, fill.OrderID, fill.Quantity)
		}
	}

	if _, err := s.repo.MarkCompleted(ctx, p.ID); err != nil {
		return nil, err
	}
	p.Status = StatusCompleted
	return p, nil
}

func (s *Service) markFailed(ctx context.Context, id uuid.UUID) {
	if err := s.repo.UpdateStatus(ctx, id, StatusFailed); err != nil {
		log.Error().Err(err).Str("payment_id", id.String()).Msg("Failed to mark payment failed")
	}
}
