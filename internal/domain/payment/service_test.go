package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/market"
	"github.com/estora/estora-api/internal/domain/reservation"
	"github.com/estora/estora-api/internal/domain/user"
	"github.com/estora/estora-api/internal/pkg/paystack"
)

const testSecret = "sk_test_secret"

type stubRepo struct {
	byRef map[string]*Payment
}

func newStubRepo() *stubRepo {
	return &stubRepo{byRef: make(map[string]*Payment)}
}

func (s *stubRepo) Create(_ context.Context, p *Payment) error {
	s.byRef[p.Reference] = p
	return nil
}

func (s *stubRepo) GetByReference(_ context.Context, ref string) (*Payment, error) {
	return s.byRef[ref], nil
}

func (s *stubRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*Payment, error) {
	var out []*Payment
	for _, p := range s.byRef {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	for _, p := range s.byRef {
		if p.ID == id {
			p.Status = status
		}
	}
	return nil
}

func (s *stubRepo) MarkCompleted(_ context.Context, id uuid.UUID) (bool, error) {
	for _, p := range s.byRef {
		if p.ID == id {
			if p.Status == StatusCompleted {
				return false, nil
			}
			p.Status = StatusCompleted
			return true, nil
		}
	}
	return false, nil
}

type stubProvider struct {
	verifyStatus   string
	verifyAmount   int64
	verifyCurrency string
	initCalls      int
}

func (s *stubProvider) Initialize(_ context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	s.initCalls++
	return &paystack.InitializeResponse{
		AuthorizationURL: "https://checkout.test/" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (s *stubProvider) Verify(_ context.Context, reference string) (*paystack.VerifyResponse, error) {
	return &paystack.VerifyResponse{
		Status:    s.verifyStatus,
		Reference: reference,
		Amount:    s.verifyAmount,
		Currency:  s.verifyCurrency,
	}, nil
}

type stubReservations struct {
	res       *reservation.Reservation
	confirmed []string
}

func (s *stubReservations) BeginPayment(_ context.Context, guestID, id uuid.UUID) (*reservation.Reservation, error) {
	if s.res == nil || s.res.ID != id {
		return nil, reservation.ErrNotFound
	}
	if s.res.GuestID != guestID {
		return nil, reservation.ErrNotParticipant
	}
	s.res.Status = reservation.StatusAwaitingPayment
	return s.res, nil
}

func (s *stubReservations) ConfirmPayment(_ context.Context, id uuid.UUID, reference string, paidAmount int64, paidCurrency string) (*reservation.Reservation, error) {
	if s.res == nil || s.res.ID != id {
		return nil, reservation.ErrNotFound
	}
	switch s.res.Status {
	case reservation.StatusPending, reservation.StatusAwaitingPayment:
	default:
		return nil, reservation.ErrNotPayable
	}
	if paidCurrency != s.res.Currency {
		return nil, reservation.ErrCurrencyMismatch
	}
	if paidAmount != s.res.TotalAmount {
		return nil, reservation.ErrAmountMismatch
	}
	s.res.Status = reservation.StatusConfirmed
	s.confirmed = append(s.confirmed, reference)
	return s.res, nil
}

type stubMarket struct {
	order   *market.Order
	settled []string
}

func (s *stubMarket) QuotePurchase(_ context.Context, buyerID, orderID uuid.UUID, quantity int64) (*market.Order, int64, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, 0, market.ErrOrderNotFound
	}
	if s.order.UserID == buyerID {
		return nil, 0, market.ErrSelfTrade
	}
	return s.order, s.order.Price * quantity, nil
}

func (s *stubMarket) Settle(_ context.Context, orderID, buyerID uuid.UUID, quantity int64, reference string) (*market.Fill, error) {
	s.settled = append(s.settled, reference)
	return &market.Fill{
		ID:        uuid.New(),
		OrderID:   orderID,
		BuyerID:   buyerID,
		SellerID:  s.order.UserID,
		Quantity:  quantity,
		Price:     s.order.Price,
		Currency:  s.order.Currency,
		Reference: reference,
	}, nil
}

type stubUsers struct {
	users map[uuid.UUID]*user.User
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return s.users[id], nil
}

type stubNotifier struct {
	reservations int
	fills        int
}

func (s *stubNotifier) ReservationConfirmed(_ context.Context, _, _ uuid.UUID) {
	s.reservations++
}

func (s *stubNotifier) OrderFilled(_ context.Context, _, _, _ uuid.UUID, _ int64) {
	s.fills++
}

type fixture struct {
	svc          *Service
	repo         *stubRepo
	provider     *stubProvider
	reservations *stubReservations
	mkt          *stubMarket
	notifier     *stubNotifier
	guestID      uuid.UUID
	buyerID      uuid.UUID
}

func newFixture() *fixture {
	guestID := uuid.New()
	buyerID := uuid.New()

	res := &reservation.Reservation{
		ID:          uuid.New(),
		PropertyID:  uuid.New(),
		GuestID:     guestID,
		Status:      reservation.StatusPending,
		TotalAmount: 18150,
		Currency:    "NGN",
	}
	order := &market.Order{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Side:      market.SideSell,
		Price:     1000,
		Currency:  "NGN",
		Quantity:  10,
		Remaining: 10,
		Status:    market.OrderOpen,
	}

	repo := newStubRepo()
	provider := &stubProvider{}
	reservations := &stubReservations{res: res}
	mkt := &stubMarket{order: order}
	users := &stubUsers{users: map[uuid.UUID]*user.User{
		guestID: {ID: guestID, Email: "guest@example.com"},
		buyerID: {ID: buyerID, Email: "buyer@example.com"},
	}}
	notifier := &stubNotifier{}

	return &fixture{
		svc:          NewService(repo, provider, reservations, mkt, users, notifier, testSecret),
		repo:         repo,
		provider:     provider,
		reservations: reservations,
		mkt:          mkt,
		notifier:     notifier,
		guestID:      guestID,
		buyerID:      buyerID,
	}
}

func TestInitializeReservation(t *testing.T) {
	f := newFixture()

	p, authURL, err := f.svc.InitializeReservation(context.Background(), f.guestID, f.reservations.res.ID)
	if err != nil {
		t.Fatalf("InitializeReservation: %v", err)
	}

	if p.Amount != 18150 || p.Currency != "NGN" {
		t.Errorf("expected quoted amount 18150 NGN, got %d %s", p.Amount, p.Currency)
	}
	if p.Status != StatusPending {
		t.Errorf("expected pending payment, got %s", p.Status)
	}
	if authURL == "" {
		t.Errorf("expected an authorization url")
	}
	if f.reservations.res.Status != reservation.StatusAwaitingPayment {
		t.Errorf("expected reservation moved to awaiting_payment")
	}

	if _, _, err := f.svc.InitializeReservation(context.Background(), uuid.New(), f.reservations.res.ID); !errors.Is(err, reservation.ErrNotParticipant) {
		t.Errorf("stranger: expected ErrNotParticipant, got %v", err)
	}
}

func TestVerifySuccessConfirmsReservation(t *testing.T) {
	f := newFixture()

	p, _, err := f.svc.InitializeReservation(context.Background(), f.guestID, f.reservations.res.ID)
	if err != nil {
		t.Fatalf("InitializeReservation: %v", err)
	}

	f.provider.verifyStatus = "success"
	f.provider.verifyAmount = p.Amount
	f.provider.verifyCurrency = p.Currency

	verified, err := f.svc.Verify(context.Background(), f.guestID, p.Reference)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.Status != StatusCompleted {
		t.Errorf("expected completed payment, got %s", verified.Status)
	}
	if f.reservations.res.Status != reservation.StatusConfirmed {
		t.Errorf("expected confirmed reservation")
	}
	if f.notifier.reservations != 1 {
		t.Errorf("expected one reservation notification, got %d", f.notifier.reservations)
	}

	// A second verify is a read, not a second settlement
	again, err := f.svc.Verify(context.Background(), f.guestID, p.Reference)
	if err != nil {
		t.Fatalf("replay Verify: %v", err)
	}
	if again.Status != StatusCompleted || len(f.reservations.confirmed) != 1 {
		t.Errorf("replay re-ran the settlement")
	}
}

func TestVerifyAmountMismatchFailsLoudly(t *testing.T) {
	f := newFixture()

	p, _, err := f.svc.InitializeReservation(context.Background(), f.guestID, f.reservations.res.ID)
	if err != nil {
		t.Fatalf("InitializeReservation: %v", err)
	}

	f.provider.verifyStatus = "success"
	f.provider.verifyAmount = p.Amount - 1
	f.provider.verifyCurrency = p.Currency

	if _, err := f.svc.Verify(context.Background(), f.guestID, p.Reference); !errors.Is(err, ErrAmountMismatch) {
		t.Errorf("expected ErrAmountMismatch, got %v", err)
	}
	if f.repo.byRef[p.Reference].Status != StatusFailed {
		t.Errorf("expected failed payment")
	}
	if len(f.reservations.confirmed) != 0 {
		t.Errorf("mismatched charge must not confirm the reservation")
	}
}

func TestVerifyAfterHoldExpired(t *testing.T) {
	f := newFixture()

	p, _, err := f.svc.InitializeReservation(context.Background(), f.guestID, f.reservations.res.ID)
	if err != nil {
		t.Fatalf("InitializeReservation: %v", err)
	}

	// The hold got swept between checkout and the charge landing.
	f.reservations.res.Status = reservation.StatusExpired
	f.provider.verifyStatus = "success"
	f.provider.verifyAmount = p.Amount
	f.provider.verifyCurrency = p.Currency

	if _, err := f.svc.Verify(context.Background(), f.guestID, p.Reference); !errors.Is(err, reservation.ErrNotPayable) {
		t.Errorf("expected ErrNotPayable, got %v", err)
	}
	if f.repo.byRef[p.Reference].Status != StatusFailed {
		t.Errorf("late charge must flag the payment for refund, got %s", f.repo.byRef[p.Reference].Status)
	}
	if len(f.reservations.confirmed) != 0 {
		t.Errorf("expired hold must not be confirmed")
	}
	if f.notifier.reservations != 0 {
		t.Errorf("no confirmation notification for a failed settlement")
	}
}

func TestVerifyDeclined(t *testing.T) {
	f := newFixture()

	p, _, err := f.svc.InitializeReservation(context.Background(), f.guestID, f.reservations.res.ID)
	if err != nil {
		t.Fatalf("InitializeReservation: %v", err)
	}

	f.provider.verifyStatus = "failed"
	if _, err := f.svc.Verify(context.Background(), f.guestID, p.Reference); !errors.Is(err, ErrProviderDeclined) {
		t.Errorf("expected ErrProviderDeclined, got %v", err)
	}

	f.provider.verifyStatus = "abandoned"
	f.repo.byRef[p.Reference].Status = StatusPending
	abandoned, err := f.svc.Verify(context.Background(), f.guestID, p.Reference)
	if err != nil {
		t.Fatalf("Verify abandoned: %v", err)
	}
	if abandoned.Status != StatusAbandoned {
		t.Errorf("expected abandoned payment, got %s", abandoned.Status)
	}
}

func TestSharePurchaseFlow(t *testing.T) {
	f := newFixture()

	p, _, err := f.svc.InitializeSharePurchase(context.Background(), f.buyerID, f.mkt.order.ID, 4)
	if err != nil {
		t.Fatalf("InitializeSharePurchase: %v", err)
	}
	if p.Amount != 4000 {
		t.Errorf("expected amount 4000, got %d", p.Amount)
	}

	f.provider.verifyStatus = "success"
	f.provider.verifyAmount = 4000
	f.provider.verifyCurrency = "NGN"

	verified, err := f.svc.Verify(context.Background(), f.buyerID, p.Reference)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.Status != StatusCompleted {
		t.Errorf("expected completed payment, got %s", verified.Status)
	}
	if len(f.mkt.settled) != 1 || f.mkt.settled[0] != p.Reference {
		t.Errorf("expected one settlement with the payment reference")
	}
	if f.notifier.fills != 1 {
		t.Errorf("expected one fill notification, got %d", f.notifier.fills)
	}

	if _, _, err := f.svc.InitializeSharePurchase(context.Background(), f.mkt.order.UserID, f.mkt.order.ID, 1); !errors.Is(err, market.ErrSelfTrade) {
		t.Errorf("own order: expected ErrSelfTrade, got %v", err)
	}
}

func TestWebhookSettles(t *testing.T) {
	f := newFixture()

	p, _, err := f.svc.InitializeReservation(context.Background(), f.guestID, f.reservations.res.ID)
	if err != nil {
		t.Fatalf("InitializeReservation: %v", err)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"event": "charge.success",
		"data": map[string]interface{}{
			"reference": p.Reference,
			"status":    "success",
			"amount":    p.Amount,
			"currency":  p.Currency,
		},
	})
	signature := paystack.ComputeSignature(testSecret, body)

	if err := f.svc.HandleWebhook(context.Background(), body, signature); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if f.repo.byRef[p.Reference].Status != StatusCompleted {
		t.Errorf("expected completed payment after webhook")
	}

	// Replay is harmless
	if err := f.svc.HandleWebhook(context.Background(), body, signature); err != nil {
		t.Fatalf("replay HandleWebhook: %v", err)
	}
	if len(f.reservations.confirmed) != 1 {
		t.Errorf("webhook replay re-ran the settlement")
	}
}

func TestWebhookBadSignature(t *testing.T) {
	f := newFixture()

	body := []byte(`{"event":"charge.success","data":{"reference":"x","status":"success"}}`)
	if err := f.svc.HandleWebhook(context.Background(), body, "deadbeef"); !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}

	// Unknown but validly signed references are dropped
	signature := paystack.ComputeSignature(testSecret, body)
	if err := f.svc.HandleWebhook(context.Background(), body, signature); err != nil {
		t.Errorf("unknown reference should be ignored, got %v", err)
	}
}
