package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
)

type stubPropertyStore struct {
	props map[uuid.UUID]*property.Property
}

func (s *stubPropertyStore) GetByID(_ context.Context, id uuid.UUID) (*property.Property, error) {
	return s.props[id], nil
}

type stubRepo struct {
	booked    []DateRange
	created   []*Reservation
	byID      map[uuid.UUID]*Reservation
	statuses  map[uuid.UUID]Status
	createErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byID:     make(map[uuid.UUID]*Reservation),
		statuses: make(map[uuid.UUID]Status),
	}
}

func (s *stubRepo) CreateWithOverlapCheck(_ context.Context, res *Reservation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, res)
	s.byID[res.ID] = res
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*Reservation, error) {
	return s.byID[id], nil
}

func (s *stubRepo) GetByPaymentRef(_ context.Context, ref string) (*Reservation, error) {
	for _, r := range s.byID {
		if r.PaymentRef.Valid && r.PaymentRef.String == ref {
			return r, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListBookedRanges(_ context.Context, _ uuid.UUID, _ time.Time) ([]DateRange, error) {
	return s.booked, nil
}

func (s *stubRepo) ListByGuest(_ context.Context, _ uuid.UUID) ([]*Reservation, error) {
	return s.created, nil
}

func (s *stubRepo) ListByProperty(_ context.Context, _ uuid.UUID) ([]*Reservation, error) {
	return s.created, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	s.statuses[id] = status
	if r, ok := s.byID[id]; ok {
		r.Status = status
	}
	return nil
}

// ConfirmByPaymentRef mirrors the SQL status guard: only payable rows
// with a matching or unset reference are confirmed.
func (s *stubRepo) ConfirmByPaymentRef(_ context.Context, id uuid.UUID, ref string) (bool, error) {
	r, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	switch r.Status {
	case StatusPending, StatusAwaitingPayment:
	default:
		return false, nil
	}
	if r.PaymentRef.Valid && r.PaymentRef.String != ref {
		return false, nil
	}
	r.Status = StatusConfirmed
	r.PaymentRef.Valid = true
	r.PaymentRef.String = ref
	return true, nil
}

func (s *stubRepo) ExpireStale(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func activeProperty(ownerID uuid.UUID) *property.Property {
	return &property.Property{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Status:        property.StatusActive,
		PriceAmount:   5000,
		Currency:      "NGN",
		PricingPeriod: property.PeriodNight,
	}
}

func newTestService(repo *stubRepo, props ...*property.Property) *Service {
	store := &stubPropertyStore{props: make(map[uuid.UUID]*property.Property)}
	for _, p := range props {
		store.props[p.ID] = p
	}
	svc := NewService(repo, store, nil, 100)
	svc.now = func() time.Time { return day(2026, 3, 1) }
	return svc
}

func TestServiceCreate(t *testing.T) {
	ownerID := uuid.New()
	prop := activeProperty(ownerID)
	repo := newStubRepo()
	svc := newTestService(repo, prop)

	guestID := uuid.New()
	stay := DateRange{From: day(2026, 3, 10), To: day(2026, 3, 13)}

	res, err := svc.Create(context.Background(), guestID, prop.ID, stay, GuestCount{Adults: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if res.Status != StatusPending {
		t.Errorf("expected pending status, got %s", res.Status)
	}
	// 3 x 5000 + 1% fee
	if res.TotalAmount != 15150 {
		t.Errorf("expected total 15150, got %d", res.TotalAmount)
	}
	if got := res.GetBreakdown(); got == nil || got.TotalAmount != res.TotalAmount {
		t.Errorf("persisted breakdown does not match total")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.created))
	}
}

func TestServiceCreateConflict(t *testing.T) {
	prop := activeProperty(uuid.New())
	repo := newStubRepo()
	repo.booked = []DateRange{{From: day(2026, 3, 11), To: day(2026, 3, 14)}}
	svc := newTestService(repo, prop)

	stay := DateRange{From: day(2026, 3, 10), To: day(2026, 3, 12)}
	_, err := svc.Create(context.Background(), uuid.New(), prop.ID, stay, GuestCount{Adults: 1})
	if !errors.Is(err, ErrDatesConflict) {
		t.Errorf("expected ErrDatesConflict, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Errorf("expected no insert on conflict")
	}
}

func TestServiceCreateRaceLostAtInsert(t *testing.T) {
	prop := activeProperty(uuid.New())
	repo := newStubRepo()
	repo.createErr = ErrDatesConflict
	svc := newTestService(repo, prop)

	stay := DateRange{From: day(2026, 3, 10), To: day(2026, 3, 12)}
	_, err := svc.Create(context.Background(), uuid.New(), prop.ID, stay, GuestCount{Adults: 1})
	if !errors.Is(err, ErrDatesConflict) {
		t.Errorf("expected ErrDatesConflict from insert, got %v", err)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	prop := activeProperty(uuid.New())
	paused := activeProperty(uuid.New())
	paused.Status = property.StatusPaused

	repo := newStubRepo()
	svc := newTestService(repo, prop, paused)
	stay := DateRange{From: day(2026, 3, 10), To: day(2026, 3, 12)}

	if _, err := svc.Create(context.Background(), uuid.New(), prop.ID, stay, GuestCount{Adults: 0, Children: 2}); !errors.Is(err, ErrInvalidGuests) {
		t.Errorf("no adults: expected ErrInvalidGuests, got %v", err)
	}
	if _, err := svc.Create(context.Background(), uuid.New(), paused.ID, stay, GuestCount{Adults: 1}); !errors.Is(err, ErrPropertyInactive) {
		t.Errorf("paused listing: expected ErrPropertyInactive, got %v", err)
	}
	if _, err := svc.Create(context.Background(), uuid.New(), uuid.New(), stay, GuestCount{Adults: 1}); !errors.Is(err, property.ErrNotFound) {
		t.Errorf("unknown property: expected property.ErrNotFound, got %v", err)
	}

	past := DateRange{From: day(2026, 2, 20), To: day(2026, 2, 22)}
	if _, err := svc.Create(context.Background(), uuid.New(), prop.ID, past, GuestCount{Adults: 1}); !errors.Is(err, ErrPastCheckIn) {
		t.Errorf("past check-in: expected ErrPastCheckIn, got %v", err)
	}
}

func TestServiceCancel(t *testing.T) {
	ownerID := uuid.New()
	prop := activeProperty(ownerID)
	repo := newStubRepo()
	svc := newTestService(repo, prop)

	guestID := uuid.New()
	stay := DateRange{From: day(2026, 3, 10), To: day(2026, 3, 13)}
	res, err := svc.Create(context.Background(), guestID, prop.ID, stay, GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), uuid.New(), res.ID); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("stranger: expected ErrNotParticipant, got %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), guestID, res.ID)
	if err != nil {
		t.Fatalf("Cancel by guest: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}

	if _, err := svc.Cancel(context.Background(), guestID, res.ID); !errors.Is(err, ErrNotCancellable) {
		t.Errorf("double cancel: expected ErrNotCancellable, got %v", err)
	}
}

func TestServiceCancelByOwner(t *testing.T) {
	ownerID := uuid.New()
	prop := activeProperty(ownerID)
	repo := newStubRepo()
	svc := newTestService(repo, prop)

	res, err := svc.Create(context.Background(), uuid.New(), prop.ID, DateRange{From: day(2026, 3, 10), To: day(2026, 3, 12)}, GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), ownerID, res.ID)
	if err != nil {
		t.Fatalf("Cancel by owner: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}
}

func TestServiceConfirmPayment(t *testing.T) {
	prop := activeProperty(uuid.New())
	repo := newStubRepo()
	svc := newTestService(repo, prop)

	res, err := svc.Create(context.Background(), uuid.New(), prop.ID, DateRange{From: day(2026, 3, 10), To: day(2026, 3, 13)}, GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.ConfirmPayment(context.Background(), res.ID, "ref-1", res.TotalAmount, "USD"); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("wrong currency: expected ErrCurrencyMismatch, got %v", err)
	}
	if _, err := svc.ConfirmPayment(context.Background(), res.ID, "ref-1", res.TotalAmount-1, "NGN"); !errors.Is(err, ErrAmountMismatch) {
		t.Errorf("wrong amount: expected ErrAmountMismatch, got %v", err)
	}

	confirmed, err := svc.ConfirmPayment(context.Background(), res.ID, "ref-1", res.TotalAmount, "NGN")
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Errorf("expected confirmed status, got %s", confirmed.Status)
	}

	// Replay with the same reference is a no-op
	again, err := svc.ConfirmPayment(context.Background(), res.ID, "ref-1", res.TotalAmount, "NGN")
	if err != nil {
		t.Fatalf("replay ConfirmPayment: %v", err)
	}
	if again.Status != StatusConfirmed {
		t.Errorf("expected confirmed status on replay, got %s", again.Status)
	}
}

func TestServiceConfirmPaymentAfterExpiry(t *testing.T) {
	prop := activeProperty(uuid.New())
	repo := newStubRepo()
	svc := newTestService(repo, prop)

	res, err := svc.Create(context.Background(), uuid.New(), prop.ID, DateRange{From: day(2026, 3, 10), To: day(2026, 3, 13)}, GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The worker swept the hold before the charge landed.
	if err := repo.UpdateStatus(context.Background(), res.ID, StatusExpired); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if _, err := svc.ConfirmPayment(context.Background(), res.ID, "ref-late", res.TotalAmount, "NGN"); !errors.Is(err, ErrNotPayable) {
		t.Errorf("confirm after expiry: expected ErrNotPayable, got %v", err)
	}
	got, _ := repo.GetByID(context.Background(), res.ID)
	if got.Status != StatusExpired {
		t.Errorf("expected reservation to stay expired, got %s", got.Status)
	}
}

func TestServiceConfirmPaymentAfterCancel(t *testing.T) {
	prop := activeProperty(uuid.New())
	repo := newStubRepo()
	svc := newTestService(repo, prop)

	guestID := uuid.New()
	res, err := svc.Create(context.Background(), guestID, prop.ID, DateRange{From: day(2026, 3, 10), To: day(2026, 3, 13)}, GuestCount{Adults: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), guestID, res.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := svc.ConfirmPayment(context.Background(), res.ID, "ref-late", res.TotalAmount, "NGN"); !errors.Is(err, ErrNotPayable) {
		t.Errorf("confirm after cancel: expected ErrNotPayable, got %v", err)
	}
	got, _ := repo.GetByID(context.Background(), res.ID)
	if got.Status != StatusCancelled {
		t.Errorf("expected reservation to stay cancelled, got %s", got.Status)
	}
}
