package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
)

// availabilityHorizonDays caps how far ahead blocked dates are reported
const availabilityHorizonDays = 365

// PropertyStore is the subset of the property repository the service needs
type PropertyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// Notifier tells the guest about reservation state changes. May be nil.
type Notifier interface {
	ReservationCancelled(ctx context.Context, guestID, reservationID uuid.UUID)
}

// Service handles reservation business logic
type Service struct {
	repo       Repository
	properties PropertyStore
	notifier   Notifier
	feeBps     int64
	now        func() time.Time
}

// NewService creates reservation service
func NewService(repo Repository, properties PropertyStore, notifier Notifier, feeBps int64) *Service {
	return &Service{
		repo:       repo,
		properties: properties,
		notifier:   notifier,
		feeBps:     feeBps,
		now:        time.Now,
	}
}

// Availability returns the blocked days for a property's date picker
func (s *Service) Availability(ctx context.Context, propertyID uuid.UUID) ([]time.Time, error) {
	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, property.ErrNotFound
	}

	today := truncateToDay(s.now())
	booked, err := s.repo.ListBookedRanges(ctx, propertyID, today)
	if err != nil {
		return nil, err
	}
	return BlockedDates(booked, today, availabilityHorizonDays), nil
}

// GetQuote prices a prospective stay without reserving it
func (s *Service) GetQuote(ctx context.Context, propertyID uuid.UUID, stay DateRange) (*PriceBreakdown, error) {
	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, property.ErrNotFound
	}
	return Quote(prop.Pricing(), stay, s.feeBps)
}

// Create places a hold on the dates and quotes the price server-side.
// The quote is recomputed here, never taken from the client.
func (s *Service) Create(ctx context.Context, guestID, propertyID uuid.UUID, stay DateRange, guests GuestCount) (*Reservation, error) {
	if guests.Adults < 1 {
		return nil, ErrInvalidGuests
	}

	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, property.ErrNotFound
	}
	if !prop.IsBookable() {
		return nil, ErrPropertyInactive
	}

	stay = stay.Normalize()
	today := truncateToDay(s.now())

	booked, err := s.repo.ListBookedRanges(ctx, propertyID, today)
	if err != nil {
		return nil, err
	}
	if err := CheckAvailability(stay, booked, today); err != nil {
		return nil, err
	}

	breakdown, err := Quote(prop.Pricing(), stay, s.feeBps)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	res := &Reservation{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		GuestID:     guestID,
		StartDate:   stay.From,
		EndDate:     stay.To,
		Adults:      guests.Adults,
		Children:    guests.Children,
		Infants:     guests.Infants,
		Status:      StatusPending,
		TotalAmount: breakdown.TotalAmount,
		Currency:    breakdown.Currency,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	res.SetBreakdown(breakdown)

	// The insert re-checks overlap under a per-property lock, so a
	// concurrent create for the same dates still fails here.
	if err := s.repo.CreateWithOverlapCheck(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Get returns a reservation visible to the requesting user
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(ctx, userID, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListForGuest returns the user's own reservations
func (s *Service) ListForGuest(ctx context.Context, guestID uuid.UUID) ([]*Reservation, error) {
	return s.repo.ListByGuest(ctx, guestID)
}

// ListForProperty returns a property's reservations to its owner
func (s *Service) ListForProperty(ctx context.Context, ownerID, propertyID uuid.UUID) ([]*Reservation, error) {
	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, property.ErrNotFound
	}
	if prop.OwnerID != ownerID {
		return nil, ErrNotParticipant
	}
	return s.repo.ListByProperty(ctx, propertyID)
}

// BeginPayment moves the guest's reservation into awaiting_payment so
// the hold survives until the checkout outcome lands.
func (s *Service) BeginPayment(ctx context.Context, guestID, id uuid.UUID) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}
	if res.GuestID != guestID {
		return nil, ErrNotParticipant
	}

	switch res.Status {
	case StatusAwaitingPayment:
		return res, nil
	case StatusPending:
	default:
		return nil, ErrNotPayable
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusAwaitingPayment); err != nil {
		return nil, err
	}
	res.Status = StatusAwaitingPayment
	return res, nil
}

// Cancel releases the dates held by a reservation. Either participant
// may cancel while the stay has not started.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(ctx, userID, res); err != nil {
		return nil, err
	}

	switch res.Status {
	case StatusPending, StatusAwaitingPayment, StatusConfirmed:
	default:
		return nil, ErrNotCancellable
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	res.Status = StatusCancelled

	if s.notifier != nil {
		s.notifier.ReservationCancelled(ctx, res.GuestID, res.ID)
	}

	return res, nil
}

// ConfirmPayment settles a reservation against a verified payment. The
// paid amount and currency must match the quote exactly; the update is
// idempotent per provider reference.
func (s *Service) ConfirmPayment(ctx context.Context, id uuid.UUID, reference string, paidAmount int64, paidCurrency string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}

	if res.Status == StatusConfirmed && res.PaymentRef.Valid && res.PaymentRef.String == reference {
		return res, nil
	}

	// A charge can land after the hold expired or was cancelled. Never
	// report success then: the dates may already belong to someone else.
	switch res.Status {
	case StatusPending, StatusAwaitingPayment:
	default:
		return nil, ErrNotPayable
	}

	if res.Currency != paidCurrency {
		return nil, ErrCurrencyMismatch
	}
	if res.TotalAmount != paidAmount {
		return nil, ErrAmountMismatch
	}

	won, err := s.repo.ConfirmByPaymentRef(ctx, id, reference)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if confirmed == nil {
		return nil, ErrNotFound
	}
	if !won {
		// Lost a race since the read above. A concurrent replay of the
		// same reference is fine, anything else is not payable anymore.
		if confirmed.Status == StatusConfirmed && confirmed.PaymentRef.Valid && confirmed.PaymentRef.String == reference {
			return confirmed, nil
		}
		return nil, ErrNotPayable
	}
	return confirmed, nil
}

// ExpireStale releases holds older than ttl that never reached payment
func (s *Service) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	return s.repo.ExpireStale(ctx, s.now().Add(-ttl))
}

func (s *Service) authorize(ctx context.Context, userID uuid.UUID, res *Reservation) error {
	if res.GuestID == userID {
		return nil
	}
	prop, err := s.properties.GetByID(ctx, res.PropertyID)
	if err != nil {
		return err
	}
	if prop != nil && prop.OwnerID == userID {
		return nil
	}
	return ErrNotParticipant
}
