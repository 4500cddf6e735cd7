package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Pusher delivers a notification to live connections. Satisfied by Hub.
type Pusher interface {
	Push(userID uuid.UUID, payload any) error
}

// Service handles notification logic
type Service struct {
	repo   Repository
	pusher Pusher
}

// NewService creates notification service. pusher may be nil when
// realtime delivery is not wanted (worker processes).
func NewService(repo Repository, pusher Pusher) *Service {
	return &Service{repo: repo, pusher: pusher}
}

// Create persists a notification and pushes it to live connections
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, entityID uuid.UUID) (*Notification, error) {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Body:      body,
		EntityID:  uuid.NullUUID{UUID: entityID, Valid: entityID != uuid.Nil},
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		if err := s.pusher.Push(userID, n.ToResponse()); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("Realtime notification push failed")
		}
	}

	return n, nil
}

// List returns notifications for user with the total count
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UnreadCount returns unread count
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks a single notification as read
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every notification of the user as read
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// PruneRead removes read notifications older than the cutoff
func (s *Service) PruneRead(ctx context.Context, olderThan time.Time) (int, error) {
	return s.repo.PruneRead(ctx, olderThan)
}

// --- Helper methods for creating specific notifications ---
//
// Delivery is best-effort. A failed insert is logged and swallowed so
// notification outages never roll back the business action.

// ReservationConfirmed notifies the guest their stay is paid for
func (s *Service) ReservationConfirmed(ctx context.Context, guestID, reservationID uuid.UUID) {
	s.notify(ctx, guestID, TypeReservationConfirmed,
		"Reservation confirmed",
		"Your payment went through and your reservation is confirmed.",
		reservationID,
	)
}

// ReservationCancelled notifies the guest their reservation was cancelled
func (s *Service) ReservationCancelled(ctx context.Context, guestID, reservationID uuid.UUID) {
	s.notify(ctx, guestID, TypeReservationCancelled,
		"Reservation cancelled",
		"Your reservation has been cancelled.",
		reservationID,
	)
}

// OrderFilled notifies both sides of a settled share trade
func (s *Service) OrderFilled(ctx context.Context, buyerID, sellerID, orderID uuid.UUID, quantity int64) {
	s.notify(ctx, buyerID, TypeOrderFilled,
		"Shares purchased",
		fmt.Sprintf("Your purchase of %d shares has settled.", quantity),
		orderID,
	)
	s.notify(ctx, sellerID, TypeOrderFilled,
		"Shares sold",
		fmt.Sprintf("%d of your listed shares have been sold.", quantity),
		orderID,
	)
}

// KYCApproved notifies the user their identity check passed
func (s *Service) KYCApproved(ctx context.Context, userID, verificationID uuid.UUID) {
	s.notify(ctx, userID, TypeKYCApproved,
		"Identity verified",
		"Your identity document was approved. Trading is now unlocked.",
		verificationID,
	)
}

// KYCRejected notifies the user their identity check failed
func (s *Service) KYCRejected(ctx context.Context, userID, verificationID uuid.UUID, reason string) {
	body := "Your identity document was rejected."
	if reason != "" {
		body = "Your identity document was rejected: " + reason
	}
	s.notify(ctx, userID, TypeKYCRejected, "Verification rejected", body, verificationID)
}

// PollOpened notifies group members a new poll is open for voting
func (s *Service) PollOpened(ctx context.Context, memberIDs []uuid.UUID, pollID uuid.UUID, question string) {
	for _, memberID := range memberIDs {
		s.notify(ctx, memberID, TypePollOpened,
			"New poll",
			fmt.Sprintf("A new poll is open for voting: %s", question),
			pollID,
		)
	}
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, notifType Type, title, body string, entityID uuid.UUID) {
	if _, err := s.Create(ctx, userID, notifType, title, body, entityID); err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("type", string(notifType)).
			Msg("Failed to create notification")
	}
}
