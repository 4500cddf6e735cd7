package kyc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/pkg/imaging"
	"github.com/estora/estora-api/internal/pkg/storage"
)

// Service handles kyc business logic
// Notifier tells the user how their verification was decided. May be nil.
type Notifier interface {
	KYCApproved(ctx context.Context, userID, verificationID uuid.UUID)
	KYCRejected(ctx context.Context, userID, verificationID uuid.UUID, reason string)
}

type Service struct {
	repo      Repository
	storage   storage.Storage
	processor *imaging.Processor
	notifier  Notifier
}

// NewService creates kyc service
func NewService(repo Repository, store storage.Storage, processor *imaging.Processor, notifier Notifier) *Service {
	return &Service{repo: repo, storage: store, processor: processor, notifier: notifier}
}

// Submit normalizes the document image, stores it and opens a pending
// verification. Re-submission is allowed only after a rejection.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, docType DocumentType, document io.Reader) (*Verification, error) {
	latest, err := s.repo.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		switch latest.Status {
		case StatusPending:
			return nil, ErrAlreadySubmitted
		case StatusApproved:
			return nil, ErrAlreadyApproved
		}
	}

	processed, err := s.processor.Process(document)
	if err != nil {
		return nil, ErrInvalidDocument
	}

	id := uuid.New()
	ext := "jpg"
	if processed.ContentType == "image/png" {
		ext = "png"
	}
	key := fmt.Sprintf("kyc/%s/%s.%s", userID, id, ext)

	if err := s.storage.Put(ctx, key, bytes.NewReader(processed.Data), processed.ContentType); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	v := &Verification{
		ID:           id,
		UserID:       userID,
		DocumentType: docType,
		DocumentKey:  key,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetStatus returns the user's latest verification, if any
func (s *Service) GetStatus(ctx context.Context, userID uuid.UUID) (*Verification, error) {
	return s.repo.GetLatestByUser(ctx, userID)
}

// ListPending returns undecided verifications for admin review
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Verification, int, error) {
	return s.repo.ListPending(ctx, limit, offset)
}

// Approve settles a pending verification as passed
func (s *Service) Approve(ctx context.Context, reviewerID, id uuid.UUID) (*Verification, error) {
	return s.decide(ctx, reviewerID, id, StatusApproved, "")
}

// Reject settles a pending verification as failed with a reason
func (s *Service) Reject(ctx context.Context, reviewerID, id uuid.UUID, reason string) (*Verification, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.decide(ctx, reviewerID, id, StatusRejected, reason)
}

// IsVerified reports whether the user has an approved verification.
// Satisfies the KYC gate middleware.
func (s *Service) IsVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.HasApproved(ctx, userID)
}

func (s *Service) decide(ctx context.Context, reviewerID, id uuid.UUID, status Status, reason string) (*Verification, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}

	if err := s.repo.Decide(ctx, id, reviewerID, status, reason); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		switch status {
		case StatusApproved:
			s.notifier.KYCApproved(ctx, v.UserID, id)
		case StatusRejected:
			s.notifier.KYCRejected(ctx, v.UserID, id, reason)
		}
	}

	return s.repo.GetByID(ctx, id)
}
