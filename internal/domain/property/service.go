package property

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/pkg/money"
)

// Service handles property business logic
type Service struct {
	repo Repository
}

// NewService creates property service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a draft listing owned by the caller
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req *CreateRequest) (*Property, error) {
	now := time.Now()
	period := PricingPeriod(req.PricingPeriod)
	if period == "" {
		period = PeriodNight
	}

	p := &Property{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Title:         req.Title,
		Description:   req.Description,
		City:          req.City,
		Address:       req.Address,
		Type:          Type(req.Type),
		Status:        StatusDraft,
		PriceAmount:   req.PriceAmount,
		Currency:      money.NormalizeCurrency(req.Currency),
		PricingPeriod: period,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Deposit != nil {
		p.Deposit = sql.NullInt64{Int64: *req.Deposit, Valid: true}
	}
	if req.ServiceCharge != nil {
		p.ServiceCharge = sql.NullInt64{Int64: *req.ServiceCharge, Valid: true}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a listing by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Update applies partial changes; only the owner may update
func (s *Service) Update(ctx context.Context, id, callerID uuid.UUID, req *UpdateRequest) (*Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.PriceAmount != nil {
		p.PriceAmount = *req.PriceAmount
	}
	if req.Deposit != nil {
		p.Deposit = sql.NullInt64{Int64: *req.Deposit, Valid: true}
	}
	if req.ServiceCharge != nil {
		p.ServiceCharge = sql.NullInt64{Int64: *req.ServiceCharge, Valid: true}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ChangeStatus moves the listing through its lifecycle; only the owner may change it
func (s *Service) ChangeStatus(ctx context.Context, id, callerID uuid.UUID, status Status) (*Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	if !validTransition(p.Status, status) {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	p.Status = status
	return p, nil
}

// List returns active listings matching the filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Property, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

// ListByOwner returns the caller's listings
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Property, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Sold listings stay terminal; everything else may cycle between
// draft, active and paused.
func validTransition(from, to Status) bool {
	if from == StatusSold {
		return false
	}
	switch to {
	case StatusDraft, StatusActive, StatusPaused, StatusSold:
		return true
	}
	return false
}
