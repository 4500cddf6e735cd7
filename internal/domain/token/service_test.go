package token

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
	"github.com/estora/estora-api/internal/domain/user"
	"github.com/estora/estora-api/internal/pkg/hedera"
)

type stubPropertyStore struct {
	props map[uuid.UUID]*property.Property
}

func (s *stubPropertyStore) GetByID(_ context.Context, id uuid.UUID) (*property.Property, error) {
	return s.props[id], nil
}

func (s *stubPropertyStore) SetToken(_ context.Context, id uuid.UUID, symbol string, totalShares, sharePrice int64) error {
	p, ok := s.props[id]
	if !ok {
		return property.ErrNotFound
	}
	if p.TokenSymbol.Valid {
		return property.ErrAlreadyTokenized
	}
	p.TokenSymbol.Valid = true
	p.TokenSymbol.String = symbol
	p.TotalShares.Valid = true
	p.TotalShares.Int64 = totalShares
	p.SharePrice.Valid = true
	p.SharePrice.Int64 = sharePrice
	return nil
}

type stubUserStore struct {
	users map[uuid.UUID]*user.User
}

func (s *stubUserStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return s.users[id], nil
}

func (s *stubUserStore) SetHederaAccount(_ context.Context, id uuid.UUID, accountID string) error {
	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.HederaAccountID.Valid = true
	u.HederaAccountID.String = accountID
	return nil
}

type stubRepo struct {
	tokens    map[uuid.UUID]*PropertyToken
	holdings  map[uuid.UUID]map[uuid.UUID]*Holding
	transfers map[string]*Transfer
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		tokens:    make(map[uuid.UUID]*PropertyToken),
		holdings:  make(map[uuid.UUID]map[uuid.UUID]*Holding),
		transfers: make(map[string]*Transfer),
	}
}

func (s *stubRepo) CreateToken(_ context.Context, t *PropertyToken, issuance *Transfer) error {
	s.tokens[t.PropertyID] = t
	if s.holdings[issuance.ToUserID] == nil {
		s.holdings[issuance.ToUserID] = make(map[uuid.UUID]*Holding)
	}
	s.holdings[issuance.ToUserID][t.PropertyID] = &Holding{
		UserID:     issuance.ToUserID,
		PropertyID: t.PropertyID,
		Quantity:   t.TotalSupply,
	}
	s.transfers[issuance.Reference] = issuance
	return nil
}

func (s *stubRepo) GetTokenByProperty(_ context.Context, propertyID uuid.UUID) (*PropertyToken, error) {
	return s.tokens[propertyID], nil
}

func (s *stubRepo) GetHolding(_ context.Context, userID, propertyID uuid.UUID) (*Holding, error) {
	if m := s.holdings[userID]; m != nil {
		return m[propertyID], nil
	}
	return nil, nil
}

func (s *stubRepo) ListHoldingsByUser(_ context.Context, userID uuid.UUID) ([]*Holding, error) {
	var out []*Holding
	for _, h := range s.holdings[userID] {
		out = append(out, h)
	}
	return out, nil
}

func (s *stubRepo) GetTransferByReference(_ context.Context, reference string) (*Transfer, error) {
	return s.transfers[reference], nil
}

func (s *stubRepo) SetLedgerTx(_ context.Context, transferID uuid.UUID, ledgerTxID string) error {
	for _, t := range s.transfers {
		if t.ID == transferID {
			t.LedgerTxID.Valid = true
			t.LedgerTxID.String = ledgerTxID
		}
	}
	return nil
}

func (s *stubRepo) RecordTransfer(_ context.Context, t *Transfer) error {
	if _, ok := s.transfers[t.Reference]; ok {
		return nil
	}
	s.transfers[t.Reference] = t
	return nil
}

func (s *stubRepo) ListTransfersByUser(_ context.Context, userID uuid.UUID) ([]*Transfer, error) {
	var out []*Transfer
	for _, t := range s.transfers {
		if t.ToUserID == userID || (t.FromUserID.Valid && t.FromUserID.UUID == userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

type stubBridge struct {
	createCalls    int
	transferCalls  int
	associateCalls int
	createErr      error
}

func (s *stubBridge) CreateToken(_ context.Context, req hedera.CreateTokenRequest) (*hedera.CreateTokenResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.createCalls++
	return &hedera.CreateTokenResponse{TokenID: "0.0.5005", TransactionID: "tx-create"}, nil
}

func (s *stubBridge) Associate(_ context.Context, _ hedera.AssociateRequest) error {
	s.associateCalls++
	return nil
}

func (s *stubBridge) Transfer(_ context.Context, req hedera.TransferRequest) (*hedera.TransferResponse, error) {
	s.transferCalls++
	return &hedera.TransferResponse{TransactionID: "tx-" + req.Reference, Status: "SUCCESS"}, nil
}

func (s *stubBridge) AccountBalance(_ context.Context, _, _ string) (*hedera.TokenBalance, error) {
	return &hedera.TokenBalance{TokenID: "0.0.5005", Balance: 42}, nil
}

func (s *stubBridge) TreasuryID() string {
	return "0.0.1001"
}

func newFixture() (*Service, *stubRepo, *stubPropertyStore, *stubUserStore, *stubBridge) {
	repo := newStubRepo()
	props := &stubPropertyStore{props: make(map[uuid.UUID]*property.Property)}
	users := &stubUserStore{users: make(map[uuid.UUID]*user.User)}
	bridge := &stubBridge{}
	return NewService(repo, props, users, bridge), repo, props, users, bridge
}

func TestCreateForListing(t *testing.T) {
	svc, repo, props, users, bridge := newFixture()

	ownerID := uuid.New()
	users.users[ownerID] = &user.User{ID: ownerID}
	prop := &property.Property{ID: uuid.New(), OwnerID: ownerID, Title: "Marina Heights 4B"}
	props.props[prop.ID] = prop

	tok, err := svc.CreateForListing(context.Background(), ownerID, prop.ID, "MAR4B", 1000, 25000)
	if err != nil {
		t.Fatalf("CreateForListing: %v", err)
	}

	if tok.LedgerTokenID != "0.0.5005" {
		t.Errorf("expected ledger token id from bridge, got %s", tok.LedgerTokenID)
	}
	if bridge.createCalls != 1 {
		t.Errorf("expected one bridge create, got %d", bridge.createCalls)
	}
	if !prop.TokenSymbol.Valid || prop.TokenSymbol.String != "MAR4B" {
		t.Errorf("listing was not marked tokenized")
	}

	holding, _ := repo.GetHolding(context.Background(), ownerID, prop.ID)
	if holding == nil || holding.Quantity != 1000 {
		t.Errorf("expected owner seeded with full supply")
	}

	// One token per property
	if _, err := svc.CreateForListing(context.Background(), ownerID, prop.ID, "MAR4C", 500, 25000); !errors.Is(err, ErrAlreadyTokenized) {
		t.Errorf("second tokenize: expected ErrAlreadyTokenized, got %v", err)
	}
}

func TestCreateForListingGuards(t *testing.T) {
	svc, _, props, _, _ := newFixture()

	ownerID := uuid.New()
	prop := &property.Property{ID: uuid.New(), OwnerID: ownerID}
	props.props[prop.ID] = prop

	if _, err := svc.CreateForListing(context.Background(), uuid.New(), prop.ID, "EST1", 1000, 100); !errors.Is(err, ErrNotPropertyOwner) {
		t.Errorf("stranger: expected ErrNotPropertyOwner, got %v", err)
	}
	if _, err := svc.CreateForListing(context.Background(), ownerID, prop.ID, "EST1", 0, 100); !errors.Is(err, ErrInvalidSupply) {
		t.Errorf("zero supply: expected ErrInvalidSupply, got %v", err)
	}
	if _, err := svc.CreateForListing(context.Background(), ownerID, prop.ID, "EST1", 100, 0); !errors.Is(err, ErrInvalidSharePrice) {
		t.Errorf("zero price: expected ErrInvalidSharePrice, got %v", err)
	}
	if _, err := svc.CreateForListing(context.Background(), ownerID, uuid.New(), "EST1", 100, 100); !errors.Is(err, property.ErrNotFound) {
		t.Errorf("unknown property: expected property.ErrNotFound, got %v", err)
	}
}

func TestAssociate(t *testing.T) {
	svc, _, props, users, bridge := newFixture()

	ownerID := uuid.New()
	users.users[ownerID] = &user.User{ID: ownerID}
	prop := &property.Property{ID: uuid.New(), OwnerID: ownerID}
	props.props[prop.ID] = prop

	if _, err := svc.CreateForListing(context.Background(), ownerID, prop.ID, "EST1", 100, 100); err != nil {
		t.Fatalf("CreateForListing: %v", err)
	}

	investorID := uuid.New()
	users.users[investorID] = &user.User{ID: investorID}

	if err := svc.Associate(context.Background(), investorID, prop.ID, "0.0.7007"); err != nil {
		t.Fatalf("Associate: %v", err)
	}
	if bridge.associateCalls != 1 {
		t.Errorf("expected one bridge associate, got %d", bridge.associateCalls)
	}
	if !users.users[investorID].HederaAccountID.Valid {
		t.Errorf("account id was not stored on the user")
	}

	if err := svc.Associate(context.Background(), investorID, uuid.New(), "0.0.7007"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("unknown token: expected ErrTokenNotFound, got %v", err)
	}
}

func TestTransferSharesIdempotent(t *testing.T) {
	svc, repo, props, users, bridge := newFixture()

	ownerID := uuid.New()
	buyerID := uuid.New()
	users.users[ownerID] = &user.User{ID: ownerID}
	users.users[buyerID] = &user.User{ID: buyerID}
	users.users[ownerID].HederaAccountID.Valid = true
	users.users[ownerID].HederaAccountID.String = "0.0.2002"
	users.users[buyerID].HederaAccountID.Valid = true
	users.users[buyerID].HederaAccountID.String = "0.0.3003"

	prop := &property.Property{ID: uuid.New(), OwnerID: ownerID}
	props.props[prop.ID] = prop
	if _, err := svc.CreateForListing(context.Background(), ownerID, prop.ID, "EST1", 100, 100); err != nil {
		t.Fatalf("CreateForListing: %v", err)
	}

	if err := svc.TransferShares(context.Background(), prop.ID, ownerID, buyerID, 10, "fill-1"); err != nil {
		t.Fatalf("TransferShares: %v", err)
	}
	if bridge.transferCalls != 1 {
		t.Errorf("expected one ledger transfer, got %d", bridge.transferCalls)
	}
	journal := repo.transfers["fill-1"]
	if journal == nil || !journal.LedgerTxID.Valid {
		t.Fatalf("expected journal entry with ledger tx id")
	}

	// Replay is a no-op once the ledger tx landed
	if err := svc.TransferShares(context.Background(), prop.ID, ownerID, buyerID, 10, "fill-1"); err != nil {
		t.Fatalf("replay TransferShares: %v", err)
	}
	if bridge.transferCalls != 1 {
		t.Errorf("replay re-submitted the ledger transfer")
	}
}

func TestTransferSharesWithoutLedgerAccounts(t *testing.T) {
	svc, repo, props, users, bridge := newFixture()

	ownerID := uuid.New()
	buyerID := uuid.New()
	users.users[ownerID] = &user.User{ID: ownerID}
	users.users[buyerID] = &user.User{ID: buyerID}

	prop := &property.Property{ID: uuid.New(), OwnerID: ownerID}
	props.props[prop.ID] = prop
	if _, err := svc.CreateForListing(context.Background(), ownerID, prop.ID, "EST1", 100, 100); err != nil {
		t.Fatalf("CreateForListing: %v", err)
	}

	if err := svc.TransferShares(context.Background(), prop.ID, ownerID, buyerID, 10, "fill-2"); err != nil {
		t.Fatalf("TransferShares: %v", err)
	}
	if bridge.transferCalls != 0 {
		t.Errorf("expected custodial book entry only, got %d ledger transfers", bridge.transferCalls)
	}
	if repo.transfers["fill-2"] == nil {
		t.Errorf("expected journal entry even without ledger accounts")
	}
}
