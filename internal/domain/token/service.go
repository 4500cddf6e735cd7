package token

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/estora/estora-api/internal/domain/property"
	"github.com/estora/estora-api/internal/domain/user"
	"github.com/estora/estora-api/internal/pkg/hedera"
)

// PropertyStore is the subset of the property repository the service needs
type PropertyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
	SetToken(ctx context.Context, id uuid.UUID, symbol string, totalShares, sharePrice int64) error
}

// UserStore is the subset of the user repository the service needs
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	SetHederaAccount(ctx context.Context, id uuid.UUID, accountID string) error
}

// Bridge is the custodial ledger client the service talks to
type Bridge interface {
	CreateToken(ctx context.Context, req hedera.CreateTokenRequest) (*hedera.CreateTokenResponse, error)
	Associate(ctx context.Context, req hedera.AssociateRequest) error
	Transfer(ctx context.Context, req hedera.TransferRequest) (*hedera.TransferResponse, error)
	AccountBalance(ctx context.Context, accountID, tokenID string) (*hedera.TokenBalance, error)
	TreasuryID() string
}

// Service handles token business logic
type Service struct {
	repo       Repository
	properties PropertyStore
	users      UserStore
	bridge     Bridge
}

// NewService creates token service
func NewService(repo Repository, properties PropertyStore, users UserStore, bridge Bridge) *Service {
	return &Service{repo: repo, properties: properties, users: users, bridge: bridge}
}

// CreateForListing mints a ledger token for a property and issues the
// full supply to its owner. One token per property; only the owner can
// tokenize.
func (s *Service) CreateForListing(ctx context.Context, ownerID, propertyID uuid.UUID, symbol string, totalShares, sharePrice int64) (*PropertyToken, error) {
	if totalShares <= 0 {
		return nil, ErrInvalidSupply
	}
	if sharePrice <= 0 {
		return nil, ErrInvalidSharePrice
	}

	prop, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, property.ErrNotFound
	}
	if prop.OwnerID != ownerID {
		return nil, ErrNotPropertyOwner
	}
	if prop.IsTokenized() {
		return nil, ErrAlreadyTokenized
	}

	created, err := s.bridge.CreateToken(ctx, hedera.CreateTokenRequest{
		Name:        prop.Title,
		Symbol:      symbol,
		Decimals:    0,
		TotalSupply: totalShares,
		Memo:        fmt.Sprintf("estora property %s", propertyID),
	})
	if err != nil {
		return nil, err
	}

	// Marks the listing tokenized; a concurrent second attempt loses here
	if err := s.properties.SetToken(ctx, propertyID, symbol, totalShares, sharePrice); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &PropertyToken{
		ID:              uuid.New(),
		PropertyID:      propertyID,
		LedgerTokenID:   created.TokenID,
		Symbol:          symbol,
		TotalSupply:     totalShares,
		TreasuryAccount: s.bridge.TreasuryID(),
		CreatedAt:       now,
	}
	issuance := &Transfer{
		ID:         uuid.New(),
		PropertyID: propertyID,
		ToUserID:   ownerID,
		Quantity:   totalShares,
		Reference:  fmt.Sprintf("issue-%s", propertyID),
		CreatedAt:  now,
	}
	issuance.LedgerTxID.Valid = created.TransactionID != ""
	issuance.LedgerTxID.String = created.TransactionID

	if err := s.repo.CreateToken(ctx, t, issuance); err != nil {
		return nil, err
	}
	return t, nil
}

// Associate links a user's ledger account to a property token so it
// can receive transfers.
func (s *Service) Associate(ctx context.Context, userID, propertyID uuid.UUID, accountID string) error {
	t, err := s.repo.GetTokenByProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTokenNotFound
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return user.ErrNotFound
	}

	if err := s.bridge.Associate(ctx, hedera.AssociateRequest{
		AccountID: accountID,
		TokenID:   t.LedgerTokenID,
	}); err != nil {
		return err
	}

	if !u.HederaAccountID.Valid || u.HederaAccountID.String != accountID {
		return s.users.SetHederaAccount(ctx, userID, accountID)
	}
	return nil
}

// Balance returns the user's custodial holding for one property,
// alongside the mirror-node view where the user has a ledger account.
func (s *Service) Balance(ctx context.Context, userID, propertyID uuid.UUID) (*Holding, *hedera.TokenBalance, error) {
	t, err := s.repo.GetTokenByProperty(ctx, propertyID)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, ErrTokenNotFound
	}

	holding, err := s.repo.GetHolding(ctx, userID, propertyID)
	if err != nil {
		return nil, nil, err
	}
	if holding == nil {
		holding = &Holding{UserID: userID, PropertyID: propertyID}
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	var ledger *hedera.TokenBalance
	if u != nil && u.HederaAccountID.Valid {
		// Mirror lag is acceptable here, the custodial book is authoritative
		ledger, _ = s.bridge.AccountBalance(ctx, u.HederaAccountID.String, t.LedgerTokenID)
	}
	return holding, ledger, nil
}

// ListHoldings returns the user's positions across properties
func (s *Service) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*Holding, error) {
	return s.repo.ListHoldingsByUser(ctx, userID)
}

// ListTransfers returns the user's side of the transfer journal
func (s *Service) ListTransfers(ctx context.Context, userID uuid.UUID) ([]*Transfer, error) {
	return s.repo.ListTransfersByUser(ctx, userID)
}

// GetToken returns the token behind a property
func (s *Service) GetToken(ctx context.Context, propertyID uuid.UUID) (*PropertyToken, error) {
	t, err := s.repo.GetTokenByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTokenNotFound
	}
	return t, nil
}

// TransferShares journals a share move and mirrors it onto the ledger
// when both sides have accounts. Idempotent on the reference, which
// lets the marketplace retry settlement safely.
func (s *Service) TransferShares(ctx context.Context, propertyID, fromUserID, toUserID uuid.UUID, quantity int64, reference string) error {
	existing, err := s.repo.GetTransferByReference(ctx, reference)
	if err != nil {
		return err
	}
	if existing != nil && existing.LedgerTxID.Valid {
		return nil
	}

	t, err := s.repo.GetTokenByProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTokenNotFound
	}

	transfer := existing
	if transfer == nil {
		transfer = &Transfer{
			ID:         uuid.New(),
			PropertyID: propertyID,
			ToUserID:   toUserID,
			Quantity:   quantity,
			Reference:  reference,
			CreatedAt:  time.Now().UTC(),
		}
		transfer.FromUserID.Valid = true
		transfer.FromUserID.UUID = fromUserID
		if err := s.repo.RecordTransfer(ctx, transfer); err != nil {
			return err
		}
	}

	from, err := s.users.GetByID(ctx, fromUserID)
	if err != nil {
		return err
	}
	to, err := s.users.GetByID(ctx, toUserID)
	if err != nil {
		return err
	}

	// Custodial positions without ledger accounts stay book entries
	if from == nil || to == nil || !from.HederaAccountID.Valid || !to.HederaAccountID.Valid {
		return nil
	}

	resp, err := s.bridge.Transfer(ctx, hedera.TransferRequest{
		TokenID:   t.LedgerTokenID,
		FromID:    from.HederaAccountID.String,
		ToID:      to.HederaAccountID.String,
		Quantity:  quantity,
		Reference: reference,
	})
	if err != nil {
		return err
	}
	return s.repo.SetLedgerTx(ctx, transfer.ID, resp.TransactionID)
}
