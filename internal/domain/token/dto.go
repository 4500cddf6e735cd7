package token

import "time"

// CreateTokenRequest tokenizes a listing
type CreateTokenRequest struct {
	PropertyID  string `json:"property_id" validate:"required,uuid"`
	Symbol      string `json:"symbol" validate:"required,alphanum,min=3,max=10,uppercase"`
	TotalShares int64  `json:"total_shares" validate:"required,min=1"`
	SharePrice  int64  `json:"share_price" validate:"required,min=1"`
}

// AssociateRequest links a ledger account to a property token
type AssociateRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	AccountID  string `json:"account_id" validate:"required"`
}

// TokenResponse is the API shape of a property token
type TokenResponse struct {
	ID              string    `json:"id"`
	PropertyID      string    `json:"property_id"`
	LedgerTokenID   string    `json:"ledger_token_id"`
	Symbol          string    `json:"symbol"`
	TotalSupply     int64     `json:"total_supply"`
	TreasuryAccount string    `json:"treasury_account"`
	CreatedAt       time.Time `json:"created_at"`
}

// HoldingResponse is the API shape of a share position
type HoldingResponse struct {
	PropertyID    string `json:"property_id"`
	Quantity      int64  `json:"quantity"`
	Locked        int64  `json:"locked"`
	Available     int64  `json:"available"`
	LedgerBalance *int64 `json:"ledger_balance,omitempty"`
}

// TransferResponse is the API shape of a journal entry
type TransferResponse struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	FromUserID string    `json:"from_user_id,omitempty"`
	ToUserID   string    `json:"to_user_id"`
	Quantity   int64     `json:"quantity"`
	Reference  string    `json:"reference"`
	LedgerTxID string    `json:"ledger_tx_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToTokenResponse converts entity to API response
func ToTokenResponse(t *PropertyToken) *TokenResponse {
	return &TokenResponse{
		ID:              t.ID.String(),
		PropertyID:      t.PropertyID.String(),
		LedgerTokenID:   t.LedgerTokenID,
		Symbol:          t.Symbol,
		TotalSupply:     t.TotalSupply,
		TreasuryAccount: t.TreasuryAccount,
		CreatedAt:       t.CreatedAt,
	}
}

// ToHoldingResponse converts entity to API response
func ToHoldingResponse(h *Holding, ledgerBalance *int64) *HoldingResponse {
	return &HoldingResponse{
		PropertyID:    h.PropertyID.String(),
		Quantity:      h.Quantity,
		Locked:        h.Locked,
		Available:     h.Available(),
		LedgerBalance: ledgerBalance,
	}
}

// ToTransferResponse converts entity to API response
func ToTransferResponse(t *Transfer) *TransferResponse {
	resp := &TransferResponse{
		ID:         t.ID.String(),
		PropertyID: t.PropertyID.String(),
		ToUserID:   t.ToUserID.String(),
		Quantity:   t.Quantity,
		Reference:  t.Reference,
		CreatedAt:  t.CreatedAt,
	}
	if t.FromUserID.Valid {
		resp.FromUserID = t.FromUserID.UUID.String()
	}
	if t.LedgerTxID.Valid {
		resp.LedgerTxID = t.LedgerTxID.String
	}
	return resp
}
