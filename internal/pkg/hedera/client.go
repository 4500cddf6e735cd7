package hedera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Config holds token bridge configuration.
// The bridge is a custodial service holding the operator key; this API
// never sees key material.
type Config struct {
	BaseURL    string
	Token      string
	TreasuryID string
	MirrorURL  string
	Timeout    time.Duration
}

// Client talks to the Hedera token bridge and mirror node
type Client struct {
	baseURL    string
	token      string
	treasuryID string
	mirrorURL  string
	http       *http.Client
}

// CreateTokenRequest creates a fungible token for a property
type CreateTokenRequest struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int    `json:"decimals"`
	TotalSupply int64  `json:"total_supply"`
	Memo        string `json:"memo,omitempty"`
}

// CreateTokenResponse carries the ledger token id
type CreateTokenResponse struct {
	TokenID       string `json:"token_id"`
	TransactionID string `json:"transaction_id"`
}

// AssociateRequest associates an account with a token
type AssociateRequest struct {
	AccountID string `json:"account_id"`
	TokenID   string `json:"token_id"`
}

// TransferRequest moves token units between accounts
type TransferRequest struct {
	TokenID   string `json:"token_id"`
	FromID    string `json:"from_account_id"`
	ToID      string `json:"to_account_id"`
	Quantity  int64  `json:"quantity"`
	Reference string `json:"reference"` // idempotency key
}

// TransferResponse carries the ledger transaction id
type TransferResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// TokenBalance is a mirror-node account balance for one token
type TokenBalance struct {
	TokenID string `json:"token_id"`
	Balance int64  `json:"balance"`
}

type bridgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type bridgeEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *bridgeError    `json:"error"`
}

// NewClient creates a token bridge client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		treasuryID: cfg.TreasuryID,
		mirrorURL:  strings.TrimRight(cfg.MirrorURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// TreasuryID returns the custodial treasury account id
func (c *Client) TreasuryID() string {
	return c.treasuryID
}

// CreateToken creates a fungible token with the treasury as supply holder
func (c *Client) CreateToken(ctx context.Context, req CreateTokenRequest) (*CreateTokenResponse, error) {
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, fmt.Errorf("hedera validation error: symbol is empty")
	}
	if req.TotalSupply <= 0 {
		return nil, fmt.Errorf("hedera validation error: total supply must be > 0")
	}

	var out CreateTokenResponse
	if err := c.post(ctx, "/v1/tokens", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Associate links an account to a token so it can hold units
func (c *Client) Associate(ctx context.Context, req AssociateRequest) error {
	if strings.TrimSpace(req.AccountID) == "" || strings.TrimSpace(req.TokenID) == "" {
		return fmt.Errorf("hedera validation error: account_id and token_id are required")
	}
	return c.post(ctx, "/v1/tokens/associate", req, nil)
}

// Transfer moves token units; the bridge signs with the operator key.
// Reference makes retries idempotent on the bridge side.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("hedera validation error: quantity must be > 0")
	}
	if strings.TrimSpace(req.Reference) == "" {
		return nil, fmt.Errorf("hedera validation error: reference is empty")
	}

	var out TransferResponse
	if err := c.post(ctx, "/v1/tokens/transfer", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccountBalance reads a token balance from the mirror node
func (c *Client) AccountBalance(ctx context.Context, accountID, tokenID string) (*TokenBalance, error) {
	if c.mirrorURL == "" {
		return nil, fmt.Errorf("hedera config error: mirror url is empty")
	}

	url := fmt.Sprintf("%s/api/v1/accounts/%s/tokens?token.id=%s", c.mirrorURL, accountID, tokenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("hedera mirror request error: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hedera mirror request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("hedera mirror http error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var mirror struct {
		Tokens []TokenBalance `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mirror); err != nil {
		return nil, fmt.Errorf("hedera mirror response error: %w", err)
	}

	if len(mirror.Tokens) == 0 {
		return &TokenBalance{TokenID: tokenID, Balance: 0}, nil
	}
	return &mirror.Tokens[0], nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("hedera config error: bridge url is empty")
	}
	if strings.TrimSpace(c.token) == "" {
		return fmt.Errorf("hedera config error: bridge token is empty")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("hedera request error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("hedera request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hedera request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hedera response error: %w", err)
	}

	var envelope bridgeEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("hedera response error: status=%d body=%s", resp.StatusCode, string(raw))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Success {
		if envelope.Error != nil {
			return fmt.Errorf("hedera bridge error: %s - %s", envelope.Error.Code, envelope.Error.Message)
		}
		return fmt.Errorf("hedera bridge error: status=%d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("hedera response error: %w", err)
		}
	}
	return nil
}
