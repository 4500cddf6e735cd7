package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureHeader is the header Paystack signs webhook bodies with
const SignatureHeader = "X-Paystack-Signature"

// WebhookEvent represents a webhook payload.
// Paystack signs the raw body with HMAC-SHA512 of the secret key.
type WebhookEvent struct {
	Event string      `json:"event"` // e.g. charge.success
	Data  WebhookData `json:"data"`
}

// WebhookData carries the transaction fields used for settlement
type WebhookData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
	Channel   string `json:"channel"`
}

// ComputeSignature returns the hex HMAC-SHA512 of body under the secret key
func ComputeSignature(secretKey string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature against the raw body
func VerifySignature(secretKey string, body []byte, receivedHex string) bool {
	expected := ComputeSignature(secretKey, body)
	received := strings.ToLower(strings.TrimSpace(receivedHex))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

// ParseWebhook verifies the signature and decodes the event
func ParseWebhook(secretKey string, body []byte, signature string) (*WebhookEvent, error) {
	if !VerifySignature(secretKey, body, signature) {
		return nil, fmt.Errorf("paystack webhook: invalid signature")
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("paystack webhook: malformed payload: %w", err)
	}
	return &event, nil
}

// IsChargeSuccess reports whether the event is a successful charge
func (e *WebhookEvent) IsChargeSuccess() bool {
	return e.Event == "charge.success" && e.Data.Status == "success"
}
