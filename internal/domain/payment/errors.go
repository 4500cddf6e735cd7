package payment

import "errors"

var (
	ErrNotFound         = errors.New("payment not found")
	ErrNotPayer         = errors.New("payment belongs to another user")
	ErrAmountMismatch   = errors.New("charged amount does not match the payment")
	ErrCurrencyMismatch = errors.New("charged currency does not match the payment")
	ErrNotPayable       = errors.New("target is not awaiting payment")
	ErrProviderDeclined = errors.New("provider reported the charge unsuccessful")
	ErrBadSignature     = errors.New("webhook signature is invalid")
)
