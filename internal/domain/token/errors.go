package token

import "errors"

var (
	ErrTokenNotFound     = errors.New("property token not found")
	ErrNotPropertyOwner  = errors.New("only the property owner can tokenize it")
	ErrAlreadyTokenized  = errors.New("property already has a token")
	ErrNoHederaAccount   = errors.New("user has no associated ledger account")
	ErrInvalidSupply     = errors.New("total shares must be positive")
	ErrInvalidSharePrice = errors.New("share price must be positive")
)
