package property

import "errors"

var (
	ErrNotFound         = errors.New("property not found")
	ErrNotOwner         = errors.New("user is not the property owner")
	ErrNotActive        = errors.New("property is not active")
	ErrInvalidStatus    = errors.New("invalid status transition")
	ErrAlreadyTokenized = errors.New("property already has a token")
)
