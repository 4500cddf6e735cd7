package reservation

import "errors"

var (
	ErrNotFound         = errors.New("reservation not found")
	ErrPastCheckIn      = errors.New("check-in date is in the past")
	ErrZeroNights       = errors.New("stay must be at least one night")
	ErrDatesConflict    = errors.New("dates conflict with an existing reservation")
	ErrPropertyInactive = errors.New("property is not accepting reservations")
	ErrInvalidGuests    = errors.New("at least one adult is required")
	ErrNotParticipant   = errors.New("user is neither the guest nor the property owner")
	ErrNotCancellable   = errors.New("reservation can no longer be cancelled")
	ErrNotPayable       = errors.New("reservation is not awaiting payment")
	ErrCurrencyMismatch = errors.New("payment currency does not match the quoted currency")
	ErrAmountMismatch   = errors.New("paid amount does not match the quoted total")
)
