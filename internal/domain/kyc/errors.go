package kyc

import "errors"

var (
	ErrNotFound         = errors.New("verification not found")
	ErrAlreadySubmitted = errors.New("a verification is already pending")
	ErrAlreadyApproved  = errors.New("user is already verified")
	ErrAlreadyDecided   = errors.New("verification has already been decided")
	ErrReasonRequired   = errors.New("a rejection needs a reason")
	ErrInvalidDocument  = errors.New("document image could not be processed")
)
