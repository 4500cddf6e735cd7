package market

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrNotTokenized          = errors.New("property has no tradable token")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidPrice          = errors.New("price must be positive")
	ErrInsufficientShares    = errors.New("not enough unlocked shares to sell")
	ErrInsufficientLiquidity = errors.New("not enough liquidity on the opposing side")
	ErrNotOrderOwner         = errors.New("order belongs to another user")
	ErrOrderClosed           = errors.New("order is no longer open")
	ErrSelfTrade             = errors.New("cannot buy from your own order")
	ErrQuantityExceedsOrder  = errors.New("quantity exceeds order remainder")
	ErrFillNotFound          = errors.New("fill not found")
)
