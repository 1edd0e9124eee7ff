package feetoken

import "github.com/iov-one/feeledger/errors"

// x/feetoken reserves 40 ~ 49.
var (
	ErrAlreadyInitialized  = errors.Register(40, "already initialized")
	ErrInvalidFeeValue     = errors.Register(41, "invalid fee value")
	ErrInsufficientBalance = errors.Register(42, "insufficient balance")
	ErrPaused              = errors.Register(43, "paused")
	ErrNotPaused           = errors.Register(44, "not paused")
)
