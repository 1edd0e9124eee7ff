package proxy

import "github.com/iov-one/feeledger/errors"

// x/proxy reserves 30 ~ 39.
var (
	ErrNoCodeAtAddress   = errors.Register(30, "no code at address")
	ErrNotProxiable      = errors.Register(31, "implementation not proxiable")
	ErrReservedSlot      = errors.Register(32, "reserved storage slot")
	ErrDelegationFailure = errors.Register(33, "delegation failure")
	ErrNotProxy          = errors.Register(34, "not a proxy")
)
