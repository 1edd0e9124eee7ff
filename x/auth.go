package x

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// Authenticator tells handlers who authorized the current transaction.
// Handlers receive one in their constructor instead of depending on a
// particular signature scheme.
type Authenticator interface {
	// GetConditions returns the authorizing conditions, the main signer
	// first.
	GetConditions(weave.Context) []weave.Condition
	// HasAddress reports whether any condition resolves to the address.
	HasAddress(weave.Context, weave.Address) bool
}

// MultiAuth merges the conditions of several authenticators, in the order
// they were given.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth(nil)

// ChainAuth returns an authenticator accepting the conditions of any of
// auths.
func ChainAuth(auths ...Authenticator) MultiAuth {
	return MultiAuth(auths)
}

func (m MultiAuth) GetConditions(ctx weave.Context) []weave.Condition {
	var res []weave.Condition
	for _, a := range m {
		res = append(res, a.GetConditions(ctx)...)
	}
	return res
}

func (m MultiAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, a := range m {
		if a.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first condition of auth, nil if there is none.
func MainSigner(ctx weave.Context, auth Authenticator) weave.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// Caller returns the address of the main signer. Calls without any
// signature are rejected with ErrUnauthorized.
func Caller(ctx weave.Context, auth Authenticator) (weave.Address, error) {
	signer := MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return signer.Address(), nil
}
