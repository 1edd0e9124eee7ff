package sigs

import (
	"context"

	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/x"
)

type signersKey struct{}

// withSigners is unexported so that only the Decorator can authenticate.
func withSigners(ctx weave.Context, signers []weave.Condition) weave.Context {
	return context.WithValue(ctx, signersKey{}, signers)
}

// Authenticate reports the signers verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the signer conditions in signature order, nil when
// the Decorator did not run.
func (Authenticate) GetConditions(ctx weave.Context) []weave.Condition {
	signers, _ := ctx.Value(signersKey{}).([]weave.Condition)
	return signers
}

// HasAddress reports whether addr signed the transaction.
func (a Authenticate) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
