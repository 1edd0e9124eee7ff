/*
Package sigs authenticates transactions by their ed25519 signatures and
keeps a per signer sequence so that a signed transaction runs once.
*/
package sigs

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// verifyCost is the gas charged in CheckTx for every valid signature.
const verifyCost = 500

// RegisterQuery exposes the signer sequences under "/auth".
func RegisterQuery(qr weave.QueryRouter) {
	qr.Register("/auth", NewBucket())
}

// Decorator verifies the signatures of a SignedTx and makes the signers
// available to the rest of the stack through Authenticate. Transactions
// that carry no signatures pass through untouched.
type Decorator struct {
	allowUnsigned bool
}

var _ weave.Decorator = Decorator{}

// NewDecorator returns a decorator rejecting signed transactions without
// any signature.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a copy of d accepting an empty signature list.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowUnsigned = true
	return d
}

func (d Decorator) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	ctx, n, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += int64(n * verifyCost)
	return res, nil
}

func (d Decorator) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	ctx, _, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

// authenticate verifies every signature of tx, bumping the sequence of
// each signer, and returns a context carrying the signers.
func (d Decorator) authenticate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (weave.Context, int, error) {
	stx, ok := tx.(SignedTx)
	if !ok {
		return ctx, 0, nil
	}
	signers, err := verifySignatures(db, stx, weave.GetChainID(ctx))
	if err != nil {
		return nil, 0, errors.Wrap(err, "cannot verify signatures")
	}
	if len(signers) == 0 && !d.allowUnsigned {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), len(signers), nil
}
