package utils

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// Recovery turns a panic below it into an ErrPanic error, so that a faulty
// handler fails its transaction instead of the node.
type Recovery struct{}

var _ weave.Decorator = Recovery{}

// NewRecovery returns a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (_ *weave.CheckResult, err error) {
	defer recovered(ctx, &err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (_ *weave.DeliverResult, err error) {
	defer recovered(ctx, &err)
	return next.Deliver(ctx, db, tx)
}

// recovered must be deferred directly for recover to see the panic.
func recovered(ctx weave.Context, err *error) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(errors.ErrPanic, "%v", r)
		weave.GetLogger(ctx).Error("handler panic", "err", *err)
	}
}
