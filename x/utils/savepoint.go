package utils

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// Savepoint runs the rest of the stack inside a cache wrap, so a failing
// transaction leaves no partial writes behind. It is off for both phases
// until OnCheck or OnDeliver turns it on.
type Savepoint struct {
	check, deliver bool
}

var _ weave.Decorator = Savepoint{}

func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.check = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.deliver = true
	return s
}

func (s Savepoint) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (res *weave.CheckResult, err error) {
	if !s.check {
		return next.Check(ctx, db, tx)
	}
	err = Atomic(db, func(pad weave.KVStore) (err error) {
		res, err = next.Check(ctx, pad, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (res *weave.DeliverResult, err error) {
	if !s.deliver {
		return next.Deliver(ctx, db, tx)
	}
	err = Atomic(db, func(pad weave.KVStore) (err error) {
		res, err = next.Deliver(ctx, pad, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Atomic applies the writes of fn to db only when fn succeeds. A db that
// cannot be cache wrapped is handed to fn directly.
func Atomic(db weave.KVStore, fn func(weave.KVStore) error) error {
	c, ok := db.(weave.CacheableKVStore)
	if !ok {
		return fn(db)
	}
	pad := c.CacheWrap()
	if err := fn(pad); err != nil {
		pad.Discard()
		return err
	}
	return errors.Wrap(pad.Write(), "writing savepoint")
}
