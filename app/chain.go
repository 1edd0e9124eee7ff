package app

import (
	"reflect"

	"github.com/iov-one/feeledger/weave"
)

// Decorators is a decorator stack waiting for its final handler:
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//		utils.NewSavepoint().OnDeliver(),
//	).WithHandler(router)
//
// The first decorator runs first.
type Decorators struct {
	chain []weave.Decorator
}

func ChainDecorators(chain ...weave.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a copy with decs appended. Nil decorators are dropped, so
// optional ones can be passed unconditionally.
func (d Decorators) Chain(decs ...weave.Decorator) Decorators {
	out := append([]weave.Decorator(nil), d.chain...)
	for _, dec := range decs {
		if dec == nil {
			continue
		}
		if v := reflect.ValueOf(dec); v.Kind() == reflect.Ptr && v.IsNil() {
			continue
		}
		out = append(out, dec)
	}
	return Decorators{chain: out}
}

// WithHandler closes the stack over h.
func (d Decorators) WithHandler(h weave.Handler) weave.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = layer{dec: d.chain[i], next: h}
	}
	return h
}

// layer is one decorator bound to the rest of the stack.
type layer struct {
	dec  weave.Decorator
	next weave.Handler
}

func (l layer) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return l.dec.Check(ctx, db, tx, l.next)
}

func (l layer) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	return l.dec.Deliver(ctx, db, tx, l.next)
}
