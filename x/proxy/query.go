package proxy

import (
	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// RegisterQuery exposes proxy state and delegated views.
//
//	/proxy/implementation  data is a proxy address, returns its implementation
//	/proxy/code            data is a code address, returns its code id
//	/proxy/view            data is an amino encoded ViewRequest
func RegisterQuery(qr weave.QueryRouter, ctrl *Controller) {
	qr.Register("/proxy/implementation", implementationQuery{ctrl: ctrl})
	qr.Register("/proxy/code", codeQuery{})
	qr.Register("/proxy/view", viewQuery{ctrl: ctrl})
}

type implementationQuery struct {
	ctrl *Controller
}

func (q implementationQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
	}
	impl, err := q.ctrl.ImplementationOf(db, data)
	if ErrNotProxy.Is(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []weave.Model{weave.Pair(data, impl)}, nil
}

type codeQuery struct{}

func (codeQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
	}
	raw, err := db.Get(codeKey(data))
	if err != nil || raw == nil {
		return nil, err
	}
	return []weave.Model{weave.Pair(data, raw)}, nil
}

type viewQuery struct {
	ctrl *Controller
}

func (q viewQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
	}
	var req ViewRequest
	if err := codec.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(err, "view request")
	}
	if err := req.Target.Validate(); err != nil {
		return nil, errors.Wrap(err, "target")
	}
	res, err := q.ctrl.View(db, req.Target, req.View, req.Args)
	if err != nil {
		return nil, err
	}
	return []weave.Model{weave.Pair([]byte(req.View), res)}, nil
}
