package proxy

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/x"
)

const (
	deployCost    = 1000
	constructCost = 500
	upgradeCost   = 100
)

// RegisterRoutes registers handlers for all proxy messages.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(&DeployMsg{}, &deployHandler{ctrl: ctrl})
	r.Handle(&ConstructMsg{}, &constructHandler{auth: auth, ctrl: ctrl})
	r.Handle(&CallMsg{}, &callHandler{ctrl: ctrl})
	r.Handle(&UpgradeMsg{}, &upgradeHandler{ctrl: ctrl})
}

type deployHandler struct {
	ctrl *Controller
}

var _ weave.Handler = (*deployHandler)(nil)

func (h *deployHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg DeployMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &weave.CheckResult{GasAllocated: deployCost}, nil
}

func (h *deployHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg DeployMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	addr, err := h.ctrl.Codebase().Deploy(db, msg.CodeID)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{
		Data: addr,
		Events: []weave.Event{
			weave.NewEvent("deployed", "code", msg.CodeID, "address", addr.String()),
		},
	}, nil
}

type constructHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ weave.Handler = (*constructHandler)(nil)

func (h *constructHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	deployer, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	res, err := h.ctrl.CheckConstruct(ctx, db, deployer, msg.Implementation, msg.Init)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += constructCost
	return res, nil
}

func (h *constructHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	deployer, msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return h.ctrl.Construct(ctx, db, deployer, msg.Implementation, msg.Init)
}

func (h *constructHandler) validate(ctx weave.Context, tx weave.Tx) (weave.Address, *ConstructMsg, error) {
	var msg ConstructMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	deployer, err := x.Caller(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return deployer, &msg, nil
}

type callHandler struct {
	ctrl *Controller
}

var _ weave.Handler = (*callHandler)(nil)

func (h *callHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg CallMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.CheckCall(ctx, db, msg.Target, msg.Call)
}

func (h *callHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg CallMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.Call(ctx, db, msg.Target, msg.Call)
}

type upgradeHandler struct {
	ctrl *Controller
}

var _ weave.Handler = (*upgradeHandler)(nil)

func (h *upgradeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	var msg UpgradeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	res, err := h.ctrl.CheckUpgrade(ctx, db, msg.Proxy, msg.Implementation, msg.Call)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += upgradeCost
	return res, nil
}

func (h *upgradeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	var msg UpgradeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return h.ctrl.Upgrade(ctx, db, msg.Proxy, msg.Implementation, msg.Call)
}
