package proxy

import (
	"encoding/binary"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/x/utils"
)

const (
	// UpgradedEvent is emitted every time a proxy points to a new
	// implementation, including construction.
	UpgradedEvent = "upgraded"
	// ConstructedEvent is emitted when a new proxy instance is created.
	ConstructedEvent = "constructed"
)

var noncePrefix = []byte("_nonce:")

// Controller executes proxy operations against the application store.
type Controller struct {
	codebase *Codebase
}

// NewController returns a controller delegating to code of codebase.
func NewController(codebase *Codebase) *Controller {
	return &Controller{codebase: codebase}
}

// Codebase returns the implementations known to the controller.
func (c *Controller) Codebase() *Codebase {
	return c.codebase
}

// ImplementationOf returns the current implementation address of a proxy.
// ErrNotProxy is returned if addr is not a proxy.
func (c *Controller) ImplementationOf(db weave.ReadOnlyKVStore, addr weave.Address) (weave.Address, error) {
	raw, err := rawStorage(readOnly{db}, addr).Get(ImplementationSlot)
	if err != nil {
		return nil, errors.Wrap(err, "implementation slot")
	}
	if raw == nil {
		return nil, errors.Wrapf(ErrNotProxy, "%s", addr)
	}
	return weave.Address(raw), nil
}

// resolve returns the code executed when target is called. A proxy runs
// its implementation, a code address runs its own code. In both cases the
// code executes against the storage space of target.
func (c *Controller) resolve(db weave.ReadOnlyKVStore, target weave.Address) (Implementation, error) {
	implAddr, err := c.ImplementationOf(db, target)
	switch {
	case err == nil:
		return c.codebase.CodeAt(db, implAddr)
	case ErrNotProxy.Is(err):
		return c.codebase.CodeAt(db, target)
	default:
		return nil, err
	}
}

// proxiable returns the code at addr if a proxy may point to it.
func (c *Controller) proxiable(db weave.ReadOnlyKVStore, addr weave.Address) (Implementation, error) {
	impl, err := c.codebase.CodeAt(db, addr)
	if err != nil {
		return nil, err
	}
	if !IsReserved(impl.ProxiableSlot()) {
		return nil, errors.Wrapf(ErrNotProxiable, "code %q", impl.CodeID())
	}
	return impl, nil
}

// NextProxyAddress returns the address the next proxy constructed by
// deployer receives.
func (c *Controller) NextProxyAddress(db weave.ReadOnlyKVStore, deployer weave.Address) (weave.Address, error) {
	n, err := nonce(db, deployer)
	if err != nil {
		return nil, err
	}
	return proxyAddress(deployer, n), nil
}

func proxyAddress(deployer weave.Address, n uint64) weave.Address {
	data := make([]byte, len(deployer)+8)
	copy(data, deployer)
	binary.BigEndian.PutUint64(data[len(deployer):], n)
	return weave.NewCondition("proxy", "instance", data).Address()
}

func nonceKey(deployer weave.Address) []byte {
	return append(append([]byte(nil), noncePrefix...), deployer...)
}

func nonce(db weave.ReadOnlyKVStore, deployer weave.Address) (uint64, error) {
	raw, err := db.Get(nonceKey(deployer))
	if err != nil {
		return 0, errors.Wrap(err, "nonce")
	}
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.Wrap(errors.ErrModel, "nonce")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// CheckConstruct validates that a proxy can be constructed, running the
// initializer check against the storage of the proxy that would be
// created. Nothing is written.
func (c *Controller) CheckConstruct(ctx weave.Context, db weave.KVStore, deployer, implAddr weave.Address, init weave.Msg) (*weave.CheckResult, error) {
	impl, err := c.proxiable(db, implAddr)
	if err != nil {
		return nil, err
	}
	addr, err := c.NextProxyAddress(db, deployer)
	if err != nil {
		return nil, err
	}
	res, err := impl.Check(ctx, Storage(db, addr), innerTx{msg: init})
	if err != nil {
		return nil, errors.Nest(ErrDelegationFailure, err, "initializer")
	}
	return res, nil
}

// Construct creates a new proxy owned storage space pointing to implAddr
// and delegates init to it. Either everything succeeds or nothing is
// written. The proxy address is returned as the result data.
func (c *Controller) Construct(ctx weave.Context, db weave.KVStore, deployer, implAddr weave.Address, init weave.Msg) (*weave.DeliverResult, error) {
	impl, err := c.proxiable(db, implAddr)
	if err != nil {
		return nil, err
	}

	var res *weave.DeliverResult
	err = utils.Atomic(db, func(db weave.KVStore) error {
		n, err := nonce(db, deployer)
		if err != nil {
			return err
		}
		addr := proxyAddress(deployer, n)
		if err := setUint64(db, nonceKey(deployer), n+1); err != nil {
			return err
		}
		if err := rawStorage(db, addr).Set(ImplementationSlot, implAddr); err != nil {
			return errors.Wrap(err, "implementation slot")
		}

		initRes, err := impl.Deliver(ctx, Storage(db, addr), innerTx{msg: init})
		if err != nil {
			return errors.Nest(ErrDelegationFailure, err, "initializer")
		}

		res = &weave.DeliverResult{
			Data: addr,
			Log:  initRes.Log,
			Events: append([]weave.Event{
				weave.NewEvent(ConstructedEvent, "proxy", addr.String(), "deployer", deployer.String()),
				weave.NewEvent(UpgradedEvent, "proxy", addr.String(), "implementation", implAddr.String()),
			}, initRes.Events...),
			GasUsed: initRes.GasUsed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("proxy constructed",
		"proxy", weave.Address(res.Data), "implementation", implAddr)
	return res, nil
}

// CheckCall validates a delegated call to target.
func (c *Controller) CheckCall(ctx weave.Context, db weave.KVStore, target weave.Address, msg weave.Msg) (*weave.CheckResult, error) {
	impl, err := c.resolve(db, target)
	if err != nil {
		return nil, err
	}
	res, err := impl.Check(ctx, Storage(db, target), innerTx{msg: msg})
	if err != nil {
		return nil, errors.Nest(ErrDelegationFailure, err, msg.Path())
	}
	return res, nil
}

// Call delegates msg to the code target executes, against the storage of
// target. The caller identity carried by ctx is passed through unchanged.
func (c *Controller) Call(ctx weave.Context, db weave.KVStore, target weave.Address, msg weave.Msg) (*weave.DeliverResult, error) {
	impl, err := c.resolve(db, target)
	if err != nil {
		return nil, err
	}
	var res *weave.DeliverResult
	err = utils.Atomic(db, func(db weave.KVStore) error {
		var err error
		res, err = impl.Deliver(ctx, Storage(db, target), innerTx{msg: msg})
		if err != nil {
			return errors.Nest(ErrDelegationFailure, err, msg.Path())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CheckUpgrade validates that proxy may be pointed to newImpl by the caller
// authenticated in ctx. A non nil call is checked against newImpl.
func (c *Controller) CheckUpgrade(ctx weave.Context, db weave.KVStore, proxy, newImpl weave.Address, call weave.Msg) (*weave.CheckResult, error) {
	next, err := c.authorizeUpgrade(ctx, db, proxy, newImpl)
	if err != nil {
		return nil, err
	}
	if call == nil {
		return &weave.CheckResult{}, nil
	}
	res, err := next.Check(ctx, Storage(db, proxy), innerTx{msg: call})
	if err != nil {
		return nil, errors.Nest(ErrDelegationFailure, err, call.Path())
	}
	return res, nil
}

func (c *Controller) authorizeUpgrade(ctx weave.Context, db weave.ReadOnlyKVStore, proxy, newImpl weave.Address) (Implementation, error) {
	currentAddr, err := c.ImplementationOf(db, proxy)
	if err != nil {
		return nil, err
	}
	current, err := c.codebase.CodeAt(db, currentAddr)
	if err != nil {
		return nil, errors.Wrap(err, "current implementation")
	}
	next, err := c.proxiable(db, newImpl)
	if err != nil {
		return nil, err
	}
	if err := current.AuthorizeUpgrade(ctx, ReadOnlyStorage(db, proxy), newImpl); err != nil {
		return nil, errors.Wrap(err, "upgrade not authorized")
	}
	return next, nil
}

// Upgrade points proxy to newImpl. If call is not nil, it is delegated to
// the new implementation afterwards. Both happen atomically.
func (c *Controller) Upgrade(ctx weave.Context, db weave.KVStore, proxy, newImpl weave.Address, call weave.Msg) (*weave.DeliverResult, error) {
	next, err := c.authorizeUpgrade(ctx, db, proxy, newImpl)
	if err != nil {
		return nil, err
	}

	res := &weave.DeliverResult{
		Events: []weave.Event{
			weave.NewEvent(UpgradedEvent, "proxy", proxy.String(), "implementation", newImpl.String()),
		},
	}
	err = utils.Atomic(db, func(db weave.KVStore) error {
		if err := rawStorage(db, proxy).Set(ImplementationSlot, newImpl); err != nil {
			return errors.Wrap(err, "implementation slot")
		}
		if call == nil {
			return nil
		}
		callRes, err := next.Deliver(ctx, Storage(db, proxy), innerTx{msg: call})
		if err != nil {
			return errors.Nest(ErrDelegationFailure, err, call.Path())
		}
		res.Data = callRes.Data
		res.Log = callRes.Log
		res.Events = append(res.Events, callRes.Events...)
		res.GasUsed = callRes.GasUsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Info("proxy upgraded",
		"proxy", proxy, "implementation", newImpl)
	return res, nil
}

// View runs a read only view of the code target executes, against the
// storage of target.
func (c *Controller) View(db weave.ReadOnlyKVStore, target weave.Address, view string, args []byte) ([]byte, error) {
	impl, err := c.resolve(db, target)
	if err != nil {
		return nil, err
	}
	res, err := impl.Query(ReadOnlyStorage(db, target), view, args)
	if err != nil {
		return nil, errors.Nest(ErrDelegationFailure, err, view)
	}
	return res, nil
}

func setUint64(db weave.KVStore, key []byte, n uint64) error {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], n)
	if err := db.Set(key, raw[:]); err != nil {
		return errors.Wrap(err, "store")
	}
	return nil
}
