package proxy

import (
	"fmt"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

var codePrefix = []byte("_code:")

// Codebase is the set of implementations compiled into the application.
// An implementation must be deployed before proxies can point to it.
type Codebase struct {
	impls map[string]Implementation
}

// NewCodebase returns a codebase holding given implementations.
func NewCodebase(impls ...Implementation) *Codebase {
	c := &Codebase{impls: make(map[string]Implementation)}
	for _, impl := range impls {
		c.Register(impl)
	}
	return c
}

// Register adds an implementation. Registering the same code id twice
// panics.
func (c *Codebase) Register(impl Implementation) {
	id := impl.CodeID()
	if _, ok := c.impls[id]; ok {
		panic(fmt.Sprintf("code %q already registered", id))
	}
	c.impls[id] = impl
}

// CodeAddress returns the address an implementation is deployed at.
func CodeAddress(codeID string) weave.Address {
	return weave.NewCondition("proxy", "code", []byte(codeID)).Address()
}

func codeKey(addr weave.Address) []byte {
	return append(append([]byte(nil), codePrefix...), addr...)
}

// Deploy makes the implementation registered under codeID executable at
// its code address. Implementations guarding their initializer get it
// disabled in their own storage space.
func (c *Codebase) Deploy(db weave.KVStore, codeID string) (weave.Address, error) {
	impl, ok := c.impls[codeID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "code %q", codeID)
	}
	addr := CodeAddress(codeID)
	key := codeKey(addr)
	switch exists, err := db.Has(key); {
	case err != nil:
		return nil, errors.Wrap(err, "code lookup")
	case exists:
		return nil, errors.Wrapf(errors.ErrDuplicate, "code %q already deployed", codeID)
	}
	if err := db.Set(key, []byte(codeID)); err != nil {
		return nil, errors.Wrap(err, "store code")
	}
	if d, ok := impl.(InitializerDisabler); ok {
		if err := d.DisableInitializers(Storage(db, addr)); err != nil {
			return nil, errors.Wrap(err, "disable initializers")
		}
	}
	return addr, nil
}

// CodeAt returns the implementation deployed at addr.
func (c *Codebase) CodeAt(db weave.ReadOnlyKVStore, addr weave.Address) (Implementation, error) {
	raw, err := db.Get(codeKey(addr))
	if err != nil {
		return nil, errors.Wrap(err, "code lookup")
	}
	if raw == nil {
		return nil, errors.Wrapf(ErrNoCodeAtAddress, "%s", addr)
	}
	impl, ok := c.impls[string(raw)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "code %q deployed but not registered", raw)
	}
	return impl, nil
}
