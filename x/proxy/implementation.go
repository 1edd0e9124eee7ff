package proxy

import (
	"github.com/iov-one/feeledger/weave"
)

// Implementation is a logic module that a proxy delegates to. It holds no
// state of its own: every call receives the storage space of the proxy it
// is executed for.
type Implementation interface {
	weave.Handler

	// CodeID is the unique name the implementation is registered under,
	// for example "feetoken/v1".
	CodeID() string

	// ProxiableSlot declares the storage slot the implementation expects
	// the proxy to keep its address in. A proxy can only point to an
	// implementation that declares ImplementationSlot.
	ProxiableSlot() []byte

	// Query executes a read only view.
	Query(db weave.ReadOnlyKVStore, view string, args []byte) ([]byte, error)

	// AuthorizeUpgrade returns an error unless the caller authenticated in
	// ctx may replace this implementation with newImpl.
	AuthorizeUpgrade(ctx weave.Context, db weave.ReadOnlyKVStore, newImpl weave.Address) error
}

// InitializerDisabler is implemented by logic modules that guard their
// initializer. When such module is deployed, its own storage space is
// locked so that the code address itself can never be initialized.
type InitializerDisabler interface {
	DisableInitializers(db weave.KVStore) error
}
