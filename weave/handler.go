package weave

import (
	"encoding/json"

	"github.com/iov-one/feeledger/errors"
	"github.com/tendermint/tendermint/libs/common"
)

// Checker validates a transaction without committing to it. CheckTx runs
// it against a scratch pad that is dropped at every block.
type Checker interface {
	Check(ctx Context, db KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer executes a transaction against the block state.
type Deliverer interface {
	Deliver(ctx Context, db KVStore, tx Tx) (*DeliverResult, error)
}

// Handler processes the messages of one extension, for example token
// transfers or proxy upgrades.
type Handler interface {
	Checker
	Deliverer
}

// Decorator runs around the rest of the stack and decides whether and how
// next is called. Signature checks and savepoints are decorators.
type Decorator interface {
	Check(ctx Context, db KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, db KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is the setup side of a router. Handle panics on a malformed
// message path and on a path that already has a handler.
type Registry interface {
	Handle(Msg, Handler)
}

// CheckResult is a successful check. Failures are reported as errors.
type CheckResult struct {
	// Data is machine readable output, such as the id of a new record.
	Data []byte
	Log  string
	// GasAllocated bounds the work the delivery may do.
	GasAllocated int64
}

// DeliverResult is a successful delivery. Failures are reported as errors.
type DeliverResult struct {
	Data []byte
	Log  string
	// Events lets observers follow state changes without reading the store.
	Events  []Event
	GasUsed int64
}

// Event is a typed list of attributes, such as a "transfer" with its
// sender, recipient and amount.
type Event struct {
	Type       string
	Attributes []common.KVPair
}

// NewEvent builds an event from alternating keys and values. It panics on
// an odd number of arguments.
func NewEvent(typ string, keyvals ...string) Event {
	if len(keyvals)%2 == 1 {
		panic("event attributes must be key value pairs")
	}
	attrs := make([]common.KVPair, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		attrs = append(attrs, common.KVPair{Key: []byte(keyvals[i]), Value: []byte(keyvals[i+1])})
	}
	return Event{Type: typ, Attributes: attrs}
}

// Attr is the value of the first attribute named key, or "".
func (e Event) Attr(key string) string {
	for _, a := range e.Attributes {
		if string(a.Key) == key {
			return string(a.Value)
		}
	}
	return ""
}

// Tags flattens events into ABCI tags named "<type>.<key>", for example
// "transfer.sender".
func Tags(events []Event) []common.KVPair {
	var tags []common.KVPair
	for _, e := range events {
		for _, a := range e.Attributes {
			key := make([]byte, 0, len(e.Type)+1+len(a.Key))
			key = append(append(append(key, e.Type...), '.'), a.Key...)
			tags = append(tags, common.KVPair{Key: key, Value: a.Value})
		}
	}
	return tags
}

// Options is the genesis app state, one raw JSON document per extension.
type Options map[string]json.RawMessage

// ReadOptions decodes the document under key into obj. A missing key
// leaves obj untouched.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot read %q options: %s", key, err)
	}
	return nil
}

// Initializer loads the genesis state of one extension.
type Initializer interface {
	FromGenesis(ctx Context, opts Options, db KVStore) error
}
