package proxy

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/store"
	"github.com/iov-one/feeledger/weave"
)

var storagePrefix = []byte("s:")

// rawStorage returns the storage space owned by addr, including the proxy
// slots.
func rawStorage(db weave.KVStore, addr weave.Address) weave.KVStore {
	prefix := make([]byte, 0, len(storagePrefix)+len(addr))
	prefix = append(prefix, storagePrefix...)
	prefix = append(prefix, addr...)
	return store.NewPrefixStore(db, prefix)
}

// Storage returns the storage space owned by addr as seen by implementation
// code. Every reserved slot is hidden and cannot be written.
func Storage(db weave.KVStore, addr weave.Address) weave.KVStore {
	return guarded{kv: rawStorage(db, addr)}
}

// ReadOnlyStorage is Storage over a read only store. Any write fails with
// ErrImmutable.
func ReadOnlyStorage(db weave.ReadOnlyKVStore, addr weave.Address) weave.KVStore {
	return Storage(readOnly{db}, addr)
}

type guarded struct {
	kv weave.KVStore
}

var _ weave.KVStore = guarded{}

func (g guarded) Get(key []byte) ([]byte, error) {
	if IsReserved(key) {
		return nil, errors.Wrap(ErrReservedSlot, "read")
	}
	return g.kv.Get(key)
}

func (g guarded) Has(key []byte) (bool, error) {
	if IsReserved(key) {
		return false, errors.Wrap(ErrReservedSlot, "read")
	}
	return g.kv.Has(key)
}

func (g guarded) Set(key, value []byte) error {
	if IsReserved(key) {
		return errors.Wrap(ErrReservedSlot, "write")
	}
	return g.kv.Set(key, value)
}

func (g guarded) Delete(key []byte) error {
	if IsReserved(key) {
		return errors.Wrap(ErrReservedSlot, "delete")
	}
	return g.kv.Delete(key)
}

func (g guarded) NewBatch() weave.Batch {
	return store.NewNonAtomicBatch(g)
}

func (g guarded) Iterator(start, end []byte) (weave.Iterator, error) {
	it, err := g.kv.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return hideReserved(it), nil
}

func (g guarded) ReverseIterator(start, end []byte) (weave.Iterator, error) {
	it, err := g.kv.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return hideReserved(it), nil
}

func hideReserved(it weave.Iterator) weave.Iterator {
	all := store.ReadAll(it)
	visible := all[:0]
	for _, m := range all {
		if !IsReserved(m.Key) {
			visible = append(visible, m)
		}
	}
	return store.NewSliceIterator(visible)
}

type readOnly struct {
	weave.ReadOnlyKVStore
}

func (readOnly) Set(key, value []byte) error {
	return errors.Wrap(errors.ErrImmutable, "read only store")
}

func (readOnly) Delete(key []byte) error {
	return errors.Wrap(errors.ErrImmutable, "read only store")
}

func (r readOnly) NewBatch() weave.Batch {
	return store.NewNonAtomicBatch(r)
}
