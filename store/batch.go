package store

// op is a single pending write. A nil value with del set removes the key.
type op struct {
	key   []byte
	value []byte
	del   bool
}

func (o op) apply(out SetDeleter) error {
	if o.del {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// NonAtomicBatch queues writes in memory and replays them in order on
// Write. A failure half way leaves the earlier writes applied, so it must
// only front in-memory stores.
type NonAtomicBatch struct {
	out SetDeleter
	ops []op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch returns an empty batch writing to out.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

// Set queues a write of key.
func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, op{key: key, value: value})
	return nil
}

// Delete queues a removal of key.
func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: key, del: true})
	return nil
}

// Write replays all queued operations and empties the batch.
func (b *NonAtomicBatch) Write() error {
	for _, o := range b.ops {
		if err := o.apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// Len returns the number of queued operations.
func (b *NonAtomicBatch) Len() int {
	return len(b.ops)
}

// EmptyKVStore holds nothing and drops every write. It is the bottom layer
// of MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get([]byte) ([]byte, error)  { return nil, nil }
func (EmptyKVStore) Has([]byte) (bool, error)    { return false, nil }
func (EmptyKVStore) Set(key, value []byte) error { return nil }
func (EmptyKVStore) Delete([]byte) error         { return nil }
func (e EmptyKVStore) NewBatch() Batch           { return NewNonAtomicBatch(e) }
func (EmptyKVStore) Iterator(_, _ []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}
func (EmptyKVStore) ReverseIterator(_, _ []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}
