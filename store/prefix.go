package store

// PrefixStore scopes every key of the underlying store under a fixed
// prefix. Iteration never leaves the prefix and keys are returned
// without it.
type PrefixStore struct {
	prefix []byte
	kv     KVStore
}

var _ KVStore = (*PrefixStore)(nil)

// NewPrefixStore returns a view of kv restricted to prefix.
func NewPrefixStore(kv KVStore, prefix []byte) *PrefixStore {
	return &PrefixStore{
		prefix: append([]byte(nil), prefix...),
		kv:     kv,
	}
}

func (p *PrefixStore) key(k []byte) []byte {
	res := make([]byte, len(p.prefix)+len(k))
	copy(res, p.prefix)
	copy(res[len(p.prefix):], k)
	return res
}

// Get returns the value stored under the prefixed key.
func (p *PrefixStore) Get(key []byte) ([]byte, error) {
	return p.kv.Get(p.key(key))
}

// Has checks if the prefixed key exists.
func (p *PrefixStore) Has(key []byte) (bool, error) {
	return p.kv.Has(p.key(key))
}

// Set writes under the prefixed key.
func (p *PrefixStore) Set(key, value []byte) error {
	return p.kv.Set(p.key(key), value)
}

// Delete removes the prefixed key.
func (p *PrefixStore) Delete(key []byte) error {
	return p.kv.Delete(p.key(key))
}

// NewBatch returns a batch applied to this prefixed view.
func (p *PrefixStore) NewBatch() Batch {
	return NewNonAtomicBatch(p)
}

// Iterator ranges over [start, end) inside the prefix.
func (p *PrefixStore) Iterator(start, end []byte) (Iterator, error) {
	s, e := p.bounds(start, end)
	it, err := p.kv.Iterator(s, e)
	if err != nil {
		return nil, err
	}
	return p.strip(it), nil
}

// ReverseIterator ranges over [start, end) inside the prefix, descending.
func (p *PrefixStore) ReverseIterator(start, end []byte) (Iterator, error) {
	s, e := p.bounds(start, end)
	it, err := p.kv.ReverseIterator(s, e)
	if err != nil {
		return nil, err
	}
	return p.strip(it), nil
}

func (p *PrefixStore) bounds(start, end []byte) ([]byte, []byte) {
	s := p.key(start)
	if end != nil {
		return s, p.key(end)
	}
	_, e := PrefixRange(p.prefix)
	return s, e
}

func (p *PrefixStore) strip(it Iterator) Iterator {
	models := ReadAll(it)
	for i := range models {
		models[i].Key = models[i].Key[len(p.prefix):]
	}
	return NewSliceIterator(models)
}

// PrefixRange turns a prefix into a (start, end) range. The end is nil
// when every byte of the prefix is 0xff.
func PrefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	start := append([]byte(nil), prefix...)
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return start, end[:i+1]
		}
	}
	return start, nil
}
