package weave

// ReadOnlyKVStore reads ledger state. Get and Has panic on a nil key.
type ReadOnlyKVStore interface {
	// Get returns nil for a missing key.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Iterator walks [start, end) in ascending key order. A nil bound is
	// open. The range must not be written to while the iterator is open.
	Iterator(start, end []byte) (Iterator, error)
	// ReverseIterator walks [start, end) in descending key order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half shared by stores and batches. Callers must
// not modify keys or values after handing them over.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the store every handler receives.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects writes and applies them to its store on Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator is a cursor over a key range:
//
//	it, err := db.Iterator(start, end)
//	...
//	defer it.Close()
//	for ; it.Valid(); it.Next() {
//		use(it.Key(), it.Value())
//	}
//
// Next, Key and Value panic once Valid returned false. Returned slices are
// read only.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can open a scratch pad on top of itself.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers writes over a parent store, in the way a SQL
// savepoint does. Reads see the buffered writes. Write flushes them to the
// parent and Discard drops them. Cache wraps nest.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is the persistent root of the ledger state. Every Commit
// produces a new version with its merkle root.
type CommitKVStore interface {
	// Get reads the last committed version.
	Get(key []byte) ([]byte, error)
	CacheWrap() KVCacheWrap
	Commit() (CommitID, error)
	// LoadLatestVersion opens the newest complete version, which after a
	// crash during Commit may be the one before it.
	LoadLatestVersion() error
	LatestVersion() (CommitID, error)
}

// CommitID identifies a committed version by height and merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}

// Model is one stored record.
type Model struct {
	Key   []byte
	Value []byte
}

func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}
