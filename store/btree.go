package store

import (
	"bytes"

	"github.com/google/btree"
)

// freeListSize bounds the btree nodes kept for reuse across cache layers.
const freeListSize = btree.DefaultFreeListSize

// MemStore returns an in-memory store with nothing beneath it.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// BTreeCacheWrap buffers writes in a btree over a read only parent. The
// buffered writes reach the parent only through batch, on Write.
type BTreeCacheWrap struct {
	tree   *btree.BTree
	free   *btree.FreeList
	parent ReadOnlyKVStore
	batch  Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns an empty cache over parent. A nil free list
// allocates a new one, nested layers share the list of their parent.
func NewBTreeCacheWrap(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(freeListSize)
	}
	return BTreeCacheWrap{
		tree:   btree.NewWithFreeList(2, free),
		free:   free,
		parent: parent,
		batch:  batch,
	}
}

// CacheWrap stacks another cache on top of this one.
func (c BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(c, c.NewBatch(), c.free)
}

// NewBatch returns a batch writing into this cache.
func (c BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(c)
}

// Write flushes the buffered writes to the parent and empties the cache.
func (c BTreeCacheWrap) Write() error {
	err := c.batch.Write()
	c.Discard()
	return err
}

// Discard drops the buffered writes. Nodes return to the free list.
func (c BTreeCacheWrap) Discard() {
	for c.tree.DeleteMin() != nil {
	}
}

// Set buffers a write of key.
func (c BTreeCacheWrap) Set(key, value []byte) error {
	c.tree.ReplaceOrInsert(entry{key: key, value: value})
	return c.batch.Set(key, value)
}

// Delete buffers a removal of key. The key stays hidden from reads through
// this cache even if the parent holds it.
func (c BTreeCacheWrap) Delete(key []byte) error {
	c.tree.ReplaceOrInsert(entry{key: key, deleted: true})
	return c.batch.Delete(key)
}

// Get returns the buffered value of key, falling back to the parent.
func (c BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e, ok := c.lookup(key); ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return c.parent.Get(key)
}

// Has reports whether key is visible through this cache.
func (c BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e, ok := c.lookup(key); ok {
		return !e.deleted, nil
	}
	return c.parent.Has(key)
}

func (c BTreeCacheWrap) lookup(key []byte) (entry, bool) {
	item := c.tree.Get(entry{key: key})
	if item == nil {
		return entry{}, false
	}
	return item.(entry), true
}

// Iterator returns the visible models in [start, end), ascending.
func (c BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	models, err := c.merged(start, end)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(models), nil
}

// ReverseIterator returns the visible models in [start, end), descending.
func (c BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	models, err := c.merged(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return NewSliceIterator(models), nil
}

// merged joins the buffered entries in [start, end) with the models of the
// parent. A buffered entry shadows the parent model of the same key.
func (c BTreeCacheWrap) merged(start, end []byte) ([]Model, error) {
	it, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	below := ReadAll(it)
	above := c.entries(start, end)

	res := make([]Model, 0, len(below)+len(above))
	for len(above) > 0 || len(below) > 0 {
		if len(above) == 0 {
			res = append(res, below...)
			break
		}
		cmp := -1
		if len(below) > 0 {
			cmp = bytes.Compare(above[0].key, below[0].Key)
		}
		if cmp > 0 {
			res = append(res, below[0])
			below = below[1:]
			continue
		}
		if cmp == 0 {
			below = below[1:]
		}
		if !above[0].deleted {
			res = append(res, Pair(above[0].key, above[0].value))
		}
		above = above[1:]
	}
	return res, nil
}

// entries returns the buffered entries in [start, end), nil meaning
// unbounded.
func (c BTreeCacheWrap) entries(start, end []byte) []entry {
	var res []entry
	collect := func(item btree.Item) bool {
		res = append(res, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		c.tree.Ascend(collect)
	case start == nil:
		c.tree.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		c.tree.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		c.tree.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return res
}

// entry is a buffered write, ordered by key.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
