package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/iov-one/feeledger/weavetest/assert"
)

// Suite holds behaviour checks every CacheableKVStore implementation must
// pass. Package tests call its methods with their own constructor.
type Suite struct {
	open func() (CacheableKVStore, func())
}

// NewSuite returns a suite opening a fresh store for every check. The
// returned function releases the store.
func NewSuite(open func() (CacheableKVStore, func())) *Suite {
	return &Suite{open: open}
}

// CacheLayers checks that writes stay inside a cache until Write and
// vanish on Discard.
func (s *Suite) CacheLayers(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()

	alice, bob, carol := []byte("bal:alice"), []byte("bal:bob"), []byte("bal:carol")

	assertHolds(t, base, alice, nil)
	assert.Nil(t, base.Set(alice, []byte("100")))
	assertHolds(t, base, alice, []byte("100"))

	tx := base.CacheWrap()
	assertHolds(t, tx, alice, []byte("100"))
	assert.Nil(t, tx.Set(bob, []byte("40")))
	assert.Nil(t, tx.Set(alice, []byte("60")))
	assertHolds(t, tx, bob, []byte("40"))
	assertHolds(t, base, bob, nil)
	assertHolds(t, base, alice, []byte("100"))

	assert.Nil(t, tx.Write())
	assertHolds(t, base, alice, []byte("60"))
	assertHolds(t, base, bob, []byte("40"))

	dropped := base.CacheWrap()
	assert.Nil(t, dropped.Set(carol, []byte("1")))
	assert.Nil(t, dropped.Delete(alice))
	dropped.Discard()
	assertHolds(t, base, carol, nil)
	assertHolds(t, base, alice, []byte("60"))

	// A cache stacked on a cache writes to its parent only.
	outer := base.CacheWrap()
	inner := outer.CacheWrap()
	assert.Nil(t, inner.Delete(bob))
	assert.Nil(t, inner.Write())
	assertHolds(t, outer, bob, nil)
	assertHolds(t, base, bob, []byte("40"))
	assert.Nil(t, outer.Write())
	assertHolds(t, base, bob, nil)
}

// Shadowing checks that a cache overrides and hides parent values.
func (s *Suite) Shadowing(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()

	k := randKeys(3, 16)
	assert.Nil(t, base.Set(k[0], []byte("parent-0")))
	assert.Nil(t, base.Set(k[1], []byte("parent-1")))

	child := base.CacheWrap()
	assert.Nil(t, child.Set(k[0], []byte("child-0")))
	assert.Nil(t, child.Delete(k[1]))
	assert.Nil(t, child.Set(k[2], []byte("child-2")))

	assertHolds(t, base, k[0], []byte("parent-0"))
	assertHolds(t, base, k[1], []byte("parent-1"))
	assertHolds(t, base, k[2], nil)

	assertHolds(t, child, k[0], []byte("child-0"))
	assertHolds(t, child, k[1], nil)
	assertHolds(t, child, k[2], []byte("child-2"))

	assert.Nil(t, child.Write())
	assertHolds(t, base, k[0], []byte("child-0"))
	assertHolds(t, base, k[1], nil)
	assertHolds(t, base, k[2], []byte("child-2"))
}

// RandomRanges compares range iteration over a cache with a sorted list of
// what must be visible, with and without data in the parent.
func (s *Suite) RandomRanges(t *testing.T) {
	const size = 40

	mine := randModels(size, 8, 32)
	parent := randModels(size, 8, 32)
	both := sortModels(append(append([]Model{}, mine...), parent...))
	mineOnly := sortModels(mine)

	cases := map[string]struct {
		parent []Model
		want   []Model
	}{
		"empty parent":  {parent: nil, want: mineOnly},
		"filled parent": {parent: parent, want: both},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			base, cleanup := s.open()
			defer cleanup()
			for _, m := range tc.parent {
				assert.Nil(t, base.Set(m.Key, m.Value))
			}
			child := base.CacheWrap()
			for _, m := range mine {
				assert.Nil(t, child.Set(m.Key, m.Value))
			}
			// Removing keys nobody wrote must not show up anywhere.
			for _, k := range randKeys(10, 8) {
				assert.Nil(t, child.Delete(k))
			}

			w := tc.want
			n := len(w)
			assertRange(t, child, nil, nil, w)
			assertRange(t, child, w[7].Key, nil, w[7:])
			assertRange(t, child, nil, w[n-5].Key, w[:n-5])
			assertRange(t, child, w[11].Key, w[30].Key, w[11:30])
		})
	}
}

// Overrides covers iteration where the cache replaces or removes parent
// keys.
func (s *Suite) Overrides(t *testing.T) {
	ms := sortModels(randModels(4, 20, 64))
	a, b, c, d := ms[0], ms[1], ms[2], ms[3]
	a2 := Pair(a.Key, []byte("replaced a"))
	c2 := Pair(c.Key, []byte("replaced c"))

	cases := map[string]struct {
		parent []Model
		set    []Model
		del    []Model
		want   []Model
	}{
		"child only":     {set: []Model{a, b, c}, want: []Model{a, b, c}},
		"parent only":    {parent: []Model{a, b, c}, want: []Model{a, b, c}},
		"both sides":     {parent: []Model{a, c}, set: []Model{b, d}, want: []Model{a, b, c, d}},
		"replace values": {parent: []Model{a, b, c}, set: []Model{a2, c2}, want: []Model{a2, b, c2}},
		"delete some":    {parent: []Model{a, b, c, d}, del: []Model{a, c}, want: []Model{b, d}},
		"delete all":     {parent: []Model{b}, set: []Model{a}, del: []Model{a, b}, want: nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			base, cleanup := s.open()
			defer cleanup()
			for _, m := range tc.parent {
				assert.Nil(t, base.Set(m.Key, m.Value))
			}
			child := base.CacheWrap()
			for _, m := range tc.set {
				assert.Nil(t, child.Set(m.Key, m.Value))
			}
			for _, m := range tc.del {
				assert.Nil(t, child.Delete(m.Key))
			}
			assertRange(t, child, nil, nil, tc.want)
			if len(tc.want) > 1 {
				assertRange(t, child, tc.want[1].Key, nil, tc.want[1:])
			}
		})
	}
}

// Prefixes checks that prefixed views share one store without seeing each
// other, through a cache and after it is written.
func (s *Suite) Prefixes(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()

	cache := base.CacheWrap()
	tok := NewPrefixStore(cache, []byte("tok:"))
	fee := NewPrefixStore(cache, []byte("fee:"))

	assert.Nil(t, tok.Set([]byte("alice"), []byte("95")))
	assert.Nil(t, tok.Set([]byte("bob"), []byte("5")))
	assert.Nil(t, fee.Set([]byte("alice"), []byte("owner")))

	assertHolds(t, tok, []byte("alice"), []byte("95"))
	assertHolds(t, fee, []byte("alice"), []byte("owner"))
	assertHolds(t, fee, []byte("bob"), nil)
	assertHolds(t, base, []byte("tok:alice"), nil)

	assert.Nil(t, cache.Write())
	assertHolds(t, base, []byte("tok:alice"), []byte("95"))

	view := NewPrefixStore(base, []byte("tok:"))
	assertRange(t, view, nil, nil, []Model{
		Pair([]byte("alice"), []byte("95")),
		Pair([]byte("bob"), []byte("5")),
	})
	it, err := view.ReverseIterator(nil, nil)
	assert.Nil(t, err)
	got := ReadAll(it)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, []byte("bob"), got[0].Key)

	assert.Nil(t, view.Delete([]byte("alice")))
	assertHolds(t, base, []byte("tok:alice"), nil)
	assertHolds(t, base, []byte("fee:alice"), []byte("owner"))
}

// assertHolds checks Get and Has of key agree with want, nil meaning the
// key is absent.
func assertHolds(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	has, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, want != nil, has)
}

// assertRange checks both iteration directions of [start, end) against
// want, given in ascending order.
func assertRange(t testing.TB, kv ReadOnlyKVStore, start, end []byte, want []Model) {
	t.Helper()
	it, err := kv.Iterator(start, end)
	assert.Nil(t, err)
	assertModels(t, want, ReadAll(it))

	it, err = kv.ReverseIterator(start, end)
	assert.Nil(t, err)
	got := ReadAll(it)
	for i, j := 0, len(got)-1; i < j; i, j = i+1, j-1 {
		got[i], got[j] = got[j], got[i]
	}
	assertModels(t, want, got)
}

func assertModels(t testing.TB, want, got []Model) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("want %d models, got %d", len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(want[i].Key, got[i].Key) {
			t.Fatalf("model %d: want key %X, got %X", i, want[i].Key, got[i].Key)
		}
		assert.Equal(t, want[i].Value, got[i].Value)
	}
}

func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := range res {
		res[i] = make([]byte, size)
		if _, err := rand.Read(res[i]); err != nil {
			panic(err)
		}
	}
	return res
}

func randModels(count, keySize, valueSize int) []Model {
	keys := randKeys(count, keySize)
	values := randKeys(count, valueSize)
	res := make([]Model, count)
	for i := range res {
		res[i] = Pair(keys[i], values[i])
	}
	return res
}

func sortModels(models []Model) []Model {
	res := append([]Model(nil), models...)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}
