package store

// SliceIterator walks an already materialized, ordered list of models.
type SliceIterator struct {
	models []Model
	pos    int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator returns an iterator over models in slice order.
func NewSliceIterator(models []Model) *SliceIterator {
	return &SliceIterator{models: models}
}

// Valid reports whether Key and Value may be called.
func (it *SliceIterator) Valid() bool {
	return it.pos < len(it.models)
}

// Next advances the cursor. It panics once the iterator is exhausted.
func (it *SliceIterator) Next() {
	it.current()
	it.pos++
}

// Key returns the key under the cursor.
func (it *SliceIterator) Key() []byte {
	return it.current().Key
}

// Value returns the value under the cursor.
func (it *SliceIterator) Value() []byte {
	return it.current().Value
}

// Close drops the models. The iterator is invalid afterwards.
func (it *SliceIterator) Close() {
	it.models = nil
}

func (it *SliceIterator) current() Model {
	if !it.Valid() {
		panic("iterator exhausted")
	}
	return it.models[it.pos]
}

// ReadAll drains the iterator into a slice of models and closes it.
func ReadAll(it Iterator) []Model {
	defer it.Close()
	var res []Model
	for ; it.Valid(); it.Next() {
		res = append(res, Pair(it.Key(), it.Value()))
	}
	return res
}
