package app

import (
	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// ResultSet is the amino encoded list of keys or values returned by a
// query. Query responses carry one ResultSet for keys and one for values,
// always of the same length.
type ResultSet struct {
	Results [][]byte `json:"results"`
}

// Marshal encodes the result set.
func (r *ResultSet) Marshal() ([]byte, error) {
	return codec.Marshal(r)
}

// Unmarshal decodes the result set. An empty set encodes to no bytes.
func (r *ResultSet) Unmarshal(bz []byte) error {
	if len(bz) == 0 {
		r.Results = nil
		return nil
	}
	return codec.Unmarshal(bz, r)
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []weave.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []weave.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes them a consistent whole again
func JoinResults(keys, values *ResultSet) ([]weave.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrState, "mismatched result set size")
	}
	mods := make([]weave.Model, len(kref))
	for i := range mods {
		mods[i] = weave.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult parses a result set and returns its first value, or
// nil if the set is empty.
func UnmarshalOneResult(bz []byte) ([]byte, error) {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return nil, err
	}
	if len(res.Results) == 0 {
		return nil, nil
	}
	return res.Results[0], nil
}
