package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID  string        `json:"chain_id"`
	AppState weave.Options `json:"app_state"`
}

// LoadGenesis reads a genesis file from disk.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...weave.Initializer) weave.Initializer {
	return chainInitializer{inits: inits}
}

type chainInitializer struct {
	inits []weave.Initializer
}

// FromGenesis passes opts to all Initializers in the list, aborting at
// the first error.
func (c chainInitializer) FromGenesis(ctx weave.Context, opts weave.Options, kv weave.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(ctx, opts, kv); err != nil {
			return err
		}
	}
	return nil
}
