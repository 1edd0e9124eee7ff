package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/feeledger/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	// appStateKey is the key in the genesis json where all info
	// on initializing the app can be found
	appStateKey = "app_state"
	dirConfig   = "config"
	genesisFile = "genesis.json"
	flagForce   = "f"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd will try to update the genesis file with the app_state
// produced by gen. The genesis file must already exist, for example
// created with "tendermint init".
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	force := initFlags.Bool(flagForce, false, "overwrite existing app_state")
	if err := initFlags.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	genFile := filepath.Join(home, dirConfig, genesisFile)
	if _, err := os.Stat(genFile); err != nil {
		return errors.Wrapf(errors.ErrNotFound, "genesis file %s: %s", genFile, err)
	}

	options, err := gen(initFlags.Args())
	if err != nil {
		return err
	}
	if err := addGenesisOptions(genFile, options, *force); err != nil {
		return err
	}
	logger.Info("App initialized", "genesis", genFile)
	return nil
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage, force bool) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	if state, ok := doc[appStateKey]; ok && len(state) > 0 && string(state) != "null" && !force {
		return errors.Wrap(errors.ErrDuplicate, "app_state already set, use -f to overwrite")
	}

	doc[appStateKey] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return ioutil.WriteFile(filename, out, 0600)
}
