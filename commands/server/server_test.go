package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/feeledger/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func writeGenesis(t *testing.T, doc string) (home string, cleanup func()) {
	t.Helper()
	home, err := ioutil.TempDir("", "feeledger-init-")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(home, dirConfig), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(home, dirConfig, genesisFile), []byte(doc), 0600))
	return home, func() { os.RemoveAll(home) }
}

func readAppState(t *testing.T, home string) json.RawMessage {
	t.Helper()
	raw, err := ioutil.ReadFile(filepath.Join(home, dirConfig, genesisFile))
	require.NoError(t, err)
	var doc GenesisDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc[appStateKey]
}

func TestInitCmd(t *testing.T) {
	home, cleanup := writeGenesis(t, `{"chain_id": "test-chain-1", "validators": []}`)
	defer cleanup()

	var gotArgs []string
	gen := func(args []string) (json.RawMessage, error) {
		gotArgs = args
		return json.RawMessage(`{"proxy":{"code":["feetoken/v1"]}}`), nil
	}

	require.NoError(t, InitCmd(gen, log.NewNopLogger(), home, []string{"ABC"}))
	assert.Equal(t, []string{"ABC"}, gotArgs)
	assert.JSONEq(t, `{"proxy":{"code":["feetoken/v1"]}}`, string(readAppState(t, home)))

	err := InitCmd(gen, log.NewNopLogger(), home, nil)
	assert.True(t, errors.ErrDuplicate.Is(err))

	require.NoError(t, InitCmd(gen, log.NewNopLogger(), home, []string{"-f", "XYZ"}))
	assert.Equal(t, []string{"XYZ"}, gotArgs)
}

func TestInitCmdMissingGenesis(t *testing.T) {
	home, err := ioutil.TempDir("", "feeledger-init-")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	gen := func([]string) (json.RawMessage, error) { return json.RawMessage(`{}`), nil }
	err = InitCmd(gen, log.NewNopLogger(), home, nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestParseFlags(t *testing.T) {
	addr, debug, err := parseFlags([]string{"-bind", "tcp://0.0.0.0:1234", "-debug"})
	require.NoError(t, err)
	assert.Equal(t, "tcp://0.0.0.0:1234", addr)
	assert.True(t, debug)

	addr, debug, err = parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:26658", addr)
	assert.False(t, debug)

	_, _, err = parseFlags([]string{"-unknown"})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestStartCmdFailsBeforeServing(t *testing.T) {
	logger := log.NewNopLogger()

	var gotHome string
	var gotDebug bool
	failing := func(home string, _ log.Logger, debug bool) (abci.Application, error) {
		gotHome, gotDebug = home, debug
		return nil, errors.Wrap(errors.ErrDatabase, "no store")
	}
	err := StartCmd(failing, logger, "/tmp/ledger", []string{"-debug"})
	assert.True(t, errors.ErrDatabase.Is(err))
	assert.Equal(t, "/tmp/ledger", gotHome)
	assert.True(t, gotDebug)

	err = StartCmd(failing, logger, "/tmp/ledger", []string{"-unknown"})
	assert.True(t, errors.ErrInput.Is(err))

	// The listener cannot bind, so the signal trap is never installed.
	base := func(string, log.Logger, bool) (abci.Application, error) {
		return abci.NewBaseApplication(), nil
	}
	err = StartCmd(base, logger, "/tmp/ledger", []string{"-bind", "tcp://256.0.0.1:-1"})
	assert.True(t, errors.ErrState.Is(err))
}
