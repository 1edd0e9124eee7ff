package app

import (
	"context"
	"testing"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/store/iavl"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/weavetest"
	"github.com/iov-one/feeledger/weavetest/assert"
	"github.com/iov-one/feeledger/x/utils"
	abci "github.com/tendermint/tendermint/abci/types"
)

// writeHandler stores the message path under "last" and fails for
// the "test/fail" path after writing.
type writeHandler struct{}

func (writeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return &weave.CheckResult{GasAllocated: 5}, nil
}

func (writeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	path := weave.GetPath(tx)
	if err := db.Set([]byte("last"), []byte(path)); err != nil {
		return nil, err
	}
	if path == "test/fail" {
		return nil, errors.Wrap(errors.ErrState, "failing")
	}
	return &weave.DeliverResult{
		Data:   []byte(path),
		Events: []weave.Event{weave.NewEvent("written", "path", path)},
	}, nil
}

// pathDecoder treats raw bytes as the message path. "panic" panics.
func pathDecoder(raw []byte) (weave.Tx, error) {
	if string(raw) == "panic" {
		panic("cannot decode")
	}
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty tx")
	}
	return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: string(raw)}}, nil
}

func newTestBaseApp(t *testing.T) BaseApp {
	t.Helper()
	r := NewRouter()
	r.Handle(&weavetest.Msg{RoutePath: "test/ok"}, writeHandler{})
	r.Handle(&weavetest.Msg{RoutePath: "test/fail"}, writeHandler{})
	stack := ChainDecorators(
		utils.NewRecovery(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(r)

	qr := weave.NewQueryRouter()
	qr.Register("/raw", rawQuery{})
	store := NewStoreApp("test", iavl.NewMemCommitStore(), qr, context.Background())
	app := NewBaseApp(store, pathDecoder, stack, false)
	app.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, ChainID: "test-chain"}})
	return app
}

func TestBaseAppDeliver(t *testing.T) {
	app := newTestBaseApp(t)

	check := app.CheckTx([]byte("test/ok"))
	assert.Equal(t, uint32(0), check.Code)
	assert.Equal(t, int64(5), check.GasWanted)

	res := app.DeliverTx([]byte("test/ok"))
	assert.Equal(t, uint32(0), res.Code)
	assert.Equal(t, []byte("test/ok"), res.Data)
	assert.Equal(t, 1, len(res.Tags))
	assert.Equal(t, []byte("written.path"), res.Tags[0].Key)

	// the savepoint discards the write of a failing message
	res = app.DeliverTx([]byte("test/fail"))
	assert.Equal(t, errors.ErrState.ABCICode(), res.Code)

	app.EndBlock(abci.RequestEndBlock{Height: 1})
	app.Commit()

	q := app.Query(abci.RequestQuery{Path: "/raw", Data: []byte("last")})
	val, err := UnmarshalOneResult(q.Value)
	assert.Nil(t, err)
	assert.Equal(t, []byte("test/ok"), val)
}

func TestBaseAppDecodeErrors(t *testing.T) {
	app := newTestBaseApp(t)

	res := app.DeliverTx(nil)
	assert.Equal(t, errors.ErrInput.ABCICode(), res.Code)

	res = app.DeliverTx([]byte("panic"))
	assert.Equal(t, errors.ErrPanic.ABCICode(), res.Code)

	check := app.CheckTx([]byte("test/unknown"))
	assert.Equal(t, errors.ErrNotFound.ABCICode(), check.Code)
}
