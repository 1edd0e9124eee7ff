package app

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp is the full ABCI application. It decodes transactions and runs
// them through the handler stack, CheckTx against the check pad and
// DeliverTx against the deliver pad of the embedded StoreApp.
type BaseApp struct {
	*StoreApp
	decode  weave.TxDecoder
	handler weave.Handler
	// debug exposes internal error details in ABCI logs.
	debug bool
}

var _ abci.Application = BaseApp{}

func NewBaseApp(store *StoreApp, decode weave.TxDecoder, handler weave.Handler, debug bool) BaseApp {
	return BaseApp{StoreApp: store, decode: decode, handler: handler, debug: debug}
}

func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.decodeTx(raw)
	if err != nil {
		return weave.CheckTxError(err, b.debug)
	}
	ctx := b.txContext("check_tx", tx)
	res, err := b.handler.Check(ctx, b.state.check, tx)
	return weave.CheckOrError(res, err, b.debug)
}

func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.decodeTx(raw)
	if err != nil {
		return weave.DeliverTxError(err, b.debug)
	}
	ctx := b.txContext("deliver_tx", tx)
	res, err := b.handler.Deliver(ctx, b.state.deliver, tx)
	return weave.DeliverOrError(res, err, b.debug)
}

func (b BaseApp) txContext(call string, tx weave.Tx) weave.Context {
	return weave.WithLogInfo(b.blockCtx, "call", call, "path", weave.GetPath(tx))
}

// decodeTx turns a decoder panic on malformed bytes into an error.
func (b BaseApp) decodeTx(raw []byte) (tx weave.Tx, err error) {
	defer errors.Recover(&err)
	return b.decode(raw)
}
