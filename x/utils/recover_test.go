package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/store"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	ctx := weave.WithLogger(context.Background(), log.NewTMLogger(log.NewSyncWriter(&buf)))
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "feetoken/transfer"}}
	h := exploding{}

	assert.Panics(t, func() { _, _ = h.Check(ctx, db, tx) })

	_, err := NewRecovery().Check(ctx, db, tx, h)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.True(t, strings.Contains(err.Error(), "balance underflow"), err.Error())

	_, err = NewRecovery().Deliver(ctx, db, tx, h)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.True(t, strings.Contains(buf.String(), "handler panic"), buf.String())

	// Nothing to recover from, results pass through untouched.
	ok := &weavetest.Handler{DeliverResult: weave.DeliverResult{Log: "done"}}
	res, err := NewRecovery().Deliver(ctx, db, tx, ok)
	assert.NoError(t, err)
	assert.Equal(t, "done", res.Log)
}

type exploding struct{}

func (exploding) Check(weave.Context, weave.KVStore, weave.Tx) (*weave.CheckResult, error) {
	panic("balance underflow")
}

func (exploding) Deliver(weave.Context, weave.KVStore, weave.Tx) (*weave.DeliverResult, error) {
	panic("balance underflow")
}
