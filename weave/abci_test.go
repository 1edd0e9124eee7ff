package weave_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	"github.com/stretchr/testify/assert"
)

func TestCreateErrorResult(t *testing.T) {
	cases := map[string]struct {
		err  error
		log  string
		code uint32
	}{
		"stdlib error is redacted": {
			err:  fmt.Errorf("base"),
			log:  "internal error",
			code: 1,
		},
		"registered error": {
			err:  errors.Wrap(errors.ErrUnauthorized, "nonce"),
			log:  "nonce: unauthorized",
			code: errors.ErrUnauthorized.ABCICode(),
		},
		"nested error keeps inner code": {
			err:  errors.Nest(errors.ErrHuman, errors.ErrNotFound.New("code"), "call"),
			log:  "coding error: call: code: not found",
			code: errors.ErrNotFound.ABCICode(),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			dres := weave.DeliverTxError(tc.err, false)
			assert.True(t, dres.IsErr())
			assert.True(t, strings.HasSuffix(dres.Log, tc.log), dres.Log)
			assert.Equal(t, tc.code, dres.Code)

			cres := weave.CheckTxError(tc.err, false)
			assert.True(t, cres.IsErr())
			assert.True(t, strings.HasSuffix(cres.Log, tc.log), cres.Log)
			assert.Equal(t, tc.code, cres.Code)
		})
	}
}

func TestCreateResults(t *testing.T) {
	d, msg := []byte{1, 3, 4}, "got it"
	dres := weave.DeliverResult{
		Data: d,
		Log:  msg,
		Events: []weave.Event{
			weave.NewEvent("transfer", "from", "A", "to", "B"),
		},
	}
	ad := dres.ToABCI()
	assert.EqualValues(t, d, ad.Data)
	assert.Equal(t, msg, ad.Log)
	if assert.Len(t, ad.Tags, 2) {
		assert.Equal(t, "transfer.from", string(ad.Tags[0].Key))
		assert.Equal(t, "A", string(ad.Tags[0].Value))
		assert.Equal(t, "transfer.to", string(ad.Tags[1].Key))
	}

	cres := weave.CheckResult{GasAllocated: 12345, Log: "aok"}
	ac := cres.ToABCI()
	assert.Equal(t, "aok", ac.Log)
	assert.Equal(t, int64(12345), ac.GasWanted)
	assert.Empty(t, ac.Data)

	ok := weave.DeliverOrError(&dres, nil, false)
	assert.False(t, ok.IsErr())
	failed := weave.CheckOrError(nil, errors.ErrEmpty, false)
	assert.True(t, failed.IsErr())
}

func TestEvent(t *testing.T) {
	ev := weave.NewEvent("upgraded", "proxy", "P", "implementation", "I")
	assert.Equal(t, "P", ev.Attr("proxy"))
	assert.Equal(t, "I", ev.Attr("implementation"))
	assert.Equal(t, "", ev.Attr("missing"))

	assert.Panics(t, func() { weave.NewEvent("odd", "key") })
}
