package utils_test

import (
	"context"
	"testing"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/store"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/weavetest"
	"github.com/iov-one/feeledger/weavetest/assert"
	"github.com/iov-one/feeledger/x/utils"
)

func TestActionTagger(t *testing.T) {
	cases := map[string]struct {
		stack weave.Handler
		tx    weave.Tx
		err   *errors.Error
		want  []string
	}{
		"simple call": {
			stack: weavetest.Decorate(&weavetest.Handler{}, utils.NewActionTagger()),
			tx:    &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "feetoken/transfer"}},
			want:  []string{"feetoken/transfer"},
		},
		"passes through error": {
			stack: weavetest.Decorate(
				&weavetest.Handler{DeliverErr: errors.ErrUnauthorized},
				utils.NewActionTagger(),
			),
			tx:  &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "feetoken/pause"}},
			err: errors.ErrUnauthorized,
		},
		"events are additive": {
			stack: weavetest.Decorate(
				&weavetest.Handler{
					DeliverResult: weave.DeliverResult{
						Events: []weave.Event{weave.NewEvent(utils.MessageEvent, utils.ActionKey, "random")},
					},
				},
				utils.NewActionTagger(),
			),
			tx:   &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "proxy/call"}},
			want: []string{"random", "proxy/call"},
		},
		"broken transaction": {
			stack: weavetest.Decorate(&weavetest.Handler{}, utils.NewActionTagger()),
			tx:    &weavetest.Tx{Err: errors.ErrMsg},
			err:   errors.ErrMsg,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			db := store.MemStore()

			res, err := tc.stack.Deliver(ctx, db, tc.tx)
			if tc.err != nil {
				assert.IsErr(t, tc.err, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, len(tc.want), len(res.Events))
			for i, w := range tc.want {
				assert.Equal(t, utils.MessageEvent, res.Events[i].Type)
				assert.Equal(t, w, res.Events[i].Attr(utils.ActionKey))
			}
		})
	}
}
