package sigs

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/x"
)

// RegisterRoutes registers the sequence bump handler.
func RegisterRoutes(r weave.Registry, auth x.Authenticator) {
	r.Handle(&BumpSequenceMsg{}, &bumpSequenceHandler{bucket: NewBucket(), auth: auth})
}

// bumpSequenceHandler moves the sequence of the main signer forward,
// voiding transactions signed for the skipped values.
type bumpSequenceHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

func (h *bumpSequenceHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.load(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h *bumpSequenceHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	user, msg, err := h.load(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// The decorator already consumed one value for this transaction.
	if extra := int64(msg.Increment) - 1; extra > 0 {
		user.Sequence += extra
		if err := h.bucket.Save(db, user); err != nil {
			return nil, errors.Wrap(err, "save user")
		}
	}
	return &weave.DeliverResult{}, nil
}

func (h *bumpSequenceHandler) load(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*UserData, *BumpSequenceMsg, error) {
	var msg BumpSequenceMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	user, err := h.bucket.Get(db, signer.Address())
	switch {
	case err != nil:
		return nil, nil, errors.Wrap(err, "bucket")
	case user == nil:
		return nil, nil, errors.Wrap(errors.ErrNotFound, "no sequence")
	case user.Sequence+int64(msg.Increment) > maxSequenceValue:
		return nil, nil, errors.Wrap(errors.ErrOverflow, "user sequence")
	}
	return user, &msg, nil
}
