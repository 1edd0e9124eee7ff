package sigs

import (
	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

const (
	pathBumpSequenceMsg = "sigs/bumpSequence"

	maxSequenceIncrement = 1000
	minSequenceIncrement = 1
)

func init() {
	codec.RegisterMsg(&BumpSequenceMsg{}, "feeledger/sigs/BumpSequence")
	codec.RegisterConcrete(&UserData{}, "feeledger/sigs/UserData")
}

// BumpSequenceMsg increments the sequence of the signer, invalidating
// every transaction signed for the skipped values.
type BumpSequenceMsg struct {
	Increment uint32 `json:"increment"`
}

var _ weave.Msg = (*BumpSequenceMsg)(nil)

// Validate checks the increment is within bounds.
func (msg *BumpSequenceMsg) Validate() error {
	if msg.Increment < minSequenceIncrement {
		return errors.Wrapf(errors.ErrMsg, "increment must be at least %d", minSequenceIncrement)
	}
	if msg.Increment > maxSequenceIncrement {
		return errors.Wrapf(errors.ErrMsg, "increment must not be greater than %d", maxSequenceIncrement)
	}
	return nil
}

// Path returns the routing path of the message.
func (BumpSequenceMsg) Path() string {
	return pathBumpSequenceMsg
}
