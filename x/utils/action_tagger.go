package utils

import (
	"github.com/iov-one/feeledger/weave"
)

const (
	// MessageEvent is the event type ActionTagger appends to every
	// successful delivery.
	MessageEvent = "message"
	// ActionKey holds the route of the delivered message.
	ActionKey = "action"
)

// ActionTagger records the route of each delivered message as a
// message.action tag, so clients can subscribe to all transfers or all
// proxy calls without decoding transactions.
type ActionTagger struct{}

var _ weave.Decorator = ActionTagger{}

// NewActionTagger returns an ActionTagger decorator.
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (ActionTagger) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	// A tx without a message cannot be tagged, fail before running it.
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	tag := weave.NewEvent(MessageEvent, ActionKey, msg.Path())
	res.Events = append(res.Events, tag)
	return res, nil
}
