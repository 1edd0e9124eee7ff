package weavetest

import "github.com/iov-one/feeledger/weave"

// calls counts how many times each side of a handler was run.
type calls struct {
	checks   int
	delivers int
}

// CheckCallCount returns the number of Check calls, failed ones included.
func (c *calls) CheckCallCount() int { return c.checks }

// DeliverCallCount returns the number of Deliver calls, failed ones included.
func (c *calls) DeliverCallCount() int { return c.delivers }

// CallCount returns the number of Check and Deliver calls.
func (c *calls) CallCount() int { return c.checks + c.delivers }

// Handler answers every call with a fixed result, or with CheckErr and
// DeliverErr when set.
type Handler struct {
	calls

	CheckResult   weave.CheckResult
	CheckErr      error
	DeliverResult weave.DeliverResult
	DeliverErr    error
}

var _ weave.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	h.checks++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	h.delivers++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

// Decorator passes every call to the next handler unless CheckErr or
// DeliverErr is set, in which case that error is returned instead.
type Decorator struct {
	calls

	CheckErr   error
	DeliverErr error
}

var _ weave.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	d.checks++
	if d.CheckErr != nil {
		return &weave.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	d.delivers++
	if d.DeliverErr != nil {
		return &weave.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

// Decorate returns a handler running h behind d.
func Decorate(h weave.Handler, d weave.Decorator) weave.Handler {
	return decorated{handler: h, decorator: d}
}

type decorated struct {
	handler   weave.Handler
	decorator weave.Decorator
}

func (d decorated) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return d.decorator.Check(ctx, db, tx, d.handler)
}

func (d decorated) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	return d.decorator.Deliver(ctx, db, tx, d.handler)
}

// Tx carries a single message. Err, when set, is returned instead of it.
type Tx struct {
	Msg weave.Msg
	Err error
}

var _ weave.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (weave.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg is routed by RoutePath and fails validation with Err.
type Msg struct {
	RoutePath string
	Err       error
}

var _ weave.Msg = (*Msg)(nil)

func (m *Msg) Path() string { return m.RoutePath }

func (m *Msg) Validate() error { return m.Err }
