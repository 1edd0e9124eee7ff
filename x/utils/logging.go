package utils

import (
	"time"

	"github.com/iov-one/feeledger/weave"
)

// Logging writes one line per transaction with its route and how long the
// wrapped handler took. Failures are logged as errors. Successful checks go
// to debug and successful deliveries to info.
type Logging struct{}

var _ weave.Decorator = Logging{}

// NewLogging returns a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	started := time.Now()
	res, err := next.Check(ctx, db, tx)
	line := txLine{ctx: ctx, tx: tx, started: started, err: err, verbose: true}
	if err == nil {
		line.log = res.Log
	}
	line.write()
	return res, err
}

func (Logging) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	started := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	line := txLine{ctx: ctx, tx: tx, started: started, err: err}
	if err == nil {
		line.log = res.Log
	}
	line.write()
	return res, err
}

type txLine struct {
	ctx     weave.Context
	tx      weave.Tx
	started time.Time
	log     string
	err     error
	// verbose lines are only interesting while debugging.
	verbose bool
}

func (l txLine) write() {
	logger := weave.GetLogger(l.ctx).With(
		"path", weave.GetPath(l.tx),
		"micros", time.Since(l.started).Microseconds(),
	)
	if l.err != nil {
		logger.Error(l.log, "err", l.err)
		return
	}
	if l.verbose {
		logger.Debug(l.log)
		return
	}
	logger.Info(l.log)
}
