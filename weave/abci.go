package weave

import (
	"github.com/iov-one/feeledger/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// DeliverOrError returns the DeliverTx response of a handler call.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError returns the CheckTx response of a handler call.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// ToABCI converts the result into a response. Events are flattened into
// tags so that tendermint can index the transaction by them.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    Tags(d.Events),
		GasUsed: d.GasUsed,
	}
}

// ToABCI converts the result into a response.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverTxError reports a failed delivery. See errors.ABCIInfo for what
// is disclosed of err.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := errorInfo("cannot deliver tx", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError reports a rejected check. See errors.ABCIInfo for what is
// disclosed of err.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := errorInfo("cannot check tx", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func errorInfo(action string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, action + ": " + log
}
