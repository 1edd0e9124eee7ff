package feetoken

import (
	"github.com/iov-one/feeledger/amount"
	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

const (
	pathInitializeMsg        = "feetoken/initialize"
	pathTransferMsg          = "feetoken/transfer"
	pathChangeRecipientMsg   = "feetoken/changeRecipient"
	pathChangeFeeValueMsg    = "feetoken/changeFeeValue"
	pathPauseMsg             = "feetoken/pause"
	pathUnpauseMsg           = "feetoken/unpause"
	pathTransferOwnershipMsg = "feetoken/transferOwnership"
)

func init() {
	codec.RegisterMsg(&InitializeMsg{}, "feeledger/feetoken/Initialize")
	codec.RegisterMsg(&TransferMsg{}, "feeledger/feetoken/Transfer")
	codec.RegisterMsg(&ChangeRecipientMsg{}, "feeledger/feetoken/ChangeRecipient")
	codec.RegisterMsg(&ChangeFeeValueMsg{}, "feeledger/feetoken/ChangeFeeValue")
	codec.RegisterMsg(&PauseMsg{}, "feeledger/feetoken/Pause")
	codec.RegisterMsg(&UnpauseMsg{}, "feeledger/feetoken/Unpause")
	codec.RegisterMsg(&TransferOwnershipMsg{}, "feeledger/feetoken/TransferOwnership")
}

// InitializeMsg sets up a token storage space. It can be executed only once
// per storage space.
type InitializeMsg struct {
	Name         string        `json:"name"`
	Symbol       string        `json:"symbol"`
	Owner        weave.Address `json:"owner"`
	FeeRecipient weave.Address `json:"fee_recipient"`
	// FeeValue is the percentage of every transfer paid to FeeRecipient.
	FeeValue uint32 `json:"fee_value"`
}

var _ weave.Msg = (*InitializeMsg)(nil)

func (InitializeMsg) Path() string {
	return pathInitializeMsg
}

func (msg *InitializeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", msg.Owner.Validate())
	errs = errors.AppendField(errs, "FeeRecipient", msg.FeeRecipient.Validate())
	errs = errors.AppendField(errs, "FeeValue", validateFeeValue(msg.FeeValue))
	return errs
}

func validateFeeValue(v uint32) error {
	if v > MaxFeeValue {
		return errors.Wrapf(ErrInvalidFeeValue, "%d is not in [0, %d]", v, MaxFeeValue)
	}
	return nil
}

// TransferMsg moves Amount from the signer to To. A fee is deducted from
// the amount To receives.
type TransferMsg struct {
	To     weave.Address `json:"to"`
	Amount amount.Amount `json:"amount"`
}

var _ weave.Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return pathTransferMsg
}

func (msg *TransferMsg) Validate() error {
	return errors.AppendField(nil, "To", msg.To.Validate())
}

// ChangeRecipientMsg sets the account collecting transfer fees.
type ChangeRecipientMsg struct {
	NewRecipient weave.Address `json:"new_recipient"`
}

var _ weave.Msg = (*ChangeRecipientMsg)(nil)

func (ChangeRecipientMsg) Path() string {
	return pathChangeRecipientMsg
}

func (msg *ChangeRecipientMsg) Validate() error {
	return errors.AppendField(nil, "NewRecipient", msg.NewRecipient.Validate())
}

// ChangeFeeValueMsg sets the transfer fee percentage.
type ChangeFeeValueMsg struct {
	NewFeeValue uint32 `json:"new_fee_value"`
}

var _ weave.Msg = (*ChangeFeeValueMsg)(nil)

func (ChangeFeeValueMsg) Path() string {
	return pathChangeFeeValueMsg
}

func (msg *ChangeFeeValueMsg) Validate() error {
	return errors.AppendField(nil, "NewFeeValue", validateFeeValue(msg.NewFeeValue))
}

// PauseMsg halts all transfers.
type PauseMsg struct{}

var _ weave.Msg = (*PauseMsg)(nil)

func (PauseMsg) Path() string {
	return pathPauseMsg
}

func (PauseMsg) Validate() error {
	return nil
}

// UnpauseMsg resumes transfers.
type UnpauseMsg struct{}

var _ weave.Msg = (*UnpauseMsg)(nil)

func (UnpauseMsg) Path() string {
	return pathUnpauseMsg
}

func (UnpauseMsg) Validate() error {
	return nil
}

// TransferOwnershipMsg hands over all owner privileges.
type TransferOwnershipMsg struct {
	NewOwner weave.Address `json:"new_owner"`
}

var _ weave.Msg = (*TransferOwnershipMsg)(nil)

func (TransferOwnershipMsg) Path() string {
	return pathTransferOwnershipMsg
}

func (msg *TransferOwnershipMsg) Validate() error {
	return errors.AppendField(nil, "NewOwner", msg.NewOwner.Validate())
}
