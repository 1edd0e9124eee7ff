package proxy

import (
	"strings"

	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

const (
	pathDeployMsg    = "proxy/deploy"
	pathConstructMsg = "proxy/construct"
	pathCallMsg      = "proxy/call"
	pathUpgradeMsg   = "proxy/upgrade"
)

func init() {
	codec.RegisterMsg(&DeployMsg{}, "feeledger/proxy/Deploy")
	codec.RegisterMsg(&ConstructMsg{}, "feeledger/proxy/Construct")
	codec.RegisterMsg(&CallMsg{}, "feeledger/proxy/Call")
	codec.RegisterMsg(&UpgradeMsg{}, "feeledger/proxy/Upgrade")
	codec.RegisterConcrete(&ViewRequest{}, "feeledger/proxy/ViewRequest")
}

// DeployMsg makes a registered implementation executable.
type DeployMsg struct {
	CodeID string `json:"code_id"`
}

var _ weave.Msg = (*DeployMsg)(nil)

func (DeployMsg) Path() string {
	return pathDeployMsg
}

func (msg *DeployMsg) Validate() error {
	if msg.CodeID == "" {
		return errors.Field("CodeID", errors.ErrEmpty, "required")
	}
	return nil
}

// ConstructMsg creates a new proxy pointing to Implementation and runs
// Init against the new proxy storage.
type ConstructMsg struct {
	Implementation weave.Address `json:"implementation"`
	Init           weave.Msg     `json:"init"`
}

var _ weave.Msg = (*ConstructMsg)(nil)

func (ConstructMsg) Path() string {
	return pathConstructMsg
}

func (msg *ConstructMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Implementation", msg.Implementation.Validate())
	errs = errors.AppendField(errs, "Init", validateInner(msg.Init, true))
	return errs
}

// CallMsg forwards Call to the code that Target executes. For a proxy this
// is its current implementation running against the proxy storage.
type CallMsg struct {
	Target weave.Address `json:"target"`
	Call   weave.Msg     `json:"call"`
}

var _ weave.Msg = (*CallMsg)(nil)

func (CallMsg) Path() string {
	return pathCallMsg
}

func (msg *CallMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Target", msg.Target.Validate())
	errs = errors.AppendField(errs, "Call", validateInner(msg.Call, true))
	return errs
}

// UpgradeMsg points Proxy to a new implementation. When Call is set, it is
// delegated to the new implementation in the same transaction.
type UpgradeMsg struct {
	Proxy          weave.Address `json:"proxy"`
	Implementation weave.Address `json:"implementation"`
	Call           weave.Msg     `json:"call,omitempty"`
}

var _ weave.Msg = (*UpgradeMsg)(nil)

func (UpgradeMsg) Path() string {
	return pathUpgradeMsg
}

func (msg *UpgradeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Proxy", msg.Proxy.Validate())
	errs = errors.AppendField(errs, "Implementation", msg.Implementation.Validate())
	errs = errors.AppendField(errs, "Call", validateInner(msg.Call, false))
	return errs
}

// validateInner rejects messages addressed to the proxy itself, so that
// privileged proxy operations can never be reached through delegation.
func validateInner(msg weave.Msg, required bool) error {
	if msg == nil {
		if required {
			return errors.Wrap(errors.ErrEmpty, "required")
		}
		return nil
	}
	if strings.HasPrefix(msg.Path(), "proxy/") {
		return errors.Wrapf(errors.ErrMsg, "cannot delegate %q", msg.Path())
	}
	return msg.Validate()
}

// ViewRequest is the query payload of a read only view executed through a
// proxy.
type ViewRequest struct {
	Target weave.Address `json:"target"`
	View   string        `json:"view"`
	Args   []byte        `json:"args,omitempty"`
}

// innerTx carries a delegated message to implementation code.
type innerTx struct {
	msg weave.Msg
}

var _ weave.Tx = innerTx{}

func (tx innerTx) GetMsg() (weave.Msg, error) {
	return tx.msg, nil
}
