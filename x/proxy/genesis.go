package proxy

import (
	"encoding/json"

	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// Initializer deploys code and constructs proxies from genesis.
type Initializer struct {
	ctrl *Controller
}

var _ weave.Initializer = (*Initializer)(nil)

// NewInitializer returns a genesis initializer for the proxy extension.
func NewInitializer(ctrl *Controller) *Initializer {
	return &Initializer{ctrl: ctrl}
}

type genesis struct {
	// Code lists the code ids deployed before any instance is created.
	Code      []string          `json:"code"`
	Instances []genesisInstance `json:"instances"`
}

type genesisInstance struct {
	Deployer weave.Address `json:"deployer"`
	// Implementation is the code id the proxy points to.
	Implementation string `json:"implementation"`
	// Init is the amino JSON encoded initializer message.
	Init json.RawMessage `json:"init"`
}

// FromGenesis reads the "proxy" section of the genesis options.
func (i *Initializer) FromGenesis(ctx weave.Context, opts weave.Options, db weave.KVStore) error {
	var gen genesis
	if err := opts.ReadOptions("proxy", &gen); err != nil {
		return err
	}
	for _, id := range gen.Code {
		if _, err := i.ctrl.Codebase().Deploy(db, id); err != nil {
			return errors.Wrapf(err, "deploy %q", id)
		}
	}
	for n, inst := range gen.Instances {
		if err := inst.Deployer.Validate(); err != nil {
			return errors.Wrapf(err, "instance %d deployer", n)
		}
		var initMsg weave.Msg
		if err := codec.UnmarshalJSON(inst.Init, &initMsg); err != nil {
			return errors.Wrapf(err, "instance %d init", n)
		}
		if err := validateInner(initMsg, true); err != nil {
			return errors.Wrapf(err, "instance %d init", n)
		}
		res, err := i.ctrl.Construct(ctx, db, inst.Deployer, CodeAddress(inst.Implementation), initMsg)
		if err != nil {
			return errors.Wrapf(err, "instance %d", n)
		}
		weave.GetLogger(ctx).Info("genesis proxy",
			"proxy", weave.Address(res.Data), "code", inst.Implementation)
	}
	return nil
}
