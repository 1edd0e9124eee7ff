package feetoken

import (
	"strconv"

	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	"github.com/iov-one/feeledger/x"
	"github.com/iov-one/feeledger/x/proxy"
)

// CodeV1 is the code id the token is registered under in the codebase.
const CodeV1 = "feetoken/v1"

// Event types emitted by the token.
const (
	InitializedEvent          = "initialized"
	TransferEvent             = "transfer"
	FeeRecipientChangedEvent  = "fee_recipient_changed"
	FeeValueChangedEvent      = "fee_value_changed"
	PausedEvent               = "paused"
	UnpausedEvent             = "unpaused"
	OwnershipTransferredEvent = "ownership_transferred"
)

const (
	transferCost = 50
	adminCost    = 20
	initCost     = 200
)

// Token is the fee charging token logic. It keeps no state and can serve
// any number of proxies.
type Token struct {
	auth   x.Authenticator
	codeID string
}

var (
	_ proxy.Implementation      = (*Token)(nil)
	_ proxy.InitializerDisabler = (*Token)(nil)
)

// NewToken returns the token logic registered as CodeV1.
func NewToken(auth x.Authenticator) *Token {
	return NewTokenVersion(auth, CodeV1)
}

// NewTokenVersion returns the token logic registered under codeID. Use it
// to deploy the same logic as a new version.
func NewTokenVersion(auth x.Authenticator, codeID string) *Token {
	return &Token{auth: auth, codeID: codeID}
}

// CodeID is the identifier this version was registered under.
func (t *Token) CodeID() string {
	return t.codeID
}

// ProxiableSlot is the proxy storage key this code expects to be installed at.
func (t *Token) ProxiableSlot() []byte {
	return proxy.ImplementationSlot
}

// DisableInitializers locks db so that Initialize always fails.
func (t *Token) DisableInitializers(db weave.KVStore) error {
	v, err := initVersion(db)
	if err != nil {
		return err
	}
	if v == initializedVersion {
		return errors.Wrap(ErrAlreadyInitialized, "cannot disable")
	}
	return db.Set(keyInitialized, []byte{disabledVersion})
}

// AuthorizeUpgrade allows only the owner to upgrade.
func (t *Token) AuthorizeUpgrade(ctx weave.Context, db weave.ReadOnlyKVStore, newImpl weave.Address) error {
	_, err := t.requireOwner(ctx, db)
	return err
}

// Check validates the message without modifying the state.
func (t *Token) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get transaction message")
	}
	cost, _, err := t.execute(ctx, db, msg, false)
	if err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: cost}, nil
}

// Deliver executes the message. All checks are done before the first write.
func (t *Token) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot get transaction message")
	}
	_, events, err := t.execute(ctx, db, msg, true)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Events: events}, nil
}

func (t *Token) execute(ctx weave.Context, db weave.KVStore, msg weave.Msg, deliver bool) (int64, []weave.Event, error) {
	if msg == nil {
		return 0, nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	if err := msg.Validate(); err != nil {
		return 0, nil, errors.Wrap(err, "invalid message")
	}

	var (
		events []weave.Event
		err    error
	)
	switch msg := msg.(type) {
	case *InitializeMsg:
		events, err = t.initialize(ctx, db, msg, deliver)
		return initCost, events, err
	case *TransferMsg:
		events, err = t.transfer(ctx, db, msg, deliver)
		return transferCost, events, err
	case *ChangeRecipientMsg:
		events, err = t.changeRecipient(ctx, db, msg, deliver)
	case *ChangeFeeValueMsg:
		events, err = t.changeFeeValue(ctx, db, msg, deliver)
	case *PauseMsg:
		events, err = t.setPaused(ctx, db, true, deliver)
	case *UnpauseMsg:
		events, err = t.setPaused(ctx, db, false, deliver)
	case *TransferOwnershipMsg:
		events, err = t.transferOwnership(ctx, db, msg, deliver)
	default:
		return 0, nil, errors.Wrapf(errors.ErrMsg, "unsupported message %T", msg)
	}
	return adminCost, events, err
}

func (t *Token) initialize(ctx weave.Context, db weave.KVStore, msg *InitializeMsg, deliver bool) ([]weave.Event, error) {
	switch v, err := initVersion(db); {
	case err != nil:
		return nil, err
	case v == disabledVersion:
		return nil, errors.Wrap(ErrAlreadyInitialized, "initializers disabled")
	case v != 0:
		return nil, errors.Wrapf(ErrAlreadyInitialized, "version %d", v)
	}
	if !deliver {
		return nil, nil
	}

	writes := []struct {
		key   []byte
		value []byte
	}{
		{keyName, []byte(msg.Name)},
		{keySymbol, []byte(msg.Symbol)},
		{keyOwner, msg.Owner},
		{keyFeeRecipient, msg.FeeRecipient},
		{keyFeeValue, encodeUint64(uint64(msg.FeeValue))},
		{keyPaused, encodeBool(false)},
		{keySupply, InitialSupply.Bytes()},
		{balanceKey(msg.Owner), InitialSupply.Bytes()},
		{keyInitialized, []byte{initializedVersion}},
	}
	for _, w := range writes {
		if err := db.Set(w.key, w.value); err != nil {
			return nil, errors.Wrapf(err, "set %s", w.key)
		}
	}

	weave.GetLogger(ctx).Info("token initialized",
		"name", msg.Name, "symbol", msg.Symbol, "owner", msg.Owner)
	return []weave.Event{
		weave.NewEvent(InitializedEvent, "version", strconv.Itoa(int(initializedVersion))),
		weave.NewEvent(TransferEvent, "from", "", "to", msg.Owner.String(), "amount", InitialSupply.String()),
	}, nil
}

func (t *Token) transfer(ctx weave.Context, db weave.KVStore, msg *TransferMsg, deliver bool) ([]weave.Event, error) {
	if err := requireInitialized(db); err != nil {
		return nil, err
	}
	from, err := x.Caller(ctx, t.auth)
	if err != nil {
		return nil, err
	}
	switch paused, err := getBool(db, keyPaused); {
	case err != nil:
		return nil, err
	case paused:
		return nil, errors.Wrap(ErrPaused, "transfers halted")
	}
	balance, err := balanceOf(db, from)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(msg.Amount) {
		return nil, errors.Wrapf(ErrInsufficientBalance, "has %s, needs %s", balance, msg.Amount)
	}
	feeValue, err := getUint64(db, keyFeeValue)
	if err != nil {
		return nil, err
	}
	fee, err := msg.Amount.Percent(feeValue)
	if err != nil {
		return nil, errors.Wrap(err, "fee")
	}
	net, err := msg.Amount.Sub(fee)
	if err != nil {
		return nil, errors.Wrap(err, "net")
	}
	recipient, err := getAddress(db, keyFeeRecipient)
	if err != nil {
		return nil, err
	}
	if !deliver {
		return nil, nil
	}

	// Credits are applied one after another, so that a sender, receiver
	// and fee recipient being the same account sum up correctly.
	if err := debit(db, from, msg.Amount); err != nil {
		return nil, err
	}
	if err := credit(db, msg.To, net); err != nil {
		return nil, err
	}
	if err := credit(db, recipient, fee); err != nil {
		return nil, err
	}

	weave.GetLogger(ctx).Debug("token transfer",
		"from", from, "to", msg.To, "net", net, "fee", fee)
	return []weave.Event{
		weave.NewEvent(TransferEvent, "from", from.String(), "to", msg.To.String(), "amount", net.String()),
		weave.NewEvent(TransferEvent, "from", from.String(), "to", recipient.String(), "amount", fee.String()),
	}, nil
}

func (t *Token) changeRecipient(ctx weave.Context, db weave.KVStore, msg *ChangeRecipientMsg, deliver bool) ([]weave.Event, error) {
	if _, err := t.requireOwner(ctx, db); err != nil {
		return nil, err
	}
	if !deliver {
		return nil, nil
	}
	if err := db.Set(keyFeeRecipient, msg.NewRecipient); err != nil {
		return nil, errors.Wrap(err, "fee recipient")
	}
	return []weave.Event{
		weave.NewEvent(FeeRecipientChangedEvent, "recipient", msg.NewRecipient.String()),
	}, nil
}

func (t *Token) changeFeeValue(ctx weave.Context, db weave.KVStore, msg *ChangeFeeValueMsg, deliver bool) ([]weave.Event, error) {
	if _, err := t.requireOwner(ctx, db); err != nil {
		return nil, err
	}
	if !deliver {
		return nil, nil
	}
	if err := db.Set(keyFeeValue, encodeUint64(uint64(msg.NewFeeValue))); err != nil {
		return nil, errors.Wrap(err, "fee value")
	}
	return []weave.Event{
		weave.NewEvent(FeeValueChangedEvent, "value", strconv.FormatUint(uint64(msg.NewFeeValue), 10)),
	}, nil
}

func (t *Token) setPaused(ctx weave.Context, db weave.KVStore, pause bool, deliver bool) ([]weave.Event, error) {
	owner, err := t.requireOwner(ctx, db)
	if err != nil {
		return nil, err
	}
	paused, err := getBool(db, keyPaused)
	if err != nil {
		return nil, err
	}
	switch {
	case pause && paused:
		return nil, errors.Wrap(ErrPaused, "already paused")
	case !pause && !paused:
		return nil, errors.Wrap(ErrNotPaused, "cannot unpause")
	}
	if !deliver {
		return nil, nil
	}
	if err := db.Set(keyPaused, encodeBool(pause)); err != nil {
		return nil, errors.Wrap(err, "paused")
	}

	ev := UnpausedEvent
	if pause {
		ev = PausedEvent
	}
	weave.GetLogger(ctx).Info("token "+ev, "owner", owner)
	return []weave.Event{weave.NewEvent(ev, "account", owner.String())}, nil
}

func (t *Token) transferOwnership(ctx weave.Context, db weave.KVStore, msg *TransferOwnershipMsg, deliver bool) ([]weave.Event, error) {
	owner, err := t.requireOwner(ctx, db)
	if err != nil {
		return nil, err
	}
	if !deliver {
		return nil, nil
	}
	if err := db.Set(keyOwner, msg.NewOwner); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	weave.GetLogger(ctx).Info("token ownership transferred",
		"previous", owner, "owner", msg.NewOwner)
	return []weave.Event{
		weave.NewEvent(OwnershipTransferredEvent, "previous", owner.String(), "owner", msg.NewOwner.String()),
	}, nil
}

// requireOwner returns the owner if the main signer is the owner.
func (t *Token) requireOwner(ctx weave.Context, db weave.ReadOnlyKVStore) (weave.Address, error) {
	if err := requireInitialized(db); err != nil {
		return nil, err
	}
	owner, err := getAddress(db, keyOwner)
	if err != nil {
		return nil, err
	}
	caller, err := x.Caller(ctx, t.auth)
	if err != nil {
		return nil, err
	}
	if !caller.Equals(owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "caller is not the owner")
	}
	return owner, nil
}
