package feetoken

import (
	"encoding/binary"

	"github.com/iov-one/feeledger/amount"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// Views served by Query. Numbers are encoded as 8 byte big endian, amounts
// as 32 byte big endian, flags as a single byte and addresses raw.
const (
	ViewName         = "name"
	ViewSymbol       = "symbol"
	ViewDecimals     = "decimals"
	ViewTotalSupply  = "totalSupply"
	ViewBalanceOf    = "balanceOf"
	ViewOwner        = "owner"
	ViewFeeRecipient = "feeRecipient"
	ViewFeeValue     = "feeValue"
	ViewPaused       = "paused"
)

// Query executes a read only view.
func (t *Token) Query(db weave.ReadOnlyKVStore, view string, args []byte) ([]byte, error) {
	switch view {
	case ViewName:
		return db.Get(keyName)
	case ViewSymbol:
		return db.Get(keySymbol)
	case ViewDecimals:
		return encodeUint64(amount.Decimals), nil
	case ViewTotalSupply:
		supply, err := getAmount(db, keySupply)
		if err != nil {
			return nil, err
		}
		return supply.Bytes(), nil
	case ViewBalanceOf:
		addr := weave.Address(args)
		if err := addr.Validate(); err != nil {
			return nil, errors.Wrap(err, "account")
		}
		bal, err := balanceOf(db, addr)
		if err != nil {
			return nil, err
		}
		return bal.Bytes(), nil
	case ViewOwner:
		return db.Get(keyOwner)
	case ViewFeeRecipient:
		return db.Get(keyFeeRecipient)
	case ViewFeeValue:
		v, err := getUint64(db, keyFeeValue)
		if err != nil {
			return nil, err
		}
		return encodeUint64(v), nil
	case ViewPaused:
		paused, err := getBool(db, keyPaused)
		if err != nil {
			return nil, err
		}
		return encodeBool(paused), nil
	default:
		return nil, errors.Wrapf(errors.ErrNotFound, "view %q", view)
	}
}

// Viewer executes views of the code a target address runs.
type Viewer interface {
	View(db weave.ReadOnlyKVStore, target weave.Address, view string, args []byte) ([]byte, error)
}

// Reader decodes the views of a token reachable at a given address.
type Reader struct {
	viewer Viewer
	db     weave.ReadOnlyKVStore
	token  weave.Address
}

// NewReader returns a reader of the token at addr.
func NewReader(v Viewer, db weave.ReadOnlyKVStore, addr weave.Address) Reader {
	return Reader{viewer: v, db: db, token: addr}
}

func (r Reader) view(name string, args []byte) ([]byte, error) {
	return r.viewer.View(r.db, r.token, name, args)
}

func (r Reader) Name() (string, error) {
	raw, err := r.view(ViewName, nil)
	return string(raw), err
}

func (r Reader) Symbol() (string, error) {
	raw, err := r.view(ViewSymbol, nil)
	return string(raw), err
}

func (r Reader) Decimals() (uint64, error) {
	return r.uint64(ViewDecimals)
}

func (r Reader) FeeValue() (uint64, error) {
	return r.uint64(ViewFeeValue)
}

func (r Reader) Owner() (weave.Address, error) {
	raw, err := r.view(ViewOwner, nil)
	return weave.Address(raw), err
}

func (r Reader) FeeRecipient() (weave.Address, error) {
	raw, err := r.view(ViewFeeRecipient, nil)
	return weave.Address(raw), err
}

func (r Reader) Paused() (bool, error) {
	raw, err := r.view(ViewPaused, nil)
	if err != nil {
		return false, err
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

func (r Reader) TotalSupply() (amount.Amount, error) {
	return r.amount(ViewTotalSupply, nil)
}

// BalanceOf returns the balance of addr. Unknown accounts have a zero
// balance.
func (r Reader) BalanceOf(addr weave.Address) (amount.Amount, error) {
	return r.amount(ViewBalanceOf, addr)
}

func (r Reader) uint64(view string) (uint64, error) {
	raw, err := r.view(view, nil)
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrModel, "%s", view)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (r Reader) amount(view string, args []byte) (amount.Amount, error) {
	raw, err := r.view(view, args)
	if err != nil {
		return amount.Amount{}, err
	}
	return amount.FromBytes(raw)
}
