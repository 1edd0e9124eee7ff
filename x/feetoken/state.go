package feetoken

import (
	"encoding/binary"

	"github.com/iov-one/feeledger/amount"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

var (
	keyInitialized  = []byte("tok:initialized")
	keyName         = []byte("tok:name")
	keySymbol       = []byte("tok:symbol")
	keyOwner        = []byte("tok:owner")
	keyFeeRecipient = []byte("tok:feeRecipient")
	keyFeeValue     = []byte("tok:feeValue")
	keyPaused       = []byte("tok:paused")
	keySupply       = []byte("tok:supply")

	balancePrefix = []byte("bal:")
)

const (
	// initializedVersion marks a storage space initialized by Initialize.
	initializedVersion byte = 1
	// disabledVersion marks a storage space that can never be initialized.
	disabledVersion byte = 0xff

	// MaxFeeValue is the highest fee percentage.
	MaxFeeValue = 100
)

// InitialSupply is minted to the owner on initialization.
var InitialSupply = amount.Tokens(1000000)

func balanceKey(addr weave.Address) []byte {
	return append(append([]byte(nil), balancePrefix...), addr...)
}

func initVersion(db weave.ReadOnlyKVStore) (byte, error) {
	raw, err := db.Get(keyInitialized)
	if err != nil {
		return 0, errors.Wrap(err, "initialized")
	}
	if len(raw) == 0 {
		return 0, nil
	}
	return raw[0], nil
}

// requireInitialized fails for storage spaces that were never initialized,
// including disabled ones.
func requireInitialized(db weave.ReadOnlyKVStore) error {
	v, err := initVersion(db)
	if err != nil {
		return err
	}
	if v != initializedVersion {
		return errors.Wrap(errors.ErrState, "token not initialized")
	}
	return nil
}

func getString(db weave.ReadOnlyKVStore, key []byte) (string, error) {
	raw, err := db.Get(key)
	if err != nil {
		return "", errors.Wrapf(err, "get %s", key)
	}
	return string(raw), nil
}

func getAddress(db weave.ReadOnlyKVStore, key []byte) (weave.Address, error) {
	raw, err := db.Get(key)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", key)
	}
	if raw == nil {
		return nil, nil
	}
	return weave.Address(raw), nil
}

func getUint64(db weave.ReadOnlyKVStore, key []byte) (uint64, error) {
	raw, err := db.Get(key)
	if err != nil {
		return 0, errors.Wrapf(err, "get %s", key)
	}
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrModel, "%s", key)
	}
	return binary.BigEndian.Uint64(raw), nil
}

func getBool(db weave.ReadOnlyKVStore, key []byte) (bool, error) {
	raw, err := db.Get(key)
	if err != nil {
		return false, errors.Wrapf(err, "get %s", key)
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

func getAmount(db weave.ReadOnlyKVStore, key []byte) (amount.Amount, error) {
	raw, err := db.Get(key)
	if err != nil {
		return amount.Amount{}, errors.Wrapf(err, "get %s", key)
	}
	if raw == nil {
		return amount.Amount{}, nil
	}
	return amount.FromBytes(raw)
}

func encodeUint64(n uint64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, n)
	return raw
}

func encodeBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

// balanceOf returns the balance of addr, zero for unknown accounts.
func balanceOf(db weave.ReadOnlyKVStore, addr weave.Address) (amount.Amount, error) {
	return getAmount(db, balanceKey(addr))
}

// credit adds value to the balance of addr.
func credit(db weave.KVStore, addr weave.Address, value amount.Amount) error {
	bal, err := balanceOf(db, addr)
	if err != nil {
		return err
	}
	bal, err = bal.Add(value)
	if err != nil {
		return errors.Wrapf(err, "credit %s", addr)
	}
	return db.Set(balanceKey(addr), bal.Bytes())
}

// debit subtracts value from the balance of addr.
func debit(db weave.KVStore, addr weave.Address, value amount.Amount) error {
	bal, err := balanceOf(db, addr)
	if err != nil {
		return err
	}
	if bal.LessThan(value) {
		return errors.Wrapf(ErrInsufficientBalance, "%s has %s, needs %s", addr, bal, value)
	}
	bal, err = bal.Sub(value)
	if err != nil {
		return errors.Wrapf(err, "debit %s", addr)
	}
	return db.Set(balanceKey(addr), bal.Bytes())
}
