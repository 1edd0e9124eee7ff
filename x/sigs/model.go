package sigs

import (
	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/crypto"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is limited by the client. The greatest supported
// nonce value at client side is
//
//	Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
const maxSequenceValue = (1 << 53) - 1

// UserData keeps the replay protection state of a single signer.
type UserData struct {
	Pubkey   *crypto.PublicKey `json:"pubkey"`
	Sequence int64             `json:"sequence"`
}

// Validate checks the stored state is consistent.
func (u *UserData) Validate() error {
	var errs error
	if seq := u.Sequence; seq < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	} else if seq > 0 && u.Pubkey == nil {
		errs = errors.Append(errs, errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey"))
	}
	return errs
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Bucket persists UserData keyed by the signer address.
type Bucket struct{}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{}
}

// DBKey returns the store key of the address.
func (Bucket) DBKey(addr weave.Address) []byte {
	return append([]byte(BucketName+":"), addr...)
}

// Get loads the user data, returning nil if none is stored.
func (b Bucket) Get(db weave.ReadOnlyKVStore, addr weave.Address) (*UserData, error) {
	raw, err := db.Get(b.DBKey(addr))
	if err != nil {
		return nil, errors.Wrap(err, "load user")
	}
	if raw == nil {
		return nil, nil
	}
	var u UserData
	if err := codec.Unmarshal(raw, &u); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	return &u, nil
}

// GetOrCreate initializes a UserData if none exist for that key
func (b Bucket) GetOrCreate(db weave.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*UserData, error) {
	u, err := b.Get(db, pubkey.Address())
	if err != nil || u != nil {
		return u, err
	}
	return &UserData{Pubkey: pubkey}, nil
}

// Save validates and stores the user data.
func (b Bucket) Save(db weave.KVStore, u *UserData) error {
	if u.Pubkey == nil {
		return errors.Wrap(errors.ErrEmpty, "pubkey")
	}
	if err := u.Validate(); err != nil {
		return err
	}
	raw, err := codec.Marshal(u)
	if err != nil {
		return err
	}
	return db.Set(b.DBKey(u.Pubkey.Address()), raw)
}

// Query answers "/auth" queries by signer address. The prefix mod is
// not supported as accounts are not enumerable.
func (b Bucket) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	if mod != weave.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported query mod %q", mod)
	}
	key := b.DBKey(data)
	raw, err := db.Get(key)
	if err != nil || raw == nil {
		return nil, err
	}
	return []weave.Model{weave.Pair(key, raw)}, nil
}

// NextNonce returns the next numeric nonce value that should be used during a
// transaction signing.
func NextNonce(db weave.ReadOnlyKVStore, signer weave.Address) (int64, error) {
	u, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, err
	}
	if u != nil {
		return u.Sequence, nil
	}
	// If not yet present, nonce counting starts with zero.
	return 0, nil
}
