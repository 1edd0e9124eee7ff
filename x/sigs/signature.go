package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/feeledger/crypto"
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
)

// SignCodeV1 prefixes the signed bytes, versioning the layout built by
// BuildSignBytes.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// SignedTx is a transaction carrying signatures over its sign bytes.
type SignedTx interface {
	// GetSignBytes returns the canonical bytes covered by signatures.
	GetSignBytes() ([]byte, error)
	GetSignatures() []*StdSignature
}

// StdSignature binds a signature to the public key that produced it and
// the sequence it was produced for.
type StdSignature struct {
	Pubkey    *crypto.PublicKey `json:"pubkey"`
	Signature *crypto.Signature `json:"signature"`
	Sequence  int64             `json:"sequence"`
}

// Validate checks that all parts of the signature are present.
func (s *StdSignature) Validate() error {
	switch {
	case s.Sequence < 0:
		return errors.Wrap(ErrInvalidSequence, "negative")
	case s.Pubkey == nil || len(s.Pubkey.Ed25519) == 0:
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	case s.Signature == nil || len(s.Signature.Ed25519) == 0:
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

// SignTx signs tx for chainID with the given sequence of signer.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	raw, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(raw, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: sig,
		Sequence:  seq,
	}, nil
}

// BuildSignBytes returns the sha512 digest of
//
//	SignCodeV1 | len(chainID) as uint8 | chainID | seq as big endian int64 | signBytes
//
// Binding the chain id and the sequence prevents a signature from being
// replayed on another chain or a second time.
func BuildSignBytes(signBytes []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !weave.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %q", chainID)
	}

	buf := make([]byte, 0, len(SignCodeV1)+1+len(chainID)+8+len(signBytes))
	buf = append(buf, SignCodeV1...)
	buf = append(buf, byte(len(chainID)))
	buf = append(buf, chainID...)
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(seq))
	buf = append(buf, nonce[:]...)
	buf = append(buf, signBytes...)

	digest := sha512.Sum512(buf)
	return digest[:], nil
}

// verifySignatures checks every signature of tx and returns the signer
// conditions in signature order. Any invalid signature fails the whole tx.
func verifySignatures(db weave.KVStore, tx SignedTx, chainID string) ([]weave.Condition, error) {
	raw, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]weave.Condition, 0, len(sigs))
	for i, sig := range sigs {
		signer, err := verifySignature(db, sig, raw, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, signer)
	}
	return signers, nil
}

// verifySignature checks one signature against the stored sequence of its
// signer and consumes that sequence.
func verifySignature(db weave.KVStore, sig *StdSignature, raw []byte, chainID string) (weave.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	bucket := NewBucket()
	user, err := bucket.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(raw, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}
	if !user.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := bucket.Save(db, user); err != nil {
		return nil, err
	}
	return user.Pubkey.Condition(), nil
}
