package weavetest

import (
	"github.com/iov-one/feeledger/crypto"
	"github.com/iov-one/feeledger/weave"
)

// NewKey returns a random ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a random key.
func NewCondition() weave.Condition {
	return NewKey().PublicKey().Condition()
}
