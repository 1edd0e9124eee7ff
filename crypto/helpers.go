package crypto

import (
	"github.com/iov-one/feeledger/codec"
	"github.com/iov-one/feeledger/weave"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() weave.Condition
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey is the serializable form of a public key.
type PublicKey struct {
	Ed25519 []byte `json:"ed25519"`
}

// PrivateKey is the serializable form of a private key.
type PrivateKey struct {
	Ed25519 []byte `json:"ed25519"`
}

// Signature is the serializable form of a signature.
type Signature struct {
	Ed25519 []byte `json:"ed25519"`
}

// Marshal serializes the signature.
func (s *Signature) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

// Address returns the address the public key controls.
func (p *PublicKey) Address() weave.Address {
	return p.Condition().Address()
}
