package crypto

import (
	"github.com/iov-one/feeledger/errors"
	"github.com/iov-one/feeledger/weave"
	"golang.org/x/crypto/ed25519"
)

var (
	_ PubKey = (*PublicKey)(nil)
	_ Signer = (*PrivateKey)(nil)
)

// Verify is false for any malformed key or signature.
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	switch {
	case p == nil, sig == nil:
		return false
	case len(p.Ed25519) != ed25519.PublicKeySize, len(sig.Ed25519) != ed25519.SignatureSize:
		return false
	}
	return ed25519.Verify(p.Ed25519, message, sig.Ed25519)
}

// Condition is "sigs/ed25519/<key>", or nil for an empty key.
func (p *PublicKey) Condition() weave.Condition {
	if p == nil || len(p.Ed25519) == 0 {
		return nil
	}
	return weave.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrInput, "invalid ed25519 private key")
	}
	return &Signature{Ed25519: ed25519.Sign(p.Ed25519, message)}, nil
}

// PublicKey is nil for a malformed private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil
	}
	// The second half of an ed25519 private key is its public key.
	pub := make([]byte, ed25519.PublicKeySize)
	copy(pub, p.Ed25519[ed25519.SeedSize:])
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 draws a new key from crypto/rand.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed derives a key from a 32 byte seed and panics on
// any other length. Test fixtures use it for stable keys.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}
