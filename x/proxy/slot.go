package proxy

import (
	"bytes"
	"crypto/sha256"
)

// ImplementationSlot is the storage key under which a proxy keeps the
// address of its current implementation. It is the sha256 of a fixed label
// minus one, so that it cannot be produced by a readable key or by hashing
// any preimage the logic module controls.
var ImplementationSlot = slot("eip1967.proxy.implementation")

func slot(label string) []byte {
	h := sha256.Sum256([]byte(label))
	for i := len(h) - 1; i >= 0; i-- {
		h[i]--
		if h[i] != 0xff {
			break
		}
	}
	return h[:]
}

// IsReserved returns true if the key belongs to the proxy and must never be
// accessed by implementation code.
func IsReserved(key []byte) bool {
	return bytes.Equal(key, ImplementationSlot)
}
