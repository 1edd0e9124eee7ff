package weavetest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/feeledger/weave"
)

// ParseAddress returns the binary form of a human readable address and
// fails the test if it cannot be parsed.
func ParseAddress(t testing.TB, encoded string) weave.Address {
	t.Helper()
	addr, err := weave.ParseAddress(encoded)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encoded, err)
	}
	return addr
}

// RandomAddr returns a valid address that no code or key owns.
func RandomAddr(t testing.TB) weave.Address {
	t.Helper()
	raw := make([]byte, weave.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot read random bytes: %s", err)
	}
	addr := weave.Address(raw)
	if err := addr.Validate(); err != nil {
		t.Fatalf("random address: %s", err)
	}
	return addr
}
