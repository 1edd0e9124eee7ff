/*
Package amount provides the 256-bit unsigned quantity used for token
balances and supply.

All arithmetic is checked: an operation that would wrap returns an
error instead of a value.
*/
package amount

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/feeledger/errors"
)

// Decimals is the number of fractional digits of a whole token.
const Decimals = 18

// Size is the length of the big-endian encoding of an Amount.
const Size = 32

// percentBase is the denominator of fee percentages.
const percentBase = 100

var unit = exp10(Decimals)

func exp10(n int) uint256.Int {
	var res, ten uint256.Int
	res.SetUint64(1)
	ten.SetUint64(10)
	for i := 0; i < n; i++ {
		res.Mul(&res, &ten)
	}
	return res
}

// Amount is an unsigned 256-bit integer. The zero value is zero.
type Amount struct {
	v uint256.Int
}

// NewAmount returns an amount of base units.
func NewAmount(units uint64) Amount {
	var a Amount
	a.v.SetUint64(units)
	return a
}

// Tokens returns whole tokens expressed in base units (whole * 10^18).
// It cannot overflow for any uint64 input.
func Tokens(whole uint64) Amount {
	var a Amount
	a.v.SetUint64(whole)
	a.v.Mul(&a.v, &unit)
	return a
}

// FromBytes decodes a big-endian encoding of at most 32 bytes.
func FromBytes(raw []byte) (Amount, error) {
	var a Amount
	if len(raw) > Size {
		return a, errors.Wrapf(errors.ErrOverflow, "%d bytes", len(raw))
	}
	a.v.SetBytes(raw)
	return a, nil
}

// ParseAmount reads a base-10 representation of base units.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	s = strings.TrimSpace(s)
	if s == "" {
		return a, errors.Wrap(errors.ErrInput, "empty amount")
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return a, errors.Wrapf(errors.ErrInput, "invalid amount %q", s)
	}
	if b.Sign() < 0 {
		return a, errors.Wrapf(errors.ErrAmount, "negative amount %q", s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return a, errors.Wrapf(errors.ErrOverflow, "amount %q", s)
	}
	a.v = *v
	return a, nil
}

// MustParseAmount is ParseAmount that panics on error, for tests and constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns the 32-byte big-endian encoding.
func (a Amount) Bytes() []byte {
	b := a.v.Bytes32()
	return b[:]
}

// String returns the base-10 representation of base units.
func (a Amount) String() string {
	return a.v.ToBig().String()
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp returns -1, 0 or 1 when a is lower, equal or greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// Equals returns true if both amounts are the same.
func (a Amount) Equals(b Amount) bool {
	return a.v.Eq(&b.v)
}

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.v.Lt(&b.v)
}

// Add returns a + b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	var res Amount
	res.v.Add(&a.v, &b.v)
	if res.v.Lt(&a.v) {
		return Amount{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", a, b)
	}
	return res, nil
}

// Sub returns a - b or ErrAmount when b is greater than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.v.Lt(&b.v) {
		return Amount{}, errors.Wrapf(errors.ErrAmount, "%s - %s", a, b)
	}
	var res Amount
	res.v.Sub(&a.v, &b.v)
	return res, nil
}

// Percent returns floor(a * pct / 100) for pct in [0, 100].
// The multiplication is split on the quotient and remainder of a/100
// so that it never exceeds 256 bits.
func (a Amount) Percent(pct uint64) (Amount, error) {
	if pct > percentBase {
		return Amount{}, errors.Wrapf(errors.ErrInput, "percentage %d", pct)
	}
	var base, p, q, r Amount
	base.v.SetUint64(percentBase)
	p.v.SetUint64(pct)

	q.v.Div(&a.v, &base.v)
	r.v.Mod(&a.v, &base.v)

	// q*pct <= a, r*pct < 100*100
	q.v.Mul(&q.v, &p.v)
	r.v.Mul(&r.v, &p.v)
	r.v.Div(&r.v, &base.v)
	return q.Add(r)
}

// MarshalJSON encodes the amount as a decimal string, so that values above
// 2^53 survive JSON consumers.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(errors.ErrInput, "amount must be a string or a number")
		}
		s = n.String()
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalAmino represents the amount as a decimal string on the wire.
func (a Amount) MarshalAmino() (string, error) {
	return a.String(), nil
}

// UnmarshalAmino decodes the wire representation.
func (a *Amount) UnmarshalAmino(s string) error {
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
