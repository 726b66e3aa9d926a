// Package types provides common types used across elastic.
package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits in one whole token.
const Decimals = 18

// Amount represents a token quantity in base units (10^-18 of a token).
// All arithmetic is unsigned 256-bit integer math, rounding toward zero.
//
// Examples:
//   - NewAmount(1) = 0.000000000000000001 tokens
//   - Tokens(100) = 100 tokens (100 * 10^18 base units)
type Amount struct {
	v uint256.Int
}

var oneToken = uint256.NewInt(1_000_000_000_000_000_000)

// NewAmount creates an Amount from a base-unit count.
func NewAmount(units uint64) Amount {
	var a Amount
	a.v.SetUint64(units)
	return a
}

// Tokens creates an Amount of whole tokens.
func Tokens(whole uint64) Amount {
	var a Amount
	a.v.Mul(uint256.NewInt(whole), oneToken)
	return a
}

// FromUint256 copies x into an Amount. A nil x yields zero.
func FromUint256(x *uint256.Int) Amount {
	var a Amount
	if x != nil {
		a.v.Set(x)
	}
	return a
}

// ParseAmount parses a decimal string of base units.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, nil
	}
	x, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("amount: parse %q: %w", s, err)
	}
	return FromUint256(x), nil
}

// MustParseAmount is like ParseAmount but panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseTokens parses a decimal token quantity such as "1000.5".
// Digits beyond Decimals are truncated.
func ParseTokens(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("amount: parse tokens %q: %w", s, err)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("amount: parse tokens %q: negative value", s)
	}
	units := d.Shift(Decimals).Truncate(0).BigInt()
	x, overflow := uint256.FromBig(units)
	if overflow {
		return Amount{}, fmt.Errorf("amount: parse tokens %q: overflow", s)
	}
	return FromUint256(x), nil
}

// Uint256 returns a copy of the underlying integer.
func (a Amount) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&a.v)
}

// Big returns the value as a big.Int.
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

// Arithmetic operations

// Add returns a + b. Panics on overflow.
func (a Amount) Add(b Amount) Amount {
	var r Amount
	if _, overflow := r.v.AddOverflow(&a.v, &b.v); overflow {
		panic("amount: addition overflow")
	}
	return r
}

// Sub returns a - b. Panics on underflow.
func (a Amount) Sub(b Amount) Amount {
	r, ok := a.CheckedSub(b)
	if !ok {
		panic("amount: subtraction underflow")
	}
	return r
}

// CheckedSub returns a - b and false when b exceeds a.
func (a Amount) CheckedSub(b Amount) (Amount, bool) {
	var r Amount
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, false
	}
	return r, true
}

// MulDiv returns floor(a * num / den) using a 512-bit intermediate.
// Panics when den is zero or the result does not fit in 256 bits.
func (a Amount) MulDiv(num, den uint64) Amount {
	if den == 0 {
		panic("amount: division by zero")
	}
	var r Amount
	if _, overflow := r.v.MulDivOverflow(&a.v, uint256.NewInt(num), uint256.NewInt(den)); overflow {
		panic("amount: multiplication overflow")
	}
	return r
}

// Scale returns floor(a * num / den) for amount-valued ratios.
// Panics when den is zero.
func (a Amount) Scale(num, den Amount) Amount {
	if den.IsZero() {
		panic("amount: division by zero")
	}
	var r Amount
	if _, overflow := r.v.MulDivOverflow(&a.v, &num.v, &den.v); overflow {
		panic("amount: multiplication overflow")
	}
	return r
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// Equal returns true if both amounts are equal.
func (a Amount) Equal(b Amount) bool { return a.v.Eq(&b.v) }

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool { return a.v.Lt(&b.v) }

// GreaterThan returns true if a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.v.Gt(&b.v) }

// Min returns the smaller of a and b.
func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Formatting methods

// String returns the base-unit count in decimal.
func (a Amount) String() string { return a.v.Dec() }

// Decimal returns the amount in whole tokens.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.v.ToBig(), -Decimals)
}

// Display returns the token quantity with grouped thousands and trailing
// fractional zeros removed, e.g. "1,000.016030912247".
func (a Amount) Display() string {
	var whole, frac uint256.Int
	whole.DivMod(&a.v, oneToken, &frac)

	out := humanize.BigComma(whole.ToBig())
	if frac.IsZero() {
		return out
	}
	digits := frac.Dec()
	digits = strings.Repeat("0", Decimals-len(digits)) + digits
	return out + "." + strings.TrimRight(digits, "0")
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the amount as a quoted base-unit string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.Dec())
}

// UnmarshalJSON accepts a quoted or bare base-unit integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*a = Amount{}
		return nil
	}
	return a.UnmarshalText([]byte(s))
}

// Sum adds all values.
func Sum(values ...Amount) Amount {
	var total Amount
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
