// Package fixed implements the unsigned 18-decimal fixed point numbers used
// for every price, quantity and ratio handled by the daemon.
//
// Values are bounded to [0, MaxValue] where MaxValue is the largest uint192
// scaled down by 1e18. Arithmetic never wraps: results above MaxValue
// saturate to it and so does any division by zero.
package fixed

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// RoundingMode selects how results are brought back to the fixed precision.
type RoundingMode int

const (
	// Floor rounds towards zero.
	Floor RoundingMode = iota
	// Round rounds half up.
	Round
	// Ceil rounds away from zero.
	Ceil
)

// Decimals is the number of decimal places of a Fix.
const Decimals = 18

var (
	// Zero ...
	Zero = Fix{}
	// One ...
	One = Fix{decimal.NewFromInt(1)}
	// MaxValue is the saturation sentinel.
	MaxValue = Fix{maxDecimal()}

	ulp = decimal.New(1, -Decimals)
)

var (
	// ErrNegative is returned when parsing a negative number.
	ErrNegative = fmt.Errorf("fixed: value must not be negative")
	// ErrOverflow is returned when parsing a number above MaxValue.
	ErrOverflow = fmt.Errorf("fixed: value overflows")
)

func maxDecimal() decimal.Decimal {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 192), big.NewInt(1))
	return decimal.NewFromBigInt(max, -Decimals)
}

func (r RoundingMode) String() string {
	switch r {
	case Floor:
		return "FLOOR"
	case Round:
		return "ROUND"
	case Ceil:
		return "CEIL"
	default:
		return "UNKNOWN"
	}
}

// Fix is an unsigned fixed point number with 18 decimals.
type Fix struct {
	d decimal.Decimal
}

// NewFromInt returns the Fix for the given integer. Negative numbers map to
// Zero.
func NewFromInt(v int64) Fix {
	if v <= 0 {
		return Zero
	}
	return Fix{decimal.NewFromInt(v)}
}

// NewFromRatio returns num/den rounded down.
func NewFromRatio(num, den int64) Fix {
	return NewFromInt(num).Div(NewFromInt(den))
}

// NewFromString parses a decimal string. Digits beyond the 18th decimal
// place are truncated.
func NewFromString(s string) (Fix, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, err
	}
	if d.IsNegative() {
		return Zero, ErrNegative
	}
	d = d.RoundFloor(Decimals)
	if d.GreaterThan(MaxValue.d) {
		return Zero, ErrOverflow
	}
	return Fix{d}, nil
}

// MustParse is like NewFromString but panics on error.
func MustParse(s string) Fix {
	f, err := NewFromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FromDecimal converts d to a Fix with the given rounding. Negative values
// map to Zero and values above MaxValue saturate.
func FromDecimal(d decimal.Decimal, rnd RoundingMode) Fix {
	if d.Sign() <= 0 {
		return Zero
	}
	return saturate(quantize(d, Decimals, rnd))
}

// Decimal returns the underlying decimal.
func (f Fix) Decimal() decimal.Decimal {
	return f.d
}

func (f Fix) String() string {
	return f.d.String()
}

// Float64 is a lossy conversion meant for metrics only.
func (f Fix) Float64() float64 {
	v, _ := f.d.Float64()
	return v
}

func (f Fix) IsZero() bool {
	return f.d.IsZero()
}

// IsMax tells whether f is the saturation sentinel.
func (f Fix) IsMax() bool {
	return f.d.Equal(MaxValue.d)
}

func (f Fix) Cmp(y Fix) int {
	return f.d.Cmp(y.d)
}

func (f Fix) Eq(y Fix) bool {
	return f.d.Equal(y.d)
}

func (f Fix) Lt(y Fix) bool {
	return f.d.LessThan(y.d)
}

func (f Fix) Lte(y Fix) bool {
	return f.d.LessThanOrEqual(y.d)
}

func (f Fix) Gt(y Fix) bool {
	return f.d.GreaterThan(y.d)
}

func (f Fix) Gte(y Fix) bool {
	return f.d.GreaterThanOrEqual(y.d)
}

// Plus returns f+y, saturating at MaxValue.
func (f Fix) Plus(y Fix) Fix {
	return saturate(f.d.Add(y.d))
}

// Minus returns f-y, or Zero if y > f.
func (f Fix) Minus(y Fix) Fix {
	if y.d.GreaterThanOrEqual(f.d) {
		return Zero
	}
	return Fix{f.d.Sub(y.d)}
}

// Mul returns f*y rounded down.
func (f Fix) Mul(y Fix) Fix {
	return f.MulRnd(y, Floor)
}

// MulRnd returns f*y with the given rounding, saturating at MaxValue.
func (f Fix) MulRnd(y Fix, rnd RoundingMode) Fix {
	return saturate(quantize(f.d.Mul(y.d), Decimals, rnd))
}

// Div returns f/y rounded down.
func (f Fix) Div(y Fix) Fix {
	return f.DivRnd(y, Floor)
}

// DivRnd returns f/y with the given rounding. Division by zero saturates
// to MaxValue.
func (f Fix) DivRnd(y Fix, rnd RoundingMode) Fix {
	if y.IsZero() {
		return MaxValue
	}
	return saturate(quo(f.d, y.d, rnd))
}

// MulDiv returns f*b/c with a single rounding step. Division by zero
// saturates to MaxValue.
func (f Fix) MulDiv(b, c Fix, rnd RoundingMode) Fix {
	if c.IsZero() {
		return MaxValue
	}
	return saturate(quo(f.d.Mul(b.d), c.d, rnd))
}

// Quantize rounds f to the given number of decimals, typically the ones of
// a token.
func (f Fix) Quantize(decimals uint8, rnd RoundingMode) Fix {
	if decimals >= Decimals {
		return f
	}
	return saturate(quantize(f.d, int32(decimals), rnd))
}

// Min returns the smaller of a and b.
func Min(a, b Fix) Fix {
	if a.Lt(b) {
		return a
	}
	return b
}

// Max returns the greater of a and b.
func Max(a, b Fix) Fix {
	if a.Gt(b) {
		return a
	}
	return b
}

func (f Fix) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", f.d.String())), nil
}

func (f *Fix) UnmarshalJSON(buf []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(buf); err != nil {
		return err
	}
	v, err := NewFromString(d.String())
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f Fix) GobEncode() ([]byte, error) {
	return f.d.GobEncode()
}

func (f *Fix) GobDecode(buf []byte) error {
	return f.d.GobDecode(buf)
}

func quantize(d decimal.Decimal, places int32, rnd RoundingMode) decimal.Decimal {
	switch rnd {
	case Ceil:
		return d.RoundCeil(places)
	case Round:
		return d.Round(places)
	default:
		return d.RoundFloor(places)
	}
}

// quo divides x by y at full precision then applies exactly one rounding.
func quo(x, y decimal.Decimal, rnd RoundingMode) decimal.Decimal {
	q, r := x.QuoRem(y, Decimals)
	if r.IsZero() {
		return q
	}
	switch rnd {
	case Ceil:
		return q.Add(ulp)
	case Round:
		if r.Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(y.Mul(ulp)) {
			return q.Add(ulp)
		}
	}
	return q
}

func saturate(d decimal.Decimal) Fix {
	if d.GreaterThan(MaxValue.d) {
		return MaxValue
	}
	return Fix{d}
}
