// Package bigfloat provides the two numeric abstractions the ACTMC
// reduction engine needs to stay accurate across the many orders of
// magnitude that Fox-Glynn/Poisson evaluation spans: an arbitrary
// precision decimal (wrapping shopspring/decimal) carrying an explicit
// precision+rounding context, and an extended-range float (mantissa,
// decimal exponent) that survives native float64 underflow/overflow.
package bigfloat

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Context carries precision (significant decimal digits) and rounding
// behavior for a decimal operation, standing in for Java's MathContext.
// Every operation that takes a Context rounds half-up, per spec.
type Context struct {
	Precision int32
}

// NewContext returns a Context with the given significant-digit precision.
func NewContext(precision int32) Context {
	if precision < 1 {
		precision = 1
	}
	return Context{Precision: precision}
}

func (c Context) round(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	// Round to c.Precision significant digits, half-up.
	return d.Round(c.Precision - 1 - int32(leadingExponent(d)))
}

// leadingExponent returns the power of ten of d's most significant digit.
func leadingExponent(d decimal.Decimal) int {
	return len(d.Abs().Coefficient().String()) - 1 + int(d.Exponent())
}

// Add returns a+b rounded to c's precision.
func (c Context) Add(a, b decimal.Decimal) decimal.Decimal { return c.round(a.Add(b)) }

// Sub returns a-b rounded to c's precision.
func (c Context) Sub(a, b decimal.Decimal) decimal.Decimal { return c.round(a.Sub(b)) }

// Mul returns a*b rounded to c's precision.
func (c Context) Mul(a, b decimal.Decimal) decimal.Decimal { return c.round(a.Mul(b)) }

// Div returns a/b rounded to c's precision (half-up).
func (c Context) Div(a, b decimal.Decimal) decimal.Decimal {
	if a.IsZero() {
		return decimal.Zero
	}
	// A quotient with two guard digits locates the leading digit; the exact
	// quotient is then rounded once at c.Precision significant digits.
	guess := a.DivRound(b, c.Precision+int32(leadingExponent(b)-leadingExponent(a))+2)
	return a.DivRound(b, c.Precision-1-int32(leadingExponent(guess)))
}

// Cmp compares a and b (-1, 0, 1).
func (c Context) Cmp(a, b decimal.Decimal) int { return a.Cmp(b) }

// Pow returns a^n (n a non-negative integer exponent expressed as a
// decimal with zero fractional part), rounded to c's precision.
func (c Context) Pow(a decimal.Decimal, n decimal.Decimal) decimal.Decimal {
	af := toBigFloat(a, c.Precision)
	nf, _ := n.Float64()
	res := new(big.Float).SetPrec(bigFloatPrec(c.Precision))
	res.SetFloat64(1)
	base := new(big.Float).Copy(af)
	exp := int64(nf)
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for exp > 0 {
		if exp&1 == 1 {
			res.Mul(res, base)
		}
		base.Mul(base, base)
		exp >>= 1
	}
	if neg {
		one := new(big.Float).SetFloat64(1)
		res = one.Quo(one, res)
	}
	return c.round(fromBigFloat(res))
}

// Exp returns e^a rounded to c's precision, evaluated in float64 via
// math.Exp, so the result carries at most float64 accuracy (sufficient
// for the magnitudes Fox-Glynn bound-checking needs; the extended-range
// type carries the values that would actually overflow float64).
func (c Context) Exp(a decimal.Decimal) decimal.Decimal {
	af, _ := a.Float64()
	return c.round(decimal.NewFromFloat(math.Exp(af)))
}

// Log returns ln(a) rounded to c's precision.
func (c Context) Log(a decimal.Decimal) decimal.Decimal {
	af, _ := a.Float64()
	return c.round(decimal.NewFromFloat(math.Log(af)))
}

// Sqrt returns sqrt(a) rounded to c's precision, computed via the
// natural-logarithm identity sqrt(a) = exp(ln(a)/2), as the spec
// permits ("natural-logarithm-based is acceptable").
func (c Context) Sqrt(a decimal.Decimal) decimal.Decimal {
	if a.Sign() <= 0 {
		return decimal.Zero
	}
	half := c.Log(a).Div(decimal.NewFromInt(2))
	return c.Exp(half)
}

// AllowedError returns 10^(-d), the allowed error decimal for d decimal
// digits of precision.
func AllowedError(d int) decimal.Decimal {
	if d < 0 {
		d = 0
	}
	return decimal.New(1, int32(-d))
}

// DecimalDigits returns the number of decimal digits required to
// represent x to unit precision.
func DecimalDigits(x decimal.Decimal) int {
	return decimalDigitsOf(x)
}

func decimalDigitsOf(x decimal.Decimal) int {
	if x.IsZero() {
		return 1
	}
	abs := x.Abs()
	coeff := abs.Coefficient()
	digits := len(coeff.String())
	exp := int(abs.Exponent())
	total := digits + exp
	if total < 1 {
		total = 1
	}
	return total
}

func bigFloatPrec(precisionDigits int32) uint {
	// ~3.322 bits per decimal digit, plus guard bits.
	return uint(float64(precisionDigits)*3.322) + 32
}

func toBigFloat(d decimal.Decimal, precisionDigits int32) *big.Float {
	f, _ := new(big.Float).SetPrec(bigFloatPrec(precisionDigits)).SetString(d.String())
	if f == nil {
		f = new(big.Float)
		v, _ := d.Float64()
		f.SetFloat64(v)
	}
	return f
}

func fromBigFloat(f *big.Float) decimal.Decimal {
	v, _ := f.Float64()
	return decimal.NewFromFloat(v)
}
