package bigfloat

import "math"

// Extended is an extended-range floating point value represented as a
// signed mantissa in [1, 10) (or zero) times 10^Exp. It is used inside
// Fox-Glynn where intermediate Poisson probabilities span thousands of
// orders of magnitude, well beyond float64's +-308 decimal exponent
// range.
type Extended struct {
	Mantissa float64
	Exp      int
}

// Zero is the extended-range representation of 0.
var Zero = Extended{Mantissa: 0, Exp: 0}

// FromFloat64 normalizes a float64 into Extended form.
func FromFloat64(v float64) Extended {
	if v == 0 {
		return Zero
	}
	sign := 1.0
	if v < 0 {
		sign = -1
		v = -v
	}
	exp := int(math.Floor(math.Log10(v)))
	mant := sign * v / math.Pow(10, float64(exp))
	return normalize(Extended{Mantissa: mant, Exp: exp})
}

func normalize(e Extended) Extended {
	if e.Mantissa == 0 {
		return Zero
	}
	abs := math.Abs(e.Mantissa)
	for abs >= 10 {
		e.Mantissa /= 10
		e.Exp++
		abs = math.Abs(e.Mantissa)
	}
	for abs < 1 {
		e.Mantissa *= 10
		e.Exp--
		abs = math.Abs(e.Mantissa)
	}
	return e
}

// Float64 converts back to a native float64, which may underflow to 0
// or overflow to +-Inf if the exponent is out of float64's range - this
// is expected and exactly what Extended exists to avoid during
// intermediate computation.
func (e Extended) Float64() float64 {
	if e.Mantissa == 0 {
		return 0
	}
	return e.Mantissa * math.Pow(10, float64(e.Exp))
}

// IsZero reports whether e represents zero.
func (e Extended) IsZero() bool { return e.Mantissa == 0 }

// Sign returns -1, 0, or 1.
func (e Extended) Sign() int {
	switch {
	case e.Mantissa > 0:
		return 1
	case e.Mantissa < 0:
		return -1
	default:
		return 0
	}
}

// Cmp compares e and o, returning -1, 0, or 1.
func (e Extended) Cmp(o Extended) int {
	if e.IsZero() && o.IsZero() {
		return 0
	}
	if e.Sign() != o.Sign() {
		if e.Sign() < o.Sign() {
			return -1
		}
		return 1
	}
	// same sign; compare by exponent first, then mantissa
	sign := e.Sign()
	switch {
	case e.Exp != o.Exp:
		if (e.Exp < o.Exp) == (sign > 0) {
			return -1
		}
		return 1
	case e.Mantissa < o.Mantissa:
		return -1
	case e.Mantissa > o.Mantissa:
		return 1
	default:
		return 0
	}
}

// Add returns e+o.
func (e Extended) Add(o Extended) Extended {
	if e.IsZero() {
		return o
	}
	if o.IsZero() {
		return e
	}
	// align exponents on the larger one
	hi, lo := e, o
	if lo.Exp > hi.Exp {
		hi, lo = lo, hi
	}
	diff := hi.Exp - lo.Exp
	if diff > 30 {
		// lo is negligible relative to hi at this precision
		return hi
	}
	adjustedLoMant := lo.Mantissa / math.Pow(10, float64(diff))
	return normalize(Extended{Mantissa: hi.Mantissa + adjustedLoMant, Exp: hi.Exp})
}

// Sub returns e-o.
func (e Extended) Sub(o Extended) Extended {
	return e.Add(Extended{Mantissa: -o.Mantissa, Exp: o.Exp})
}

// Mul returns e*o.
func (e Extended) Mul(o Extended) Extended {
	if e.IsZero() || o.IsZero() {
		return Zero
	}
	return normalize(Extended{Mantissa: e.Mantissa * o.Mantissa, Exp: e.Exp + o.Exp})
}

// Div returns e/o.
func (e Extended) Div(o Extended) Extended {
	if e.IsZero() {
		return Zero
	}
	return normalize(Extended{Mantissa: e.Mantissa / o.Mantissa, Exp: e.Exp - o.Exp})
}

// Exp10 returns 10^n in extended-range form, exactly representable.
func Exp10(n int) Extended {
	return Extended{Mantissa: 1, Exp: n}
}

// Exp returns e^x for a native float64 x, expressed in extended range -
// used by Fox-Glynn when evaluating e^{-lambda} for large lambda where
// the native float64 result would underflow to 0 before the caller has
// a chance to rescale it.
func Exp(x float64) Extended {
	if x == 0 {
		return FromFloat64(1)
	}
	// e^x = 10^(x / ln(10))
	exp10 := x / math.Ln10
	intPart := math.Floor(exp10)
	fracPart := exp10 - intPart
	mant := math.Pow(10, fracPart)
	return normalize(Extended{Mantissa: mant, Exp: int(intPart)})
}

// Abs returns the absolute value of e.
func (e Extended) Abs() Extended {
	return Extended{Mantissa: math.Abs(e.Mantissa), Exp: e.Exp}
}
