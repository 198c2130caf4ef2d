package potato

import (
	"github.com/shopspring/decimal"

	"github.com/VojtechRehak/prism-gsmp/foxglynn"
)

// uniformWeights returns the Fox-Glynn weights for a Uniform(a,b) alarm.
// The firing-time density is 1/(b-a) on [a,b], and since
// d/dt CDF_Poisson(q*t, i) = -q * Poisson_pmf(q*t, i), averaging the
// uniformised step-i probability over t in [a,b] gives
//
//	(1/(b-a)) * integral_a^b Poisson_pmf(q*t, i) dt
//	  = (CDF_Poisson(q*a, i) - CDF_Poisson(q*b, i)) / (q*(b-a)).
//
// Two Fox-Glynn tables are computed, one per bound, and their running CDFs
// (each normalized by its own Total, since foxglynn.Compute only guarantees
// weights proportional to the true pmf within a single call, with an
// arbitrary per-call scale set by the mode) are differenced index-by-index
// over their union window.
func uniformWeights(q, a, b float64, underflow, overflow, kappa decimal.Decimal) (*foxglynn.Result, error) {
	lambdaA := decimal.NewFromFloat(q * a)
	lambdaB := decimal.NewFromFloat(q * b)

	var fgA *foxglynn.Result
	var err error
	if lambdaA.Sign() > 0 {
		fgA, err = foxglynn.Compute(lambdaA, underflow, overflow, kappa)
		if err != nil {
			return nil, err
		}
	}
	fgB, err := foxglynn.Compute(lambdaB, underflow, overflow, kappa)
	if err != nil {
		return nil, err
	}

	left, right := fgB.Left, fgB.Right
	if fgA != nil {
		if fgA.Left < left {
			left = fgA.Left
		}
		if fgA.Right > right {
			right = fgA.Right
		}
	}

	scale := 1.0 / (q * (b - a))
	weights := make([]decimal.Decimal, right-left+1)
	cumA, cumB := decimal.Zero, decimal.Zero
	one := decimal.NewFromInt(1)
	for i := left; i <= right; i++ {
		if fgA == nil {
			// lambdaA == 0: Poisson(0) puts all mass at 0, so its CDF is 1
			// at every i >= 0 (left is always >= 0).
			cumA = one
		} else {
			cumA = cumA.Add(normalizedWeightAt(fgA, i))
		}
		cumB = cumB.Add(normalizedWeightAt(fgB, i))

		diff := cumA.Sub(cumB)
		if diff.IsNegative() {
			diff = decimal.Zero
		}
		weights[i-left] = diff.Mul(decimal.NewFromFloat(scale))
	}

	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w)
	}
	return &foxglynn.Result{Left: left, Right: right, Weights: weights, Total: total}, nil
}

// normalizedWeightAt returns fg's weight at global Poisson index i, scaled
// by fg's own Total so that the result is comparable across two different
// foxglynn.Compute calls (each call's raw Weights carry an independent,
// mode-relative scale; dividing by Total recovers a quantity proportional
// to the true Poisson pmf). Returns zero if fg is nil or i falls outside
// fg's window.
func normalizedWeightAt(fg *foxglynn.Result, i int) decimal.Decimal {
	if fg == nil || i < fg.Left || i > fg.Right || fg.Total.IsZero() {
		return decimal.Zero
	}
	return fg.Weights[i-fg.Left].Div(fg.Total)
}
