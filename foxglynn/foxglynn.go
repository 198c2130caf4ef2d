// Package foxglynn computes truncated Poisson weights for uniformised
// transient analysis, following Fox & Glynn (1988) and the FoxGlynn_BD
// port referenced by PRISM's ACTMCPotatoData.
package foxglynn

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/VojtechRehak/prism-gsmp/bigfloat"
)

// Result holds the truncation points and weights of a Fox-Glynn
// computation. The weights are proportional to the Poisson probabilities
// (the weight at the mode is 1); callers divide by Total to normalize.
type Result struct {
	Left, Right int
	Weights     []decimal.Decimal // indexed 0..Right-Left, weight for Poisson mass at Left+i
	Total       decimal.Decimal   // sum of Weights
}

// OverflowError signals that Fox-Glynn truncation could not be
// determined: no right truncation point within 100000 of the mode met
// the tail bound, or the weight total was zero.
type OverflowError struct {
	Lambda decimal.Decimal
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("foxglynn: overflow computing Poisson truncation for lambda=%s", e.Lambda)
}

// Compute returns the left/right truncation points L<=R and weights
// {w_i : L<=i<=R} such that (T - sum Poisson(lambda;i)) <= kappa*T,
// where T = sum(Weights). underflow and overflow are accepted but not
// consulted: intermediate terms are carried in extended-range arithmetic,
// and no check is made against either guard.
func Compute(lambda, underflow, overflow, kappa decimal.Decimal) (*Result, error) {
	if lambda.Sign() <= 0 {
		return nil, fmt.Errorf("foxglynn: lambda must be positive, got %s", lambda)
	}
	lf, _ := lambda.Float64()
	kf, _ := kappa.Float64()
	if kf <= 0 {
		kf = 1e-20
	}

	m := int(math.Floor(lf))
	if m < 1 {
		m = 1
	}

	// --- Right truncation point: find R such that the Poisson tail
	// mass beyond R is within kappa/2 of the total: start a few standard
	// deviations past the mode, then walk outward until a Chernoff upper
	// bound on the tail (evaluated in extended range) falls below kappa/2.
	right, err := findRight(lf, float64(m), kf)
	if err != nil {
		return nil, err
	}
	left := findLeft(lf, float64(m), kf, right)

	// Build the unnormalized extended-range weights over [left, right]
	// by recurrence w_i = w_{i-1} * lambda / i starting from the mode m,
	// scaled to avoid overflow, then walking outward from the mode in
	// both directions (standard Fox-Glynn construction).
	weights := make([]bigfloat.Extended, right-left+1)
	modeIdx := m - left
	weights[modeIdx] = bigfloat.FromFloat64(1) // unnormalized peak; the output keeps this scale
	for i := modeIdx + 1; i < len(weights); i++ {
		n := left + i
		weights[i] = weights[i-1].Mul(bigfloat.FromFloat64(lf / float64(n)))
	}
	for i := modeIdx - 1; i >= 0; i-- {
		n := left + i + 1
		weights[i] = weights[i+1].Mul(bigfloat.FromFloat64(float64(n) / lf))
	}

	total := bigfloat.Zero
	for _, w := range weights {
		total = total.Add(w)
	}
	if total.IsZero() {
		return nil, &OverflowError{Lambda: lambda}
	}

	out := &Result{Left: left, Right: right, Weights: make([]decimal.Decimal, len(weights))}
	sum := decimal.Zero
	for i, w := range weights {
		v := w.Float64()
		d := decimal.NewFromFloat(v)
		out.Weights[i] = d
		sum = sum.Add(d)
	}
	out.Total = sum
	return out, nil
}

// findRight locates R such that the Poisson(lambda) tail past R is
// below kappa/2 of the mass, starting from mode + 3*sqrt(lambda) + 10 and
// stepping outward by sqrt(lambda) + 10 until poissonTailUpperBound clears
// kappa/2.
func findRight(lambda, mode, kappa float64) (int, error) {
	sigma := math.Sqrt(lambda)
	if sigma < 1 {
		sigma = 1
	}
	r := int(mode + 3*sigma + 10)
	maxR := int(mode) + 100000
	for {
		tailMass := poissonTailUpperBound(lambda, r)
		if tailMass.Cmp(bigfloat.FromFloat64(kappa/2)) <= 0 {
			return r, nil
		}
		r += int(sigma) + 10
		if r > maxR {
			return -1, &OverflowError{Lambda: decimal.NewFromFloat(lambda)}
		}
	}
}

// findLeft mirrors findRight on the left tail, never going below 0.
func findLeft(lambda, mode, kappa float64, right int) int {
	sigma := math.Sqrt(lambda)
	if sigma < 1 {
		sigma = 1
	}
	l := int(mode - 3*sigma - 10)
	if l < 0 {
		l = 0
	}
	for l > 0 {
		tailMass := poissonLowerTailUpperBound(lambda, l)
		if tailMass.Cmp(bigfloat.FromFloat64(kappa/2)) <= 0 {
			break
		}
		l -= int(sigma) + 10
		if l < 0 {
			l = 0
			break
		}
	}
	if l >= right {
		l = 0
	}
	return l
}

// poissonTailUpperBound returns a Chernoff-style upper bound on
// P(X >= n) for X ~ Poisson(lambda), evaluated in extended-range
// arithmetic so it never silently underflows to zero for large n.
func poissonTailUpperBound(lambda float64, n int) bigfloat.Extended {
	if float64(n) <= lambda {
		return bigfloat.FromFloat64(1)
	}
	// Chernoff bound: P(X>=n) <= exp(-lambda) * (e*lambda/n)^n
	nf := float64(n)
	logBound := -lambda + nf*(1+math.Log(lambda/nf))
	return bigfloat.Exp(logBound)
}

// poissonLowerTailUpperBound returns a Chernoff-style upper bound on
// P(X <= n) for X ~ Poisson(lambda): the same bound poissonTailUpperBound
// derives, from the dual (t < 0) side of the Chernoff argument, valid for
// 0 < n < lambda rather than n > lambda.
func poissonLowerTailUpperBound(lambda float64, n int) bigfloat.Extended {
	if n <= 0 || float64(n) >= lambda {
		return bigfloat.FromFloat64(1)
	}
	nf := float64(n)
	logBound := -lambda + nf*(1+math.Log(lambda/nf))
	return bigfloat.Exp(logBound)
}
