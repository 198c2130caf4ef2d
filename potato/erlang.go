package potato

import (
	"github.com/shopspring/decimal"

	"github.com/VojtechRehak/prism-gsmp/foxglynn"
)

// erlangWeights returns the Fox-Glynn weights approximating the k-fold
// convolution of Exp(lambda) phases through the uniformised DTMC (spec
// 4.5's "weighted sum over Fox-Glynn tables for rate q/(q+lambda)", the
// ACTMCPotatoErlang path the original source left unimplemented).
//
// Each phase contributes a Geometric(p) number of uniformised steps, where
// p = lambda/(q+lambda) is the probability the exponential phase fires
// before the next uniformised event; the sum of k such phases is Negative-
// Binomial(k, p), with mean k*q/lambda uniformised steps. For the truncation
// window this module needs, the negative binomial is approximated by a
// Poisson distribution of the same mean - a standard approximation once k is
// not tiny. For k=1 the exact step count is geometric, which the Poisson
// approximation matches only in its mean.
func erlangWeights(q float64, k int, lambda float64, underflow, overflow, kappa decimal.Decimal) (*foxglynn.Result, error) {
	if k < 1 {
		k = 1
	}
	effectiveLambda := float64(k) * q / lambda
	return foxglynn.Compute(decimal.NewFromFloat(effectiveLambda), underflow, overflow, kappa)
}
