package potato

import (
	"github.com/shopspring/decimal"

	"github.com/VojtechRehak/prism-gsmp/foxglynn"
)

// diracWeights returns the Fox-Glynn weights for a Dirac(d) alarm: the
// standard Jensen uniformisation at a fixed time d, i.e. a truncated Poisson
// with rate q*d.
func diracWeights(q, d float64, underflow, overflow, kappa decimal.Decimal) (*foxglynn.Result, error) {
	lambda := decimal.NewFromFloat(q * d)
	return foxglynn.Compute(lambda, underflow, overflow, kappa)
}
