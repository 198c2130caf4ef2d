package foxglynn

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBasicProperties(t *testing.T) {
	lambda := decimal.NewFromFloat(5.0)
	underflow := decimal.New(1, -300)
	overflow := decimal.New(1, 300)
	kappa := decimal.New(1, -10)

	res, err := Compute(lambda, underflow, overflow, kappa)
	require.NoError(t, err)
	require.True(t, res.Left <= res.Right)

	sum := decimal.Zero
	for _, w := range res.Weights {
		assert.True(t, w.Sign() >= 0, "weight must be non-negative")
		sum = sum.Add(w)
	}
	// Fox-Glynn totals: |sum(W) - T| = 0 exactly.
	assert.True(t, sum.Equal(res.Total))
}

func TestComputeRejectsNonPositiveLambda(t *testing.T) {
	_, err := Compute(decimal.Zero, decimal.New(1, -300), decimal.New(1, 300), decimal.New(1, -10))
	assert.Error(t, err)
}

func TestComputeWiderKappaNarrowsWindow(t *testing.T) {
	lambda := decimal.NewFromFloat(20.0)
	underflow := decimal.New(1, -300)
	overflow := decimal.New(1, 300)

	tight, err := Compute(lambda, underflow, overflow, decimal.New(1, -15))
	require.NoError(t, err)
	loose, err := Compute(lambda, underflow, overflow, decimal.New(1, -3))
	require.NoError(t, err)

	tightWidth := tight.Right - tight.Left
	looseWidth := loose.Right - loose.Left
	assert.LessOrEqual(t, looseWidth, tightWidth)
}
