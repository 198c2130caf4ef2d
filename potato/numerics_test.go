package potato

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSingleStateDirac(t *testing.T) {
	m, e := singleStateDiracModel(t)

	p, err := ComputeStates(m, e, nil)
	require.NoError(t, err)

	q := m.MaxExitRate()
	p.BuildDTMC(m, q)
	p.SetKappa(decimal.New(1, -20))

	res, err := Compute(p, 0, nil, decimal.New(1, -300), decimal.New(1, 300))
	require.NoError(t, err)

	// A Dirac(2) alarm installed as the only active event at state 0 should
	// settle at theta(0) = 2.0, meanExit[0] = {1: 1.0}, meanReward[0] = 0.
	assert.InDelta(t, 2.0, res.Theta(), 0.2)
	assert.InDelta(t, 1.0, res.MeanExit.Get(1), 1e-6)
	assert.InDelta(t, 0.0, res.MeanReward, 1e-9)
}

func TestComputeExitDistributionIsStochastic(t *testing.T) {
	m, e := singleStateDiracModel(t)
	p, err := ComputeStates(m, e, nil)
	require.NoError(t, err)
	p.BuildDTMC(m, m.MaxExitRate())
	p.SetKappa(decimal.New(1, -15))

	res, err := Compute(p, 0, nil, decimal.New(1, -300), decimal.New(1, 300))
	require.NoError(t, err)
	assert.True(t, res.MeanExit.IsStochastic(1e-6))
}

func TestComputeExitDistributionRenormalisesWithinTenKappa(t *testing.T) {
	// Whatever residual mass Fox-Glynn truncation leaves inside the potato,
	// the redistribution through the event's own
	// transitions plus AbsNonNegative/Normalize must still land meanExit
	// within 10*kappa of a proper distribution.
	m, e := singleStateDiracModel(t)
	p, err := ComputeStates(m, e, nil)
	require.NoError(t, err)
	p.BuildDTMC(m, m.MaxExitRate())

	kappa := decimal.New(1, -12)
	p.SetKappa(kappa)

	res, err := Compute(p, 0, nil, decimal.New(1, -300), decimal.New(1, 300))
	require.NoError(t, err)

	kappaF, _ := kappa.Float64()
	assert.True(t, res.MeanExit.IsStochastic(10*kappaF))
}

func TestComputeCachesResultPerEntrance(t *testing.T) {
	m, e := singleStateDiracModel(t)
	p, err := ComputeStates(m, e, nil)
	require.NoError(t, err)
	p.BuildDTMC(m, m.MaxExitRate())
	p.SetKappa(decimal.New(1, -20))

	first, err := Compute(p, 0, nil, decimal.New(1, -300), decimal.New(1, 300))
	require.NoError(t, err)
	second, err := Compute(p, 0, nil, decimal.New(1, -300), decimal.New(1, 300))
	require.NoError(t, err)
	assert.Same(t, first, second)
}
