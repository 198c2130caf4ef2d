package reduction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VojtechRehak/prism-gsmp/gsmp"
	"github.com/VojtechRehak/prism-gsmp/models/mdq1"
)

// A Weibull producer event must be rejected as an alarm at construction
// time, since Weibull alarms are unsupported.
func TestMDQ1WeibullProducerIsUnsupported(t *testing.T) {
	actmc := gsmp.NewACTMC(2)
	producer := gsmp.NewEvent("producer", gsmp.Dist{Family: gsmp.Weibull, Param1: 1, Param2: 0.5})
	trans := gsmp.NewDistribution()
	trans.Set(1, 1.0)
	require.NoError(t, producer.AddActive(0, trans))
	require.NoError(t, actmc.AddEvent(producer))

	rewards := gsmp.NewRewardStructure(2)
	_, err := New(actmc, rewards, nil, Reachability, Settings{ComputeKappa: false, ConstantKappaDecimalDigits: 10})
	require.Error(t, err)
	var unsupported *gsmp.UnsupportedDistributionError
	assert.ErrorAs(t, err, &unsupported)
}

// Replacing Weibull with Dirac(1.0) gives a tractable chain whose
// stationary occupancy sums to 1 and never leaves the queue's 0..Capacity
// range.
func TestMDQ1SteadyStateOccupancySumsToOne(t *testing.T) {
	actmc, rewards, err := mdq1.Default().Build()
	require.NoError(t, err)

	red, err := New(actmc, rewards, nil, SteadyState, Settings{ComputeKappa: false, ConstantKappaDecimalDigits: 10})
	require.NoError(t, err)

	d, _, err := red.GetDTMC()
	require.NoError(t, err)

	n := d.NumStates()
	require.Equal(t, mdq1.Capacity+1, n)

	v := make([]float64, n)
	v[0] = 1
	next := make([]float64, n)
	for i := 0; i < 5000; i++ {
		d.VMMult(v, next)
		v, next = next, v
	}

	total := 0.0
	for s, p := range v {
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, mdq1.Capacity)
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

// A reward of 1 assigned to every potato state should yield a mean reward
// per entrance approximately equal to theta(entrance) in steady-state mode,
// since reward accrues at unit rate while inside the potato.
func TestRewardConservationMatchesTheta(t *testing.T) {
	m := gsmp.NewACTMC(3)
	row0 := gsmp.NewDistribution()
	row0.Set(1, 0.3)
	m.SetTransitions(0, row0)
	m.SetTransitions(1, gsmp.NewDistribution())
	m.SetTransitions(2, gsmp.NewDistribution())
	m.AddInitial(0)

	alarm := gsmp.NewEvent("alarm", gsmp.Dist{Family: gsmp.Dirac, Param1: 1.5})
	t1 := gsmp.NewDistribution()
	t1.Set(2, 1.0)
	require.NoError(t, alarm.AddActive(1, t1))
	require.NoError(t, m.AddEvent(alarm))

	rewards := gsmp.NewRewardStructure(3)
	require.NoError(t, rewards.SetStateReward(1, 1))

	red, err := New(m, rewards, nil, SteadyState, Settings{ComputeKappa: false, ConstantKappaDecimalDigits: 15})
	require.NoError(t, err)

	_, _, err = red.GetDTMC()
	require.NoError(t, err)

	p := red.GetPotatoData("alarm")
	require.NotNil(t, p)
	res, err := p.CachedResult(1)
	require.NoError(t, err)

	// Reward accrues at unit rate for the duration spent inside the
	// potato, so the mean reward collected equals the mean dwell time.
	assert.InDelta(t, res.Theta(), res.MeanReward, 0.1)
}

// An adaptively-derived kappa (ComputeKappa: true) must still respect the
// configured digit floor, not just the constant-kappa fallback already
// covered by TestKappaClampsToConfiguredDigits.
func TestComputedKappaRespectsConfiguredFloor(t *testing.T) {
	actmc, rewards, err := mdq1.Default().Build()
	require.NoError(t, err)

	red, err := New(actmc, rewards, nil, Reachability, Settings{
		Epsilon:                    1e-3,
		ComputeKappa:               true,
		ConstantKappaDecimalDigits: 5,
	})
	require.NoError(t, err)

	kappa, err := red.ensureKappa()
	require.NoError(t, err)
	f, _ := kappa.Float64()
	assert.LessOrEqual(t, f, 1e-5)
	assert.Greater(t, f, 0.0)
}
