package potato

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VojtechRehak/prism-gsmp/bitset"
	"github.com/VojtechRehak/prism-gsmp/gsmp"
	"github.com/VojtechRehak/prism-gsmp/models/mdq1"
)

func singleStateDiracModel(t *testing.T) (*gsmp.ACTMC, *gsmp.Event) {
	m := gsmp.NewACTMC(2)
	m.AddInitial(0)
	m.SetTransitions(1, gsmp.NewDistribution()) // state 1 absorbing

	trans := gsmp.NewDistribution()
	trans.Set(1, 1.0)
	e := gsmp.NewEvent("alarm", gsmp.Dist{Family: gsmp.Dirac, Param1: 2.0})
	require.NoError(t, e.AddActive(0, trans))
	require.NoError(t, m.AddEvent(e))
	return m, e
}

func TestComputeStatesSingleStateDirac(t *testing.T) {
	m, e := singleStateDiracModel(t)

	p, err := ComputeStates(m, e, nil)
	require.NoError(t, err)

	assert.True(t, p.States.Get(0))
	assert.False(t, p.States.Get(1))
	assert.True(t, p.Entrances.Get(0)) // initial state
	assert.True(t, p.Successors.Get(1))
}

func TestComputeStatesRejectsExponentialAsAlarm(t *testing.T) {
	m := gsmp.NewACTMC(2)
	trans := gsmp.NewDistribution()
	trans.Set(1, 1.0)
	e := gsmp.NewEvent("exp", gsmp.Dist{Family: gsmp.Exponential, Param1: 1.0})
	require.NoError(t, e.AddActive(0, trans))

	_, err := ComputeStates(m, e, nil)
	var invalid *gsmp.InvalidPotatoDistributionError
	assert.ErrorAs(t, err, &invalid)
}

func TestComputeStatesRejectsWeibullAsAlarm(t *testing.T) {
	m := gsmp.NewACTMC(2)
	trans := gsmp.NewDistribution()
	trans.Set(1, 1.0)
	e := gsmp.NewEvent("weib", gsmp.Dist{Family: gsmp.Weibull, Param1: 1.0, Param2: 0.5})
	require.NoError(t, e.AddActive(0, trans))

	_, err := ComputeStates(m, e, nil)
	var unsupported *gsmp.UnsupportedDistributionError
	assert.ErrorAs(t, err, &unsupported)
}

func TestComputeStatesTargetInsidePotatoBecomesSuccessor(t *testing.T) {
	m, e := singleStateDiracModel(t)
	target := bitset.New(2)
	target.Set(0) // the only alarm state is also a target

	p, err := ComputeStates(m, e, target)
	require.NoError(t, err)

	assert.False(t, p.States.Get(0))
	assert.False(t, p.Entrances.Get(0))
	assert.True(t, p.Successors.Get(0))
}

func TestComputeStatesMDQ1QueueEntrances(t *testing.T) {
	actmc, _, err := mdq1.Default().Build()
	require.NoError(t, err)

	svc := actmc.EventByID("service")
	require.NotNil(t, svc)

	p, err := ComputeStates(actmc, svc, nil)
	require.NoError(t, err)

	// States 1..5 are active for the service alarm; state 1 is an entrance
	// both as an exponential-inbound state (from state 0) and any
	// self-re-entry; state 0 is not part of the potato.
	for s := 1; s <= mdq1.Capacity; s++ {
		assert.True(t, p.States.Get(s), "state %d should be a potato state", s)
	}
	assert.False(t, p.States.Get(0))
	assert.True(t, p.Entrances.Get(1))
}
