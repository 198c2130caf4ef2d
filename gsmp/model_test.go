package gsmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestACTMCRejectsOverlappingAlarms(t *testing.T) {
	m := NewACTMC(2)

	d1 := NewDistribution()
	d1.Set(1, 1.0)
	e1 := NewEvent("e1", Dist{Family: Dirac, Param1: 1.0})
	require.NoError(t, e1.AddActive(0, d1))
	require.NoError(t, m.AddEvent(e1))

	d2 := NewDistribution()
	d2.Set(0, 1.0)
	e2 := NewEvent("e2", Dist{Family: Erlang, Param1: 2, Param2: 1.0})
	require.NoError(t, e2.AddActive(0, d2))

	err := m.AddEvent(e2)
	assert.Error(t, err)
	var invalid *InvalidModelError
	assert.ErrorAs(t, err, &invalid)
}

func TestACTMCAllowsOverlappingExponentialEvents(t *testing.T) {
	m := NewACTMC(2)
	d := NewDistribution()
	d.Set(1, 1.0)

	e1 := NewEvent("exp1", Dist{Family: Exponential, Param1: 0.5})
	require.NoError(t, e1.AddActive(0, d))
	require.NoError(t, m.AddEvent(e1))

	e2 := NewEvent("exp2", Dist{Family: Exponential, Param1: 0.7})
	require.NoError(t, e2.AddActive(0, d))
	require.NoError(t, m.AddEvent(e2))
}

func TestEventRejectsEmptyActiveSet(t *testing.T) {
	e := NewEvent("empty", Dist{Family: Dirac, Param1: 1.0})
	assert.Error(t, e.Validate())
}

func TestEventRejectsNonStochasticTransitions(t *testing.T) {
	e := NewEvent("bad", Dist{Family: Dirac, Param1: 1.0})
	d := NewDistribution()
	d.Set(0, 0.5) // sums to 0.5, not 1
	err := e.AddActive(0, d)
	assert.Error(t, err)
}

func TestDistValidate(t *testing.T) {
	cases := []struct {
		name string
		d    Dist
		want bool
	}{
		{"dirac ok", Dist{Family: Dirac, Param1: 2.0}, true},
		{"dirac negative", Dist{Family: Dirac, Param1: -1.0}, false},
		{"exponential ok", Dist{Family: Exponential, Param1: 1.0}, true},
		{"exponential zero rate", Dist{Family: Exponential, Param1: 0}, false},
		{"erlang ok", Dist{Family: Erlang, Param1: 3, Param2: 1.0}, true},
		{"erlang bad shape", Dist{Family: Erlang, Param1: 0, Param2: 1.0}, false},
		{"uniform ok", Dist{Family: Uniform, Param1: 0, Param2: 1}, true},
		{"uniform bad bounds", Dist{Family: Uniform, Param1: 1, Param2: 1}, false},
		{"weibull ok", Dist{Family: Weibull, Param1: 1, Param2: 0.5}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.d.Validate()
			if c.want {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRewardStructureRejectsNegative(t *testing.T) {
	r := NewRewardStructure(2)
	assert.Error(t, r.SetStateReward(0, -1))
	require.NoError(t, r.SetStateReward(0, 5))
	assert.Equal(t, 5.0, r.StateReward(0))
}
