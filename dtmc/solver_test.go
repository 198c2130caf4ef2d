package dtmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VojtechRehak/prism-gsmp/bitset"
	"github.com/VojtechRehak/prism-gsmp/gsmp"
)

func TestBuildUniformisedDTMCRowsAreStochastic(t *testing.T) {
	c := NewCTMC(2)
	row0 := gsmp.NewDistribution()
	row0.Set(1, 2.0)
	c.SetRow(0, row0)

	q := c.MaxExitRate()
	d := BuildUniformisedDTMC(c, q)
	for s := 0; s < d.NumStates(); s++ {
		sum := d.Rows[s].Sum()
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestSolveGaussSeidelExpectedSteps(t *testing.T) {
	// Two-state chain: 0 -> 1 (absorbing target) with probability 1.
	// Expected number of steps to reach target from 0, with per-step
	// reward 1, should converge to 1.
	c := NewCTMC(2)
	row0 := gsmp.NewDistribution()
	row0.Set(1, 1.0)
	c.SetRow(0, row0)
	d := BuildUniformisedDTMC(c, 1.0)

	target := bitset.New(2)
	target.Set(1)

	soln, err := Solve(GaussSeidel, d, ConstantReward(1), target, 1e-10, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, soln[0], 1e-6)
	assert.InDelta(t, 0.0, soln[1], 1e-9)
}

func TestSolveJacobiAgreesWithGaussSeidel(t *testing.T) {
	c := NewCTMC(3)
	r0 := gsmp.NewDistribution()
	r0.Set(1, 0.5)
	r0.Set(2, 0.5)
	c.SetRow(0, r0)
	r1 := gsmp.NewDistribution()
	r1.Set(0, 1.0)
	c.SetRow(1, r1)
	d := BuildUniformisedDTMC(c, 1.0)

	target := bitset.New(3)
	target.Set(2)

	gs, err := Solve(GaussSeidel, d, ConstantReward(1), target, 1e-10, nil)
	require.NoError(t, err)
	jac, err := Solve(Jacobi, d, ConstantReward(1), target, 1e-10, nil)
	require.NoError(t, err)

	for s := 0; s < 3; s++ {
		assert.InDelta(t, gs[s], jac[s], 1e-4)
	}
}

func TestSolveRespectsCancel(t *testing.T) {
	c := NewCTMC(2)
	row0 := gsmp.NewDistribution()
	row0.Set(1, 1.0)
	c.SetRow(0, row0)
	d := BuildUniformisedDTMC(c, 1.0)
	target := bitset.New(2)
	target.Set(1)

	calls := 0
	cancel := func() bool {
		calls++
		return true
	}
	_, err := Solve(GaussSeidel, d, ConstantReward(1), target, 1e-300, cancel)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
