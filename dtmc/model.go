// Package dtmc provides the discrete- and continuous-time Markov chain
// primitives the ACTMC reduction needs: a CTMC row representation,
// uniformisation into a DTMC, and the minimal reach-reward solver surface
// the kappa-derivation stage uses as its inner probe.
package dtmc

import "github.com/VojtechRehak/prism-gsmp/gsmp"

// CTMC is a continuous-time Markov chain: one exponential-rate row per
// state. It is the intermediate representation the reduction engine
// mutates (replacing potato entrance rows) before uniformising into a
// DTMC.
type CTMC struct {
	Rows []*gsmp.Distribution
}

// NewCTMC returns a CTMC with n empty rows.
func NewCTMC(n int) *CTMC {
	rows := make([]*gsmp.Distribution, n)
	for i := range rows {
		rows[i] = gsmp.NewDistribution()
	}
	return &CTMC{Rows: rows}
}

// NumStates returns the number of states.
func (c *CTMC) NumStates() int { return len(c.Rows) }

// MaxExitRate returns the maximum row sum (the natural uniformisation
// rate), defaulting to 1 for an all-zero CTMC.
func (c *CTMC) MaxExitRate() float64 {
	max := 0.0
	for _, row := range c.Rows {
		if s := row.Sum(); s > max {
			max = s
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

// SetRow replaces the outgoing row for state s.
func (c *CTMC) SetRow(s int, d *gsmp.Distribution) { c.Rows[s] = d }

// DTMC is a discrete-time Markov chain obtained by uniformising a CTMC
// at rate q: P = I + Q/q. Each row sums to 1 +- kappa.
type DTMC struct {
	Rows                []*gsmp.Distribution
	UniformizationRate  float64
}

// NumStates returns the number of states.
func (d *DTMC) NumStates() int { return len(d.Rows) }

// BuildUniformisedDTMC converts a CTMC to its uniformised DTMC at rate
// q: P[s][s] += 1 - exitRate(s)/q (a self-loop absorbing the unused
// rate), P[s][t] = Q[s][t]/q for t != s.
func BuildUniformisedDTMC(c *CTMC, q float64) *DTMC {
	n := c.NumStates()
	rows := make([]*gsmp.Distribution, n)
	for s := 0; s < n; s++ {
		row := gsmp.NewDistribution()
		exit := 0.0
		for _, t := range c.Rows[s].Support() {
			p := c.Rows[s].Get(t) / q
			row.Add(t, p)
			exit += c.Rows[s].Get(t)
		}
		selfLoop := 1 - exit/q
		if selfLoop > 0 {
			row.Add(s, selfLoop)
		}
		rows[s] = row
	}
	return &DTMC{Rows: rows, UniformizationRate: q}
}

// VMMult computes soln2 = soln * P (vector-matrix product, the
// row-vector update used by potato transient iteration to advance a
// starting distribution forward by one uniformised step).
func (d *DTMC) VMMult(soln, soln2 []float64) {
	for i := range soln2 {
		soln2[i] = 0
	}
	for s, row := range d.Rows {
		v := soln[s]
		if v == 0 {
			continue
		}
		for _, t := range row.Support() {
			soln2[t] += v * row.Get(t)
		}
	}
}

// MVMult computes soln2 = P * soln (matrix-vector product, used to
// propagate a reward vector backward one uniformised step).
func (d *DTMC) MVMult(soln, soln2 []float64) {
	for s, row := range d.Rows {
		sum := 0.0
		for _, t := range row.Support() {
			sum += row.Get(t) * soln[t]
		}
		soln2[s] = sum
	}
}

// RewardVector is a per-state reward vector for a DTMC, implementing
// the minimal surface the reach-reward solver needs.
type RewardVector interface {
	Reward(s int) float64
}

// ConstantReward is a RewardVector that returns the same value for
// every state (used by kappa-derivation's "expected number of steps"
// probe, which assigns a uniform reward of 1 per step and divides the
// resulting step counts by the uniformisation rate to obtain times).
type ConstantReward float64

func (c ConstantReward) Reward(int) float64 { return float64(c) }

// SliceReward adapts a []float64 to RewardVector.
type SliceReward []float64

func (s SliceReward) Reward(i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}
