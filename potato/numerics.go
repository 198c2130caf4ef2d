package potato

import (
	"github.com/shopspring/decimal"

	"github.com/VojtechRehak/prism-gsmp/foxglynn"
	"github.com/VojtechRehak/prism-gsmp/gsmp"
)

// Compute computes the mean-time/mean-exit/mean-reward triple for a single
// entrance of a potato, dispatched by the event's distribution family so
// unsupported distributions surface statically at the dispatch site.
func Compute(p *Potato, entrance int, rewards gsmp.RewardProvider, underflow, overflow decimal.Decimal) (*MeanResult, error) {
	if cached, ok := p.cachedResult(entrance); ok {
		return cached, nil
	}
	if p.dtmc == nil {
		return nil, &gsmp.InvalidModelError{Reason: "potato DTMC must be built via BuildDTMC before computing numerics"}
	}

	fg, err := weightsFor(p, underflow, overflow)
	if err != nil {
		return nil, err
	}

	result, err := p.runTransient(entrance, fg, rewards)
	if err != nil {
		return nil, err
	}
	p.storeResult(entrance, result)
	return result, nil
}

// weightsFor dispatches to the per-family Fox-Glynn weight derivation.
// Exponential and Weibull are rejected statically by ComputeStates
// already, but are re-checked here defensively since Compute can be called
// directly against a hand-built Potato in tests.
func weightsFor(p *Potato, underflow, overflow decimal.Decimal) (*foxglynn.Result, error) {
	d := p.Event.Dist
	switch d.Family {
	case gsmp.Dirac:
		return diracWeights(p.q, d.Param1, underflow, overflow, p.kappa)
	case gsmp.Erlang:
		return erlangWeights(p.q, int(d.Param1), d.Param2, underflow, overflow, p.kappa)
	case gsmp.Uniform:
		return uniformWeights(p.q, d.Param1, d.Param2, underflow, overflow, p.kappa)
	case gsmp.Exponential:
		return nil, &gsmp.InvalidPotatoDistributionError{EventID: p.Event.ID}
	default:
		return nil, &gsmp.UnsupportedDistributionError{Family: d.Family, EventID: p.Event.ID}
	}
}

// transientProfile selects which time-profile coefficient vmProfile applies
// at each iteration, matching ACTMCPotatoData's two distinct uniformised
// weight formulas for mean dwell time versus mean exit distribution.
type transientProfile int

const (
	timeProfile transientProfile = iota
	exitProfile
)

// runTransient runs the three transient iterations ACTMCPotatoData computes
// per entrance (mean dwell time, mean exit distribution, mean accumulated
// reward), starting from a unit mass at entrance's local index, using fg's
// truncation window and time-profile weights.
func (p *Potato) runTransient(entrance int, fg *foxglynn.Result, rewards gsmp.RewardProvider) (*MeanResult, error) {
	local := p.Local(entrance)
	if local < 0 {
		return nil, &gsmp.InvalidModelError{Reason: "entrance state is not part of the potato's states ∪ successors"}
	}

	n := p.dtmc.NumStates()
	start := make([]float64, n)
	start[local] = 1

	totalF, _ := fg.Total.Float64()
	timeVec := p.vmProfile(start, fg, totalF, timeProfile)
	exitVec := p.vmProfile(start, fg, totalF, exitProfile)

	meanTime := gsmp.NewDistribution()
	for i, g := range p.localToGlobal {
		if p.States.Get(g) && timeVec[i] != 0 {
			meanTime.Set(g, timeVec[i])
		}
	}

	distBeforeEvent := gsmp.NewDistribution()
	meanExit := gsmp.NewDistribution()
	for i, g := range p.localToGlobal {
		if exitVec[i] == 0 {
			continue
		}
		if p.Successors.Get(g) {
			meanExit.Add(g, exitVec[i])
		} else {
			distBeforeEvent.Set(g, exitVec[i])
		}
	}

	// Redistribute residual mass still inside `states` through the event's
	// own transition distribution: the event has fired, so any remaining
	// in-potato mass must move to a successor.
	for _, g := range distBeforeEvent.Support() {
		mass := distBeforeEvent.Get(g)
		trans := p.Event.Transitions(g)
		if trans == nil {
			continue // no transition installed at g; mass is floating-point residue, drop it
		}
		for _, succ := range trans.Support() {
			meanExit.Add(succ, mass*trans.Get(succ))
		}
	}
	meanExit.AbsNonNegative()
	meanExit.Normalize()

	meanReward := p.meanRewardFor(local, rewards, distBeforeEvent, fg, totalF)

	return &MeanResult{
		MeanTime:        meanTime,
		MeanExit:        meanExit,
		MeanReward:      meanReward,
		DistBeforeEvent: distBeforeEvent,
	}, nil
}

// vmProfile runs the shared uniformised vector-matrix iteration from 0 to
// fg.Right, applying the requested time-profile weight to each intermediate
// vector: meanTime uses w'_i = (1 - Σ_{j<=i} w_j/T)/q (1/q for i<L); meanExit
// uses w_i/T (0 for i<L). Both are the standard Fox-Glynn left-of-window
// convention ACTMCPotatoData's computeMeanTimes/computeMeanDistributions use.
func (p *Potato) vmProfile(start []float64, fg *foxglynn.Result, totalF float64, profile transientProfile) []float64 {
	n := p.dtmc.NumStates()
	v := make([]float64, n)
	copy(v, start)
	buf := make([]float64, n)
	result := make([]float64, n)

	cum := 0.0
	for i := 0; i <= fg.Right; i++ {
		var coeff float64
		if i < fg.Left {
			if profile == timeProfile {
				coeff = 1.0 / p.q
			}
		} else {
			w, _ := fg.Weights[i-fg.Left].Float64()
			cum += w
			if profile == timeProfile {
				coeff = (1 - cum/totalF) / p.q
			} else {
				coeff = w / totalF
			}
		}
		for s := 0; s < n; s++ {
			result[s] += coeff * v[s]
		}
		p.dtmc.VMMult(v, buf)
		v, buf = buf, v
	}
	return result
}

// meanRewardFor computes the scalar mean accumulated reward for a single
// entrance: the forward (matrix-vector) propagation of potato state rewards
// weighted by the time profile, evaluated at local, plus the event-
// transition reward term weighted by distBeforeEvent and the event's own
// transition probabilities, following ACTMCPotatoData's computeMeanRewards.
func (p *Potato) meanRewardFor(local int, rewards gsmp.RewardProvider, distBeforeEvent *gsmp.Distribution, fg *foxglynn.Result, totalF float64) float64 {
	n := p.dtmc.NumStates()
	v := make([]float64, n)
	if rewards != nil {
		for i, g := range p.localToGlobal {
			if p.States.Get(g) {
				v[i] = rewards.StateReward(g)
			}
		}
	}
	buf := make([]float64, n)
	result := make([]float64, n)

	cum := 0.0
	for i := 0; i <= fg.Right; i++ {
		var coeff float64
		if i < fg.Left {
			coeff = 1.0 / p.q
		} else {
			w, _ := fg.Weights[i-fg.Left].Float64()
			cum += w
			coeff = (1 - cum/totalF) / p.q
		}
		for s := 0; s < n; s++ {
			result[s] += coeff * v[s]
		}
		p.dtmc.MVMult(v, buf)
		v, buf = buf, v
	}

	reward := result[local]
	if rewards == nil || !rewards.HasTransitionRewards() {
		return reward
	}
	for _, g := range distBeforeEvent.Support() {
		mass := distBeforeEvent.Get(g)
		trans := p.Event.Transitions(g)
		if trans == nil {
			continue
		}
		transRewards := rewards.EventTransitionRewards(g)
		if transRewards == nil {
			continue
		}
		for _, succ := range trans.Support() {
			reward += mass * trans.Get(succ) * transRewards[succ]
		}
	}
	return reward
}
