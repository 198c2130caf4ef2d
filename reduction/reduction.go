// Package reduction assembles per-event potato results into a single
// uniformised DTMC plus reward vector, numerically equivalent to the
// source ACTMC modulo a derived precision budget kappa.
package reduction

import (
	"github.com/shopspring/decimal"

	"github.com/VojtechRehak/prism-gsmp/bitset"
	"github.com/VojtechRehak/prism-gsmp/dtmc"
	"github.com/VojtechRehak/prism-gsmp/gsmp"
	"github.com/VojtechRehak/prism-gsmp/potato"
)

// Mode selects the companion reward scaling.
type Mode int

const (
	// Reachability scales rewards by the uniformisation rate q, for
	// transient (finite-horizon or until-target) model checking.
	Reachability Mode = iota
	// SteadyState leaves rewards as rates, for mean-payoff model checking.
	SteadyState
)

// Settings is the caller-facing configuration for a reduction: precision
// mode, termination tolerance, and solver choice.
type Settings struct {
	Epsilon                    float64 // termination error, (0, 0.5)
	ComputeKappa               bool
	ConstantKappaDecimalDigits int // >= 1
	Solver                     dtmc.SolverKind
}

// withDefaults fills in PRISM's own defaults where Settings leaves a
// field at its zero value.
func (s Settings) withDefaults() Settings {
	if s.Epsilon <= 0 {
		s.Epsilon = 1e-6
	}
	if s.ConstantKappaDecimalDigits < 1 {
		s.ConstantKappaDecimalDigits = 20
	}
	return s
}

// defaultUnderflow / defaultOverflow are the underflow/overflow guards passed
// to Fox-Glynn, matching PRISM's own constants (foxglynn.Compute does not
// consult them).
var (
	defaultUnderflow = decimal.New(1, -300)
	defaultOverflow  = decimal.New(1, 300)
)

// ACTMCReduction is the top-level orchestrator: given a model, reward
// structure, optional target set and mode, it lazily builds one Potato per
// alarm-capable event and stitches their results into a DTMC plus reward
// vector.
type ACTMCReduction struct {
	model    gsmp.ModelProvider
	rewards  gsmp.RewardProvider
	target   *bitset.Set
	mode     Mode
	settings Settings

	potatoes map[string]*potato.Potato
	kappa    decimal.Decimal
}

// New constructs a reduction. model and rewards are read-only for the
// reduction's lifetime.
func New(model gsmp.ModelProvider, rewards gsmp.RewardProvider, target *bitset.Set, mode Mode, settings Settings) (*ACTMCReduction, error) {
	if target == nil {
		target = bitset.New(model.NumStates())
	}
	r := &ACTMCReduction{
		model:    model,
		rewards:  rewards,
		target:   target,
		mode:     mode,
		settings: settings.withDefaults(),
		potatoes: make(map[string]*potato.Potato),
	}
	for _, e := range model.Events() {
		if !e.IsAlarmCapable() {
			continue
		}
		p, err := potato.ComputeStates(model, e, target)
		if err != nil {
			return nil, err
		}
		r.potatoes[e.ID] = p
	}
	return r, nil
}

// GetPotatoData returns the potato computed for eventID, or nil if that
// event is not alarm-capable (ordinary exponential events have no potato).
func (r *ACTMCReduction) GetPotatoData(eventID string) *potato.Potato {
	return r.potatoes[eventID]
}

// RelevantStates reports the states the reduced DTMC still distinguishes: a
// state is relevant if it has no alarm active, or is a potato entrance.
// Non-entrance interior potato states are not relevant - the reduction
// collapses them away.
func (r *ACTMCReduction) RelevantStates() *bitset.Set {
	relevant := bitset.New(r.model.NumStates())
	for s := 0; s < r.model.NumStates(); s++ {
		if r.model.ActiveEvent(s) == nil {
			relevant.Set(s)
		}
	}
	for _, p := range r.potatoes {
		for s := p.Entrances.NextSetBit(0); s >= 0; s = p.Entrances.NextSetBit(s + 1) {
			relevant.Set(s)
		}
	}
	return relevant
}

// uniformisationRate returns the model's own rate, raised as needed by
// GetDTMC to accommodate each potato's effective in-potato rate 1/theta(s).
func (r *ACTMCReduction) uniformisationRate() float64 {
	return r.model.MaxExitRate()
}

// ensureKappa derives (if settings.ComputeKappa) or looks up (otherwise) the
// precision budget and installs it on every potato.
func (r *ACTMCReduction) ensureKappa() (decimal.Decimal, error) {
	if !r.kappa.IsZero() {
		return r.kappa, nil
	}
	var kappa decimal.Decimal
	if r.settings.ComputeKappa {
		k, err := r.computeKappa()
		if err != nil {
			return decimal.Decimal{}, err
		}
		kappa = k
	} else {
		kappa = decimal.New(1, int32(-r.settings.ConstantKappaDecimalDigits))
	}
	floor := decimal.New(1, int32(-r.settings.ConstantKappaDecimalDigits))
	if kappa.LessThan(floor) {
		kappa = floor
	}
	if kappa.GreaterThan(decimal.NewFromInt(1)) {
		kappa = decimal.NewFromInt(1)
	}
	r.kappa = kappa
	for _, p := range r.potatoes {
		p.SetKappa(kappa)
	}
	return kappa, nil
}

// GetDTMC produces the DTMC D equivalent to the ACTMC modulo kappa, and its
// companion reward vector.
func (r *ACTMCReduction) GetDTMC() (*dtmc.DTMC, []float64, error) {
	kappa, err := r.ensureKappa()
	if err != nil {
		return nil, nil, err
	}
	return r.buildDTMC(kappa)
}

type potatoEntranceResult struct {
	state  int
	theta  float64
	result *potato.MeanResult
}

// settleRate runs the per-potato numerics at rate q and reports the largest
// effective in-potato rate 1/theta(s) observed: if 1/theta(s) exceeds q,
// q must rise to keep every potato's row stochastic. Called twice: once to
// discover whether q must rise, once (at the settled q) to produce the
// results buildDTMC installs.
func (r *ACTMCReduction) settleRate(q float64) (float64, []potatoEntranceResult, error) {
	maxRate := q
	var work []potatoEntranceResult
	for _, e := range r.model.Events() {
		p := r.potatoes[e.ID]
		if p == nil {
			continue
		}
		p.BuildDTMC(r.model, q)
		for s := p.Entrances.NextSetBit(0); s >= 0; s = p.Entrances.NextSetBit(s + 1) {
			res, err := potato.Compute(p, s, r.rewards, defaultUnderflow, defaultOverflow)
			if err != nil {
				return 0, nil, err
			}
			theta := res.Theta()
			if theta <= 0 {
				theta = 1 // no dwell time observed; avoid a divide-by-zero below
			}
			if rate := 1 / theta; rate > maxRate {
				maxRate = rate
			}
			work = append(work, potatoEntranceResult{state: s, theta: theta, result: res})
		}
	}
	return maxRate, work, nil
}

func (r *ACTMCReduction) buildDTMC(kappa decimal.Decimal) (*dtmc.DTMC, []float64, error) {
	for _, p := range r.potatoes {
		p.SetKappa(kappa)
	}

	n := r.model.NumStates()
	q0 := r.uniformisationRate()

	// First pass at the model's own rate: discover whether any potato's
	// effective in-potato rate exceeds it.
	q, _, err := r.settleRate(q0)
	if err != nil {
		return nil, nil, err
	}
	// Second pass at the settled rate: every potato's Fox-Glynn window and
	// transient numerics must be computed against the q that is actually
	// installed, not the provisional one from the first pass.
	_, work, err := r.settleRate(q)
	if err != nil {
		return nil, nil, err
	}

	c := dtmc.NewCTMC(n)
	for s := 0; s < n; s++ {
		c.SetRow(s, gsmp.CloneDistribution(r.model.Transitions(s)))
	}

	rewardVec := make([]float64, n)
	for s := 0; s < n; s++ {
		if r.mode == Reachability {
			rewardVec[s] = r.rewards.StateReward(s) / q
		} else {
			rewardVec[s] = r.rewards.StateReward(s)
		}
	}

	for _, w := range work {
		scaledExit := gsmp.CloneDistribution(w.result.MeanExit)
		rate := 1 / w.theta
		for _, succ := range scaledExit.Support() {
			scaledExit.Set(succ, scaledExit.Get(succ)*rate)
		}
		c.SetRow(w.state, scaledExit)

		if r.mode == Reachability {
			rewardVec[w.state] += w.result.MeanReward / (w.theta * q)
		} else {
			rewardVec[w.state] = w.result.MeanReward / w.theta
		}
	}

	d := dtmc.BuildUniformisedDTMC(c, q)
	return d, rewardVec, nil
}
