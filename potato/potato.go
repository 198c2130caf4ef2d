// Package potato computes, for a single non-exponential alarm event, the
// region of states ("potato") in which that event is active, the locally
// re-indexed DTMC restricted to that region, and the per-entrance transient
// quantities (mean dwell time, mean exit distribution, mean accumulated
// reward) the reduction engine stitches together.
package potato

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/VojtechRehak/prism-gsmp/bitset"
	"github.com/VojtechRehak/prism-gsmp/dtmc"
	"github.com/VojtechRehak/prism-gsmp/gsmp"
)

// Potato is the maximal region of states in which event races, together with
// its local DTMC and the caches of per-entrance transient results.
type Potato struct {
	Event *gsmp.Event

	States     *bitset.Set
	Entrances  *bitset.Set
	Successors *bitset.Set

	localToGlobal []int
	globalToLocal map[int]int

	dtmc *dtmc.DTMC
	q    float64

	kappa  decimal.Decimal
	caches *cacheSet
}

// ComputeStates classifies model's states relative to event into the
// potato's states/entrances/successors, given an optional target set (states
// a reachability query must not let the potato absorb). target may be nil,
// meaning no target.
func ComputeStates(model gsmp.ModelProvider, event *gsmp.Event, target *bitset.Set) (*Potato, error) {
	if !event.IsAlarmCapable() {
		return nil, &gsmp.InvalidPotatoDistributionError{EventID: event.ID}
	}
	if event.Dist.Family == gsmp.Weibull {
		return nil, &gsmp.UnsupportedDistributionError{Family: gsmp.Weibull, EventID: event.ID}
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	active := event.Active()
	n := model.NumStates()
	if target == nil {
		target = bitset.New(n)
	}

	states := active.Clone()
	states.AndNot(target)

	entrances := bitset.New(n)
	successors := bitset.New(n)

	// 1. exponential CTMC inbound entrances: a state outside active(e) whose
	// row puts mass on a potato state.
	for s := 0; s < n; s++ {
		if active.Get(s) {
			continue
		}
		for _, j := range model.Transitions(s).Support() {
			if states.Get(j) {
				entrances.Set(j)
			}
		}
	}

	// 2. other-event inbound entrances.
	for _, other := range model.Events() {
		if other.ID == event.ID {
			continue
		}
		for s := other.Active().NextSetBit(0); s >= 0; s = other.Active().NextSetBit(s + 1) {
			trans := other.Transitions(s)
			if trans == nil {
				continue
			}
			for _, j := range trans.Support() {
				if states.Get(j) {
					entrances.Set(j)
				}
			}
		}
	}

	// 3. initial-state entrances.
	for s := model.InitialStates().NextSetBit(0); s >= 0; s = model.InitialStates().NextSetBit(s + 1) {
		if states.Get(s) {
			entrances.Set(s)
		}
	}

	// 4. self-re-entry entrances and e's own exits: inspect e's transitions
	// from each potato state; a successor still inside the potato is a
	// self-re-entry entrance, one outside is a successor.
	for s := states.NextSetBit(0); s >= 0; s = states.NextSetBit(s + 1) {
		trans := event.Transitions(s)
		if trans == nil {
			continue
		}
		for _, j := range trans.Support() {
			if states.Get(j) {
				entrances.Set(j)
			} else {
				successors.Set(j)
			}
		}
	}

	// 5. successors reachable in one CTMC step from a potato state.
	for s := states.NextSetBit(0); s >= 0; s = states.NextSetBit(s + 1) {
		for _, j := range model.Transitions(s).Support() {
			if !states.Get(j) {
				successors.Set(j)
			}
		}
	}

	// 6. tie-break: target ∩ active(e) is absorbed out of the potato into
	// successors (a target already excluded from states/entrances above, so
	// this only adds the successor membership).
	for s := target.NextSetBit(0); s >= 0; s = target.NextSetBit(s + 1) {
		if active.Get(s) {
			successors.Set(s)
		}
	}

	return &Potato{
		Event:      event,
		States:     states,
		Entrances:  entrances,
		Successors: successors,
		caches:     newCacheSet(),
	}, nil
}

// BuildDTMC constructs the local uniformised DTMC over states ∪ successors
// at rate q: states keep model's CTMC row restricted to that set, successors
// self-absorb.
func (p *Potato) BuildDTMC(model gsmp.ModelProvider, q float64) {
	all := make([]int, 0, p.States.Cardinality()+p.Successors.Cardinality())
	for s := p.States.NextSetBit(0); s >= 0; s = p.States.NextSetBit(s + 1) {
		all = append(all, s)
	}
	for s := p.Successors.NextSetBit(0); s >= 0; s = p.Successors.NextSetBit(s + 1) {
		all = append(all, s)
	}
	sort.Ints(all)

	p.localToGlobal = all
	p.globalToLocal = make(map[int]int, len(all))
	for i, g := range all {
		p.globalToLocal[g] = i
	}

	c := dtmc.NewCTMC(len(all))
	for i, g := range all {
		row := gsmp.NewDistribution()
		if p.Successors.Get(g) {
			row.Set(i, q) // self-loop at the uniformisation rate; P[i][i]=1 once uniformised
		} else {
			for _, j := range model.Transitions(g).Support() {
				if local, ok := p.globalToLocal[j]; ok {
					row.Add(local, model.Transitions(g).Get(j))
				}
			}
		}
		c.SetRow(i, row)
	}

	p.dtmc = dtmc.BuildUniformisedDTMC(c, q)
	p.q = q
	p.caches.invalidate()
}

// Local returns the local index for global state g, or -1 if g is not part
// of states ∪ successors.
func (p *Potato) Local(g int) int {
	if i, ok := p.globalToLocal[g]; ok {
		return i
	}
	return -1
}

// Global returns the global state index for local index i.
func (p *Potato) Global(i int) int { return p.localToGlobal[i] }

// DTMC returns the local uniformised potato DTMC (nil until BuildDTMC runs).
func (p *Potato) DTMC() *dtmc.DTMC { return p.dtmc }

// Q returns the uniformisation rate used to build the potato DTMC.
func (p *Potato) Q() float64 { return p.q }

// SetKappa installs the numerical precision budget for this potato, wiping
// every result cache - a potato whose kappa has not changed since the last
// SetKappa keeps its caches.
func (p *Potato) SetKappa(kappa decimal.Decimal) {
	if p.kappa.Equal(kappa) {
		return
	}
	p.kappa = kappa
	p.caches.invalidate()
}

// Kappa returns the precision budget currently in effect.
func (p *Potato) Kappa() decimal.Decimal { return p.kappa }
