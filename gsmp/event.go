package gsmp

import (
	"fmt"

	"github.com/VojtechRehak/prism-gsmp/bitset"
)

// Family identifies a firing-time distribution family.
type Family int

const (
	Exponential Family = iota
	Dirac
	Erlang
	Uniform
	Weibull
)

func (f Family) String() string {
	switch f {
	case Exponential:
		return "Exponential"
	case Dirac:
		return "Dirac"
	case Erlang:
		return "Erlang"
	case Uniform:
		return "Uniform"
	case Weibull:
		return "Weibull"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Dist is a tagged firing-time distribution. Parameter meaning depends
// on Family:
//
//	Dirac:       Param1 = d (fires at time d >= 0)
//	Exponential: Param1 = lambda > 0
//	Erlang:      Param1 = k (shape, >=1, truncated to int), Param2 = lambda > 0
//	Uniform:     Param1 = a, Param2 = b, 0 <= a < b
//	Weibull:     Param1 = scale > 0, Param2 = shape > 0
type Dist struct {
	Family Family
	Param1 float64
	Param2 float64
}

// Validate checks the distribution's parameters for well-formedness
// (positive rates, shapes, and bounds), returning an *InvalidModelError
// if they are violated.
func (d Dist) Validate() error {
	switch d.Family {
	case Dirac:
		if d.Param1 < 0 {
			return &InvalidModelError{Reason: "Dirac distribution requires d >= 0"}
		}
	case Exponential:
		if d.Param1 <= 0 {
			return &InvalidModelError{Reason: "Exponential distribution requires lambda > 0"}
		}
	case Erlang:
		if d.Param1 < 1 {
			return &InvalidModelError{Reason: "Erlang distribution requires shape k >= 1"}
		}
		if d.Param2 <= 0 {
			return &InvalidModelError{Reason: "Erlang distribution requires lambda > 0"}
		}
	case Uniform:
		if !(d.Param1 >= 0 && d.Param1 < d.Param2) {
			return &InvalidModelError{Reason: "Uniform distribution requires 0 <= a < b"}
		}
	case Weibull:
		if d.Param1 <= 0 || d.Param2 <= 0 {
			return &InvalidModelError{Reason: "Weibull distribution requires scale > 0 and shape > 0"}
		}
	default:
		return &InvalidModelError{Reason: fmt.Sprintf("unrecognized distribution family %v", d.Family)}
	}
	return nil
}

// Event is a GSMP event: a globally-unique identifier, a firing-time
// distribution, the set of states in which it races, and for each
// active state a successor distribution that fires when the event wins
// the race.
type Event struct {
	ID          string
	Dist        Dist
	active      *bitset.Set
	transitions map[int]*Distribution
}

// NewEvent constructs an event. The active set and per-state successor
// distributions are supplied via AddActive.
func NewEvent(id string, dist Dist) *Event {
	return &Event{
		ID:          id,
		Dist:        dist,
		active:      bitset.New(0),
		transitions: make(map[int]*Distribution),
	}
}

// AddActive marks state s as active for this event, with firing
// transition distribution trans (which must be stochastic).
func (e *Event) AddActive(s int, trans *Distribution) error {
	if trans == nil || !trans.IsStochastic(1e-9) {
		return &InvalidModelError{Reason: fmt.Sprintf("event %q transition distribution at state %d is not stochastic", e.ID, s)}
	}
	e.active.Set(s)
	e.transitions[s] = trans
	return nil
}

// Active returns the set of states in which this event races.
func (e *Event) Active() *bitset.Set { return e.active }

// Transitions returns the successor distribution fired at state s (nil
// if s is not active for this event).
func (e *Event) Transitions(s int) *Distribution {
	return e.transitions[s]
}

// Validate checks the event-level invariants: non-empty active set,
// valid distribution parameters, and that an Exponential event is never
// treated as an alarm by callers that require a potato (checked by the
// caller, not here, since Exponential events are valid ordinary CTMC
// transitions).
func (e *Event) Validate() error {
	if e.active.IsEmpty() {
		return &InvalidModelError{Reason: fmt.Sprintf("event %q has an empty active set", e.ID)}
	}
	return e.Dist.Validate()
}

// IsAlarmCapable reports whether this event's family can be reduced as
// a potato alarm at all (Exponential events are never alarms; they are
// folded directly into the CTMC rate matrix).
func (e *Event) IsAlarmCapable() bool {
	return e.Dist.Family != Exponential
}
