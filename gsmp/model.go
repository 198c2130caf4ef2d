package gsmp

import (
	"fmt"

	"github.com/VojtechRehak/prism-gsmp/bitset"
)

// ModelProvider is the external model interface the reduction engine
// consumes. ACTMC implements it directly.
type ModelProvider interface {
	NumStates() int
	InitialStates() *bitset.Set
	Transitions(s int) *Distribution
	MaxExitRate() float64
	Events() []*Event
	ActiveEvent(s int) *Event // nil if no non-exponential event is active in s
}

// GSMP generalizes ACTMC to models where more than one non-exponential
// event may be active per state - the interface PRISM's own
// explicit.GSMP names, kept separate from ACTMC so the strictly-more-
// restrictive alarm invariant stays an ACTMC-only property. The
// reduction engine in this module only ever consumes ACTMC.
type GSMP interface {
	NumStates() int
	EventList() []*Event
	ActiveEvents(s int) []*Event
}

// ACTMC is a CTMC (rate matrix over N states plus an initial-state set)
// together with a list of GSMP events, under the ACTMC restriction that
// at most one non-exponential event is active per state. Exponential
// events may overlap freely and are folded into the rate matrix rather
// than reduced as potatoes.
type ACTMC struct {
	numStates int
	rows      []*Distribution // CTMC row per state: exponential-only transitions
	initial   *bitset.Set
	events    []*Event
	byID      map[string]*Event
	alarmAt   map[int]*Event // state -> the single non-exponential event active there
}

// NewACTMC constructs an ACTMC with n states and no events yet. Rows
// default to empty distributions; set them via SetTransitions before
// adding events that race against them.
func NewACTMC(n int) *ACTMC {
	rows := make([]*Distribution, n)
	for i := range rows {
		rows[i] = NewDistribution()
	}
	return &ACTMC{
		numStates: n,
		rows:      rows,
		initial:   bitset.New(n),
		events:    nil,
		byID:      make(map[string]*Event),
		alarmAt:   make(map[int]*Event),
	}
}

// SetTransitions installs the exponential (plain CTMC) row for state s.
func (m *ACTMC) SetTransitions(s int, d *Distribution) {
	m.rows[s] = d
}

// AddInitial marks s as an initial state.
func (m *ACTMC) AddInitial(s int) { m.initial.Set(s) }

// AddEvent registers event e with the model, enforcing the ACTMC
// invariant that at most one non-exponential event is active in any
// given state. An Exponential event's transitions are folded into the
// CTMC rows of its active states (rate times successor probability).
func (m *ACTMC) AddEvent(e *Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.IsAlarmCapable() {
		for s := e.Active().NextSetBit(0); s >= 0; s = e.Active().NextSetBit(s + 1) {
			if existing, ok := m.alarmAt[s]; ok && existing.ID != e.ID {
				return &InvalidModelError{Reason: fmt.Sprintf(
					"state %d has two non-exponential alarms active (%q and %q); ACTMC permits at most one", s, existing.ID, e.ID)}
			}
		}
	}
	m.events = append(m.events, e)
	m.byID[e.ID] = e
	if e.IsAlarmCapable() {
		for s := e.Active().NextSetBit(0); s >= 0; s = e.Active().NextSetBit(s + 1) {
			m.alarmAt[s] = e
		}
	} else {
		for s := e.Active().NextSetBit(0); s >= 0; s = e.Active().NextSetBit(s + 1) {
			row := CloneDistribution(m.rows[s])
			trans := e.Transitions(s)
			for _, t := range trans.Support() {
				row.Add(t, e.Dist.Param1*trans.Get(t))
			}
			m.rows[s] = row
		}
	}
	return nil
}

// NumStates implements ModelProvider.
func (m *ACTMC) NumStates() int { return m.numStates }

// InitialStates implements ModelProvider.
func (m *ACTMC) InitialStates() *bitset.Set { return m.initial }

// Transitions implements ModelProvider: the exponential CTMC row for
// state s, including the transitions of Exponential events folded in by
// AddEvent (non-exponential event transitions are not included - they are
// reduced separately per potato).
func (m *ACTMC) Transitions(s int) *Distribution { return m.rows[s] }

// MaxExitRate implements ModelProvider: the uniformisation rate q, the
// maximum total exit rate over all states' exponential rows.
func (m *ACTMC) MaxExitRate() float64 {
	max := 0.0
	for _, row := range m.rows {
		if sum := row.Sum(); sum > max {
			max = sum
		}
	}
	if max == 0 {
		return 1
	}
	return max
}

// Events implements ModelProvider.
func (m *ACTMC) Events() []*Event { return m.events }

// EventByID looks up an event by its identifier.
func (m *ACTMC) EventByID(id string) *Event { return m.byID[id] }

// ActiveEvent implements ModelProvider: the single non-exponential
// event active in state s, or nil.
func (m *ACTMC) ActiveEvent(s int) *Event { return m.alarmAt[s] }

// EventList implements GSMP.
func (m *ACTMC) EventList() []*Event { return m.events }

// ActiveEvents implements GSMP, generalized to the (unused by the
// reduction engine, but interface-complete) multi-alarm case: for an
// ACTMC this is always at most a single-element slice.
func (m *ACTMC) ActiveEvents(s int) []*Event {
	if e, ok := m.alarmAt[s]; ok {
		return []*Event{e}
	}
	return nil
}
