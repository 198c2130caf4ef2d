// Package mdq1 builds the M/D/1/5 queue fixture used across the potato and
// reduction test suites: Poisson arrivals racing against a deterministic
// (Dirac) service time, capacity 5.
package mdq1

import "github.com/VojtechRehak/prism-gsmp/gsmp"

// Capacity is the queue's maximum occupancy (states 0..Capacity).
const Capacity = 5

// Model parameterizes the queue: exponential arrivals at ArrivalRate,
// deterministic service taking ServiceTime.
type Model struct {
	ArrivalRate float64
	ServiceTime float64
}

// Default returns a tractable M/D/1/5 parameterization: arrival rate 1,
// service time 1, using a Dirac service time in place of the Weibull
// producer some M/D/1 write-ups use, since Weibull alarms are unsupported.
func Default() Model {
	return Model{ArrivalRate: 1, ServiceTime: 1}
}

// Build constructs the ACTMC and reward structure for the queue: state s is
// the current occupancy; arrivals (exponential, blocked at capacity) push
// occupancy up by one; the "service" event (Dirac(ServiceTime), active
// whenever occupancy > 0) completes service and pulls occupancy down by one.
func (m Model) Build() (*gsmp.ACTMC, *gsmp.RewardStructure, error) {
	n := Capacity + 1
	actmc := gsmp.NewACTMC(n)
	actmc.AddInitial(0)

	for s := 0; s < Capacity; s++ {
		row := gsmp.NewDistribution()
		row.Set(s+1, m.ArrivalRate)
		actmc.SetTransitions(s, row)
	}
	actmc.SetTransitions(Capacity, gsmp.NewDistribution()) // arrivals blocked when full

	service := gsmp.NewEvent("service", gsmp.Dist{Family: gsmp.Dirac, Param1: m.ServiceTime})
	for s := 1; s <= Capacity; s++ {
		trans := gsmp.NewDistribution()
		trans.Set(s-1, 1.0)
		if err := service.AddActive(s, trans); err != nil {
			return nil, nil, err
		}
	}
	if err := actmc.AddEvent(service); err != nil {
		return nil, nil, err
	}

	rewards := gsmp.NewRewardStructure(n)
	for s := 0; s < n; s++ {
		if err := rewards.SetStateReward(s, float64(s)); err != nil {
			return nil, nil, err
		}
	}

	return actmc, rewards, nil
}
