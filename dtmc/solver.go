package dtmc

import (
	"math"

	"github.com/VojtechRehak/prism-gsmp/bitset"
	"github.com/VojtechRehak/prism-gsmp/gsmp"
)

// SolverKind selects the inner DTMC reach-reward solver. Gauss-Seidel is
// the reliability default; Jacobi is offered as the second named option.
type SolverKind int

const (
	GaussSeidel SolverKind = iota
	Jacobi
)

// maxIterations bounds the fixed-point loop so a non-convergent model
// surfaces as gsmp.UnsolvableError rather than looping forever.
const maxIterations = 100000

// Solve computes the expected total reward accumulated before first
// reaching a state in target, for every state of d, via the requested
// solver kind. target may be mutated by the caller between calls (the
// kappa-derivation stage probes the solver once per relevant state, with
// that state as the target) - Solve reads it only during the call and does
// not retain the pointer.
//
// cancel, if non-nil, is checked once per outer sweep; if it returns
// true, Solve returns early with the best solution found so far and a
// nil error, giving the caller a cooperative cancellation point.
func Solve(kind SolverKind, d *DTMC, rew RewardVector, target *bitset.Set, termCrit float64, cancel func() bool) ([]float64, error) {
	switch kind {
	case Jacobi:
		return solveJacobi(d, rew, target, termCrit, cancel)
	default:
		return solveGaussSeidel(d, rew, target, termCrit, cancel)
	}
}

func solveGaussSeidel(d *DTMC, rew RewardVector, target *bitset.Set, termCrit float64, cancel func() bool) ([]float64, error) {
	n := d.NumStates()
	soln := make([]float64, n)

	for iter := 0; iter < maxIterations; iter++ {
		maxDiff := 0.0
		for s := 0; s < n; s++ {
			if target.Get(s) {
				continue
			}
			row := d.Rows[s]
			sum := rew.Reward(s)
			for _, t := range row.Support() {
				if t == s {
					continue // self-loop handled by the division below
				}
				sum += row.Get(t) * soln[t]
			}
			selfProb := row.Get(s)
			var newVal float64
			if selfProb < 1 {
				newVal = sum / (1 - selfProb)
			} else {
				newVal = soln[s] // fully self-absorbing; leave unchanged
			}
			diff := math.Abs(newVal - soln[s])
			if diff > maxDiff {
				maxDiff = diff
			}
			soln[s] = newVal
		}
		if maxDiff < termCrit {
			return soln, nil
		}
		if cancel != nil && cancel() {
			return soln, nil
		}
	}
	return soln, &gsmp.UnsolvableError{Reason: "Gauss-Seidel reach-reward did not converge within the iteration budget"}
}

func solveJacobi(d *DTMC, rew RewardVector, target *bitset.Set, termCrit float64, cancel func() bool) ([]float64, error) {
	n := d.NumStates()
	soln := make([]float64, n)
	next := make([]float64, n)

	for iter := 0; iter < maxIterations; iter++ {
		maxDiff := 0.0
		for s := 0; s < n; s++ {
			if target.Get(s) {
				next[s] = 0
				continue
			}
			row := d.Rows[s]
			sum := rew.Reward(s)
			for _, t := range row.Support() {
				sum += row.Get(t) * soln[t]
			}
			next[s] = sum
			if diff := math.Abs(next[s] - soln[s]); diff > maxDiff {
				maxDiff = diff
			}
		}
		soln, next = next, soln
		if maxDiff < termCrit {
			return soln, nil
		}
		if cancel != nil && cancel() {
			return soln, nil
		}
	}
	return soln, &gsmp.UnsolvableError{Reason: "Jacobi reach-reward did not converge within the iteration budget"}
}
