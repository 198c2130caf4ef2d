package gsmp

import "sort"

// Distribution is a sparse probability distribution over state indices,
// mirroring the PRISM "Distribution" class used throughout
// ACTMCPotatoData.java: a map from state index to probability mass,
// with helpers for support, sum, and weighted merge.
type Distribution struct {
	mass map[int]float64
}

// NewDistribution returns an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{mass: make(map[int]float64)}
}

// CloneDistribution returns an independent copy of d.
func CloneDistribution(d *Distribution) *Distribution {
	c := NewDistribution()
	for k, v := range d.mass {
		c.mass[k] = v
	}
	return c
}

// Add increases the mass at state s by p (creating the entry if absent).
func (d *Distribution) Add(s int, p float64) {
	d.mass[s] += p
}

// Set overwrites the mass at state s.
func (d *Distribution) Set(s int, p float64) {
	if p == 0 {
		delete(d.mass, s)
		return
	}
	d.mass[s] = p
}

// Get returns the mass at state s (0 if absent).
func (d *Distribution) Get(s int) float64 {
	return d.mass[s]
}

// Support returns the set of states with non-zero mass, sorted
// ascending for deterministic iteration.
func (d *Distribution) Support() []int {
	out := make([]int, 0, len(d.mass))
	for s := range d.mass {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Sum returns the total probability mass.
func (d *Distribution) Sum() float64 {
	total := 0.0
	for _, p := range d.mass {
		total += p
	}
	return total
}

// IsStochastic reports whether the distribution sums to 1 within tol.
func (d *Distribution) IsStochastic(tol float64) bool {
	sum := d.Sum()
	diff := sum - 1
	if diff < 0 {
		diff = -diff
	}
	return diff <= tol
}

// Normalize rescales the distribution so its mass sums to 1, leaving it
// unchanged if it is already (near) zero everywhere.
func (d *Distribution) Normalize() {
	sum := d.Sum()
	if sum == 0 {
		return
	}
	for s, p := range d.mass {
		d.mass[s] = p / sum
	}
}

// AbsNonNegative replaces every negative mass entry with its absolute
// value, for absorbing floating-point noise accumulated over many
// uniformised transient iteration steps.
func (d *Distribution) AbsNonNegative() {
	for s, p := range d.mass {
		if p < 0 {
			d.mass[s] = -p
		}
	}
}
