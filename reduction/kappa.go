package reduction

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/VojtechRehak/prism-gsmp/bitset"
	"github.com/VojtechRehak/prism-gsmp/dtmc"
)

// stage1Epsilon is the coarse epsilon the first derivation stage uses to
// seed the two kappa candidates before the empirical stage-2 probe refines
// them.
const stage1Epsilon = 0.1

// computeKappa implements ACTMCReduction's two-stage adaptive precision
// derivation: a coarse seed probe followed by an empirical stage-2 pass
// that tightens the bound using the actual reach-reward solutions.
func (r *ACTMCReduction) computeKappa() (decimal.Decimal, error) {
	relevant := r.RelevantStates()
	nonTarget := relevant.Clone()
	nonTarget.AndNot(r.target)
	n := nonTarget.Cardinality()
	if n == 0 {
		// Nothing to probe: fall back to the configured constant precision.
		return decimal.New(1, int32(-r.settings.ConstantKappaDecimalDigits)), nil
	}
	nf := float64(n)

	seedKappa := decimal.New(1, -20)
	minProb, maxRew, err := r.probeMinMax(seedKappa, nonTarget)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if minProb <= 0 {
		minProb = 1e-20
	}

	baseKappa1 := minProb / 2
	baseKappa2 := math.Min(baseKappa1, maxRew)

	maxExpectedSteps := nf / math.Pow(baseKappa1, nf)
	maxExpectedTR := maxExpectedSteps * maxRew

	b := 1 / (2 * maxExpectedSteps * nf)
	kappaSteps := math.Min(baseKappa1, math.Min(b, stage1Epsilon/(2*maxExpectedSteps*(maxExpectedSteps*nf+1))))
	kappaTR := math.Min(baseKappa2, math.Min(b, stage1Epsilon/(2*maxExpectedSteps*(maxExpectedTR*nf+1))))

	minTime, maxTime, maxSteps, maxTR, err := r.probeStage2(
		decimal.NewFromFloat(kappaSteps), decimal.NewFromFloat(kappaTR), relevant, nonTarget)
	if err != nil {
		return decimal.Decimal{}, err
	}

	eps := r.settings.Epsilon
	var kappa float64
	if r.mode == Reachability {
		kappa = math.Min(kappaSteps, math.Min(kappaTR,
			math.Min(1/(2*nf*maxSteps), eps/(2*maxSteps*(maxTR*nf+1))))) * eps
	} else {
		m := math.Max(maxTR, maxTime)
		kappa = math.Min(kappaSteps, math.Min(kappaTR,
			(minTime*minTime*eps/nf)/(m*(eps/nf+2)*(nf*m+1)))) * eps
	}

	return decimal.NewFromFloat(kappa), nil
}

// probeMinMax builds a seed DTMC at kappa and reports the minimum nonzero
// transition probability and maximum state reward over nonTarget. maxRew is
// padded by kappa itself: the seed DTMC this reads rewardVec from is only
// accurate to kappa, so the true maximum could exceed what was observed by
// that much. ACTMCReduction's own derivation leaves this as "maxRew +- kappa"
// with a comment questioning the sign; the add-kappa choice is preserved
// here.
func (r *ACTMCReduction) probeMinMax(kappa decimal.Decimal, nonTarget *bitset.Set) (minProb, maxRew float64, err error) {
	d, rewardVec, buildErr := r.buildDTMC(kappa)
	if buildErr != nil {
		return 0, 0, buildErr
	}

	minProb = math.Inf(1)
	for s := nonTarget.NextSetBit(0); s >= 0; s = nonTarget.NextSetBit(s + 1) {
		for _, t := range d.Rows[s].Support() {
			if p := d.Rows[s].Get(t); p > 0 && p < minProb {
				minProb = p
			}
		}
		if rewardVec[s] > maxRew {
			maxRew = rewardVec[s]
		}
	}
	if math.IsInf(minProb, 1) {
		minProb = 0
	}
	kappaF, _ := kappa.Float64()
	maxRew += kappaF
	return minProb, maxRew, nil
}

// probeStage2 builds the two stage-2 DTMCs (at kappaSteps and kappaTR) and
// solves reach-reward from each relevant state treated transiently as a
// target, harvesting the empirical bounds the stage-2 refinement needs.
func (r *ACTMCReduction) probeStage2(kappaSteps, kappaTR decimal.Decimal, relevant, nonTarget *bitset.Set) (minTime, maxTime, maxSteps, maxTR float64, err error) {
	dSteps, _, buildErr := r.buildDTMC(kappaSteps)
	if buildErr != nil {
		err = buildErr
		return
	}
	q := dSteps.UniformizationRate

	dTR, rewTR, buildErr := r.buildDTMC(kappaTR)
	if buildErr != nil {
		err = buildErr
		return
	}

	n := r.model.NumStates()
	minTime = math.Inf(1)

	for v := relevant.NextSetBit(0); v >= 0; v = relevant.NextSetBit(v + 1) {
		target := bitset.New(n)
		target.Set(v)

		steps, stepErr := dtmc.Solve(r.settings.Solver, dSteps, dtmc.ConstantReward(1), target, 1e-8, nil)
		if stepErr != nil {
			err = stepErr
			return
		}
		totalRew, rewErr := dtmc.Solve(r.settings.Solver, dTR, dtmc.SliceReward(rewTR), target, 1e-8, nil)
		if rewErr != nil {
			err = rewErr
			return
		}

		for s := nonTarget.NextSetBit(0); s >= 0; s = nonTarget.NextSetBit(s + 1) {
			if s == v {
				continue
			}
			timeVal := steps[s] / q
			if timeVal < minTime {
				minTime = timeVal
			}
			if timeVal > maxTime {
				maxTime = timeVal
			}
			if steps[s] > maxSteps {
				maxSteps = steps[s]
			}
			if totalRew[s] > maxTR {
				maxTR = totalRew[s]
			}
		}
	}

	if math.IsInf(minTime, 1) || minTime == 0 {
		minTime = 1 // no nonTarget state observed a finite positive time; fall back
	}
	if maxTime == 0 {
		maxTime = 1
	}
	if maxSteps == 0 {
		maxSteps = 1
	}
	if maxTR == 0 {
		maxTR = 1
	}
	return minTime, maxTime, maxSteps, maxTR, nil
}
