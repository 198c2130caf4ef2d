package potato

import (
	"fmt"

	"github.com/VojtechRehak/prism-gsmp/gsmp"
)

// MeanResult holds the three per-entrance quantities ACTMCPotatoData's
// computeMeanTimes/computeMeanDistributions/computeMeanRewards produce, plus
// the raw pre-redistribution exit vector (distBeforeEvent) meanReward needs.
type MeanResult struct {
	MeanTime        *gsmp.Distribution // over potato states, indexed by global state
	MeanExit        *gsmp.Distribution // over successors, indexed by global state
	MeanReward      float64
	DistBeforeEvent *gsmp.Distribution // over potato states, before event-transition redistribution
}

// Theta returns the total expected dwell time Σ meanTime.
func (r *MeanResult) Theta() float64 {
	if r.MeanTime == nil {
		return 0
	}
	return r.MeanTime.Sum()
}

// cacheSet groups a potato's lazily-populated per-entrance result caches so
// they can be invalidated as a single atomic swap whenever kappa changes,
// rather than tracking a per-entrance dirty flag.
type cacheSet struct {
	byEntrance map[int]*MeanResult
}

func newCacheSet() *cacheSet {
	return &cacheSet{byEntrance: make(map[int]*MeanResult)}
}

func (c *cacheSet) invalidate() {
	c.byEntrance = make(map[int]*MeanResult)
}

func (c *cacheSet) get(entrance int) (*MeanResult, bool) {
	r, ok := c.byEntrance[entrance]
	return r, ok
}

func (c *cacheSet) put(entrance int, r *MeanResult) {
	c.byEntrance[entrance] = r
}

func (p *Potato) cachedResult(entrance int) (*MeanResult, bool) {
	return p.caches.get(entrance)
}

func (p *Potato) storeResult(entrance int, r *MeanResult) {
	p.caches.put(entrance, r)
}

// CachedResult returns the previously-computed MeanResult for entrance, or
// an error if Compute has not yet been called for it at the potato's
// current kappa.
func (p *Potato) CachedResult(entrance int) (*MeanResult, error) {
	if r, ok := p.cachedResult(entrance); ok {
		return r, nil
	}
	return nil, &notComputedError{entrance: entrance}
}

type notComputedError struct{ entrance int }

func (e *notComputedError) Error() string {
	return fmt.Sprintf("potato: no cached result for entrance %d; call Compute first", e.entrance)
}
