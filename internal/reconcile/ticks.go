package reconcile

// tickTracker keeps the tick range each pool crossed within the current
// epoch. A fresh tracker is created per epoch.
type tickTracker struct {
	ranges map[string]tickRange
}

type tickRange struct {
	min, max int32
}

func newTickTracker() *tickTracker {
	return &tickTracker{ranges: make(map[string]tickRange)}
}

// observe records tick for pool and returns the epoch's range so far.
func (t *tickTracker) observe(poolID string, tick int32) (int32, int32) {
	r, ok := t.ranges[poolID]
	if !ok {
		r = tickRange{min: tick, max: tick}
	}
	if tick < r.min {
		r.min = tick
	}
	if tick > r.max {
		r.max = tick
	}
	t.ranges[poolID] = r
	return r.min, r.max
}
