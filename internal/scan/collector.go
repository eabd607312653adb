package scan

import "sync"

// Collector accumulates plane observations for one scan session. It keeps
// only unclassified surfaces, deduplicates by surface identity, and
// preserves first-acceptance order. It does no spatial ordering: the first
// two surfaces the detector reported are the two the estimator will use.
type Collector struct {
	mu           sync.Mutex
	observations []PlaneObservation
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// OnAdd handles a surface add event. Surfaces with a known classification
// are ignored; a surface whose ID is already present is ignored (the
// detector occasionally re-adds after relocalisation).
func (c *Collector) OnAdd(obs PlaneObservation) {
	if obs.Classification != ClassificationUnclassified {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOfLocked(obs.ID) >= 0 {
		return
	}
	c.observations = append(c.observations, obs)
}

// OnUpdate handles a surface update event. A known ID has its extents and
// pose overwritten in place. An unknown ID that is still unclassified is
// treated as an implicit add: the detector classified the surface late and
// the add event never qualified.
func (c *Collector) OnUpdate(obs PlaneObservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOfLocked(obs.ID); i >= 0 {
		c.observations[i].ExtentWidth = obs.ExtentWidth
		c.observations[i].ExtentHeight = obs.ExtentHeight
		c.observations[i].Center = obs.Center
		c.observations[i].Normal = obs.Normal
		return
	}

	if obs.Classification != ClassificationUnclassified {
		return
	}
	c.observations = append(c.observations, obs)
}

// Observations returns a copy of the collected observations in
// first-acceptance order.
func (c *Collector) Observations() []PlaneObservation {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PlaneObservation, len(c.observations))
	copy(out, c.observations)
	return out
}

// Len returns the number of collected observations.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observations)
}

// Reset discards all collected observations.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observations = nil
}

// indexOfLocked returns the index of the observation with the given ID,
// or -1. Caller must hold c.mu.
func (c *Collector) indexOfLocked(id string) int {
	for i := range c.observations {
		if c.observations[i].ID == id {
			return i
		}
	}
	return -1
}
