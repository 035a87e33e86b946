package geo

import "time"

// Tracker debounces the resolved "current store" on value change: the
// enter callback fires exactly once per transition into a store, never
// once per position update.
type Tracker struct {
	current string
	onEnter func(storeID string, at time.Time)
}

// NewTracker creates a tracker. onEnter may be nil; current starts as
// "none" unless SetCurrent restores a persisted value.
func NewTracker(onEnter func(storeID string, at time.Time)) *Tracker {
	return &Tracker{onEnter: onEnter}
}

// Current returns the store id the tracker last resolved, "" for none.
func (t *Tracker) Current() string {
	return t.current
}

// SetCurrent restores the current store without firing the callback.
func (t *Tracker) SetCurrent(storeID string) {
	t.current = storeID
}

// Observe resolves the position against the given geofences and returns
// the resolved store id plus whether the current store changed. A
// transition into a store fires onEnter; a transition to "none" only
// updates the pointer.
func (t *Tracker) Observe(lat, lon float64, places []Place, at time.Time) (string, bool) {
	resolved := ClosestStore(lat, lon, places)
	if resolved == t.current {
		return resolved, false
	}

	t.current = resolved

	if resolved != "" && t.onEnter != nil {
		t.onEnter(resolved, at)
	}

	return resolved, true
}
