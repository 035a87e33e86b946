package geo

import (
	"math"
	"testing"
	"time"
)

// 0.01 degrees of latitude at the equator is roughly 1,113 meters.
func TestDistanceLatitudeDegreeHundredth(t *testing.T) {
	t.Parallel()

	got := Distance(0, 0, 0.01, 0)

	const want = 1113.0
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("Distance = %.1f m, want %.0f m ±1%%", got, want)
	}
}

func TestDistanceZeroForSamePoint(t *testing.T) {
	t.Parallel()

	if got := Distance(51.5, -0.12, 51.5, -0.12); got != 0 {
		t.Errorf("Distance(same point) = %f, want 0", got)
	}
}

func TestClosestStoreEmpty(t *testing.T) {
	t.Parallel()

	if got := ClosestStore(0, 0, nil); got != "" {
		t.Errorf("ClosestStore(no places) = %q, want none", got)
	}
}

func TestClosestStoreIgnoresOutOfRadius(t *testing.T) {
	t.Parallel()

	places := []Place{
		{ID: "far", Latitude: 1, Longitude: 1, Radius: 100},
	}

	if got := ClosestStore(0, 0, places); got != "" {
		t.Errorf("ClosestStore = %q, want none: position is outside every radius", got)
	}
}

func TestClosestStorePicksNearest(t *testing.T) {
	t.Parallel()

	places := []Place{
		{ID: "near", Latitude: 0.0001, Longitude: 0, Radius: 500},
		{ID: "farther", Latitude: 0.002, Longitude: 0, Radius: 500},
	}

	if got := ClosestStore(0, 0, places); got != "near" {
		t.Errorf("ClosestStore = %q, want near", got)
	}
}

func TestClosestStoreTieBreaksByID(t *testing.T) {
	t.Parallel()

	// Identical coordinates: equal distance, lowest id must win
	// regardless of slice order.
	places := []Place{
		{ID: "b", Latitude: 0, Longitude: 0, Radius: 100},
		{ID: "a", Latitude: 0, Longitude: 0, Radius: 100},
	}

	if got := ClosestStore(0, 0, places); got != "a" {
		t.Errorf("ClosestStore tie = %q, want a", got)
	}
}

func TestTrackerFiresOncePerTransition(t *testing.T) {
	t.Parallel()

	places := []Place{
		{ID: "s1", Latitude: 0, Longitude: 0, Radius: 200},
	}

	var entered []string

	tracker := NewTracker(func(storeID string, _ time.Time) {
		entered = append(entered, storeID)
	})

	at := time.UnixMilli(1000)

	// Repeated updates inside the same geofence: one transition.
	tracker.Observe(0, 0, places, at)
	tracker.Observe(0.0001, 0, places, at)
	tracker.Observe(0, 0.0001, places, at)

	if len(entered) != 1 || entered[0] != "s1" {
		t.Fatalf("entered = %v, want exactly one s1 transition", entered)
	}

	// Leave and re-enter: second transition, no callback for "none".
	if got, changed := tracker.Observe(1, 1, places, at); got != "" || !changed {
		t.Fatalf("Observe(outside) = (%q, %v), want (none, changed)", got, changed)
	}

	tracker.Observe(0, 0, places, at)

	if len(entered) != 2 {
		t.Errorf("entered = %v, want two transitions after re-entry", entered)
	}
}

func TestTrackerSetCurrentDoesNotFire(t *testing.T) {
	t.Parallel()

	fired := false
	tracker := NewTracker(func(string, time.Time) { fired = true })

	tracker.SetCurrent("s1")

	if fired {
		t.Error("SetCurrent fired the enter callback")
	}

	if tracker.Current() != "s1" {
		t.Errorf("Current = %q, want s1", tracker.Current())
	}
}
