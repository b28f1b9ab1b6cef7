// Package fear tracks rapid wild defeats per region and temporarily
// suppresses spawns when a region's creatures get scared off.
package fear

import (
	"sort"
	"time"
)

// Defaults matching the shipped balance values.
const (
	DefaultWindow    = 30 * time.Second
	DefaultThreshold = 10
	DefaultDuration  = 60 * time.Second
)

type record struct {
	at       time.Time
	regionID string
}

// Tracker keeps a sliding window of defeat records and the set of
// regions currently suppressed. It is not safe for concurrent use; the
// simulation mutates it from the tick loop only.
type Tracker struct {
	window    time.Duration
	threshold int
	duration  time.Duration

	records  []record
	disabled map[string]time.Time
}

// New builds a Tracker. Non-positive window or duration and a threshold
// below one fall back to the defaults.
func New(window time.Duration, threshold int, duration time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Tracker{
		window:    window,
		threshold: threshold,
		duration:  duration,
		disabled:  make(map[string]time.Time),
	}
}

// RecordDefeat appends a defeat record for regionID and prunes expired
// records. It returns true when the defeat trips the region into the
// suppressed state.
//
// Postcondition: on a trip the region's remaining records are consumed,
// so the next suppression needs a fresh run of defeats.
func (t *Tracker) RecordDefeat(regionID string, now time.Time) bool {
	t.records = append(t.records, record{at: now, regionID: regionID})
	t.prune(now)

	recent := 0
	for _, r := range t.records {
		if r.regionID == regionID {
			recent++
		}
	}
	if recent < t.threshold {
		return false
	}

	t.disabled[regionID] = now.Add(t.duration)
	t.purgeRegion(regionID)
	return true
}

// Disabled reports whether regionID is currently suppressed.
func (t *Tracker) Disabled(regionID string, now time.Time) bool {
	until, ok := t.disabled[regionID]
	return ok && now.Before(until)
}

// DisabledUntil returns the suppression deadline for regionID, if any.
func (t *Tracker) DisabledUntil(regionID string) (time.Time, bool) {
	until, ok := t.disabled[regionID]
	return until, ok
}

// Pressure returns how close regionID is to tripping, as a fraction in
// [0, 1] of the threshold. Expired records do not count.
func (t *Tracker) Pressure(regionID string, now time.Time) float64 {
	recent := 0
	for _, r := range t.records {
		if r.regionID == regionID && now.Sub(r.at) <= t.window {
			recent++
		}
	}
	p := float64(recent) / float64(t.threshold)
	if p > 1 {
		return 1
	}
	return p
}

// Tick prunes expired defeat records and clears lapsed suppressions.
// It returns the IDs of regions whose suppression ended on this call,
// sorted, so the caller can restart spawns and notify.
func (t *Tracker) Tick(now time.Time) []string {
	t.prune(now)

	var cleared []string
	for regionID, until := range t.disabled {
		if !now.Before(until) {
			delete(t.disabled, regionID)
			cleared = append(cleared, regionID)
		}
	}
	sort.Strings(cleared)
	return cleared
}

// Reset drops all of regionID's defeat records and lifts its
// suppression if present.
func (t *Tracker) Reset(regionID string) {
	t.purgeRegion(regionID)
	delete(t.disabled, regionID)
}

func (t *Tracker) prune(now time.Time) {
	kept := t.records[:0]
	for _, r := range t.records {
		if now.Sub(r.at) <= t.window {
			kept = append(kept, r)
		}
	}
	t.records = kept
}

func (t *Tracker) purgeRegion(regionID string) {
	kept := t.records[:0]
	for _, r := range t.records {
		if r.regionID != regionID {
			kept = append(kept, r)
		}
	}
	t.records = kept
}
