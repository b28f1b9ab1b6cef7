package fear

import (
	"sort"
	"time"
)

// DefeatSnapshot is one persisted defeat record.
type DefeatSnapshot struct {
	At       time.Time `json:"at"`
	RegionID string    `json:"region_id"`
}

// Snapshot is the persisted form of a Tracker.
type Snapshot struct {
	Defeats []DefeatSnapshot `json:"defeats,omitempty"`
	// DisabledUntil maps region ID to the suppression deadline.
	DisabledUntil map[string]time.Time `json:"disabled_until,omitempty"`
}

// Snapshot captures the tracker state for persistence. Records are
// emitted oldest first.
func (t *Tracker) Snapshot() Snapshot {
	snap := Snapshot{}
	for _, r := range t.records {
		snap.Defeats = append(snap.Defeats, DefeatSnapshot{At: r.at, RegionID: r.regionID})
	}
	sort.Slice(snap.Defeats, func(i, j int) bool {
		return snap.Defeats[i].At.Before(snap.Defeats[j].At)
	})
	if len(t.disabled) > 0 {
		snap.DisabledUntil = make(map[string]time.Time, len(t.disabled))
		for regionID, until := range t.disabled {
			snap.DisabledUntil[regionID] = until
		}
	}
	return snap
}

// Restore replaces the tracker state with snap. Stale entries are kept
// as-is; the next Tick prunes them.
func (t *Tracker) Restore(snap Snapshot) {
	t.records = t.records[:0]
	for _, d := range snap.Defeats {
		t.records = append(t.records, record{at: d.At, regionID: d.RegionID})
	}
	t.disabled = make(map[string]time.Time, len(snap.DisabledUntil))
	for regionID, until := range snap.DisabledUntil {
		t.disabled[regionID] = until
	}
}
