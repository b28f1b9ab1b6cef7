package battle

import (
	"fmt"
	"time"

	"github.com/pokengu/idlemon/internal/game/creature"
	"github.com/pokengu/idlemon/internal/game/region"
)

// WildSnapshot is the persisted encounter target.
type WildSnapshot struct {
	Creature   *creature.Creature
	LastAttack time.Time
	Fleeing    bool
	FleeAt     time.Time
}

// Snapshot is the full persisted state of a battle controller. In-flight
// capture attempts are not persisted; a throw that was pending at save
// time is simply lost.
type Snapshot struct {
	RegionID   string
	Wild       *WildSnapshot
	Countdown  time.Duration
	SpawnArmed bool
	SpawnQueue []string
	Guaranteed bool
	PlainBalls int
	LogEntries []Entry
}

// Snapshot captures the controller's state for persistence.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		RegionID:   c.region.ID,
		Countdown:  c.countdown,
		SpawnArmed: c.spawnArmed,
		SpawnQueue: append([]string(nil), c.queue...),
		Guaranteed: c.guaranteed,
		PlainBalls: c.plainBalls,
		LogEntries: c.blog.Entries(),
	}
	if c.wild != nil {
		snap.Wild = &WildSnapshot{
			Creature:   c.wild.Creature.Clone(),
			LastAttack: c.wild.LastAttack,
			Fleeing:    c.wild.Fleeing,
			FleeAt:     c.wild.FleeAt,
		}
		// Clone assigns a fresh instance ID; keep the original so a
		// restored pending state stays coherent.
		snap.Wild.Creature.InstanceID = c.wild.Creature.InstanceID
	}
	return snap
}

// Restore replaces the controller's state from a snapshot. The region is
// resolved against the index; a snapshot naming an unknown region fails
// without touching state.
func (c *Controller) Restore(snap Snapshot, regions *region.Index) error {
	def, ok := regions.Get(snap.RegionID)
	if !ok {
		return fmt.Errorf("restoring battle state: unknown region %q", snap.RegionID)
	}
	for _, id := range snap.SpawnQueue {
		if _, ok := c.species.Get(id); !ok {
			return fmt.Errorf("restoring battle state: unknown queued species %q", id)
		}
	}

	c.region = def
	c.wild = nil
	if snap.Wild != nil {
		c.wild = &Wild{
			Creature:   snap.Wild.Creature,
			LastAttack: snap.Wild.LastAttack,
			Fleeing:    snap.Wild.Fleeing,
			FleeAt:     snap.Wild.FleeAt,
		}
	}
	c.countdown = snap.Countdown
	c.spawnArmed = snap.SpawnArmed
	c.queue = append([]string(nil), snap.SpawnQueue...)
	c.guaranteed = snap.Guaranteed
	c.plainBalls = snap.PlainBalls
	c.capture = nil
	c.checkAccum = 0
	c.blog.Restore(snap.LogEntries)
	return nil
}
