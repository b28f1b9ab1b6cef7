package buff

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FireRateSnapshot is the persisted streak state.
type FireRateSnapshot struct {
	Active     bool
	Tier       int
	Count      int
	LastAttack time.Time
	Multiplier float64
	CreatureID uuid.UUID
	Allowed    time.Duration
}

// AutoAttackSnapshot is the persisted auto-attack state.
type AutoAttackSnapshot struct {
	Active     bool
	LastAttack time.Time
	Interval   time.Duration
}

// Snapshot is the full persisted state of a buff set.
type Snapshot struct {
	Buffs        []Buff
	FireRate     FireRateSnapshot
	DefeatCount  int
	LastRegionID string
	StunProgress float64
	AutoAttack   AutoAttackSnapshot
}

// Snapshot captures the set's state for persistence.
func (s *Set) Snapshot() Snapshot {
	return Snapshot{
		Buffs: s.All(),
		FireRate: FireRateSnapshot{
			Active:     s.fireRate.active,
			Tier:       s.fireRate.tier,
			Count:      s.fireRate.count,
			LastAttack: s.fireRate.lastAttack,
			Multiplier: s.fireRate.multiplier,
			CreatureID: s.fireRate.creatureID,
			Allowed:    s.fireRate.allowed,
		},
		DefeatCount:  s.defeatCount,
		LastRegionID: s.lastRegionID,
		StunProgress: s.stunProgress,
		AutoAttack: AutoAttackSnapshot{
			Active:     s.autoAttack.active,
			LastAttack: s.autoAttack.lastAttack,
			Interval:   s.autoAttack.interval,
		},
	}
}

// Restore replaces the set's state from a snapshot.
//
// Precondition: every buff in the snapshot must have a valid kind and a
// positive level.
func (s *Set) Restore(snap Snapshot) error {
	buffs := make(map[string]*Buff, len(snap.Buffs))
	for _, b := range snap.Buffs {
		if b.ID == "" || !b.Kind.Valid() {
			return fmt.Errorf("restoring buff %q: unknown kind %q", b.ID, b.Kind)
		}
		if b.Level < 1 {
			return fmt.Errorf("restoring buff %q: level must be >= 1, got %d", b.ID, b.Level)
		}
		restored := b
		buffs[b.ID] = &restored
	}
	s.buffs = buffs
	s.fireRate = fireRateState{
		active:     snap.FireRate.Active,
		tier:       snap.FireRate.Tier,
		count:      snap.FireRate.Count,
		lastAttack: snap.FireRate.LastAttack,
		multiplier: snap.FireRate.Multiplier,
		creatureID: snap.FireRate.CreatureID,
		allowed:    snap.FireRate.Allowed,
	}
	if s.fireRate.multiplier == 0 {
		s.fireRate.multiplier = 1.0
	}
	if s.fireRate.allowed == 0 {
		s.fireRate.allowed = s.tuning.FireRateBaseWindow
	}
	s.defeatCount = snap.DefeatCount
	s.lastRegionID = snap.LastRegionID
	s.stunProgress = snap.StunProgress
	s.autoAttack = autoAttackState{
		active:     snap.AutoAttack.Active,
		lastAttack: snap.AutoAttack.LastAttack,
		interval:   snap.AutoAttack.Interval,
	}
	return nil
}
