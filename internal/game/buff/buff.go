// Package buff implements the persistent emblem buffs earned from idle jobs
// and the combat streak state they drive.
package buff

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Kind selects a buff's behavior.
type Kind string

const (
	// KindFireEmblem unlocks the rapid-attack streak multiplier.
	KindFireEmblem Kind = "fire-emblem"
	// KindWaterEmblem shares a cut of combat XP with the rest of the party.
	KindWaterEmblem Kind = "water-emblem"
	// KindRockEmblem lets the active creature survive a lethal hit.
	KindRockEmblem Kind = "rock-emblem"
	// KindElectricEmblem unlocks automatic attacks.
	KindElectricEmblem Kind = "electric-emblem"
	// KindFlyingEmblem shortens the wild spawn countdown.
	KindFlyingEmblem Kind = "flying-emblem"
	// KindXPBoost adds flat XP to every attack.
	KindXPBoost Kind = "xp-boost"
)

// Valid reports whether k is a known buff kind.
func (k Kind) Valid() bool {
	switch k {
	case KindFireEmblem, KindWaterEmblem, KindRockEmblem,
		KindElectricEmblem, KindFlyingEmblem, KindXPBoost:
		return true
	}
	return false
}

// Buff is one granted emblem with its level.
type Buff struct {
	ID   string
	Name string
	Kind Kind
	// Level starts at 1 and rises by one per additional grant.
	Level int
	// MaxLevel caps Level when positive; zero means uncapped.
	MaxLevel int
}

// Set holds all granted buffs plus the streak state. It is not safe for
// concurrent use; the simulation mutates it from the tick loop only.
type Set struct {
	buffs  map[string]*Buff
	tuning Tuning

	fireRate fireRateState
	// defeatCount drives the periodic spawn delay.
	defeatCount  int
	lastRegionID string
	// stunProgress accumulates from mining job completions.
	stunProgress float64

	autoAttack autoAttackState
}

// NewSet returns an empty buff set running under the given tuning.
func NewSet(tn Tuning) *Set {
	return &Set{
		buffs:    make(map[string]*Buff),
		tuning:   tn,
		fireRate: freshFireRate(tn),
	}
}

// Grant adds the buff at level 1, or raises an existing buff's level by one,
// respecting its cap.
//
// Precondition: b.ID must be non-empty and b.Kind valid.
func (s *Set) Grant(b Buff) error {
	if b.ID == "" {
		return errors.New("buff id must not be empty")
	}
	if !b.Kind.Valid() {
		return fmt.Errorf("unknown buff kind %q", b.Kind)
	}
	if existing, ok := s.buffs[b.ID]; ok {
		existing.Level++
		if existing.MaxLevel > 0 && existing.Level > existing.MaxLevel {
			existing.Level = existing.MaxLevel
		}
		return nil
	}
	granted := b
	granted.Level = 1
	s.buffs[b.ID] = &granted
	return nil
}

// Remove deletes the buff, reporting whether it existed.
func (s *Set) Remove(id string) bool {
	if _, ok := s.buffs[id]; !ok {
		return false
	}
	delete(s.buffs, id)
	return true
}

// Get returns the buff by ID.
func (s *Set) Get(id string) (Buff, bool) {
	if b, ok := s.buffs[id]; ok {
		return *b, true
	}
	return Buff{}, false
}

// Has reports whether any buff of the kind is granted.
func (s *Set) Has(kind Kind) bool {
	return s.levelOf(kind) > 0
}

// All returns every granted buff sorted by ID.
func (s *Set) All() []Buff {
	out := make([]Buff, 0, len(s.buffs))
	for _, b := range s.buffs {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// levelOf returns the highest level among buffs of the kind, zero if none.
func (s *Set) levelOf(kind Kind) int {
	level := 0
	for _, b := range s.buffs {
		if b.Kind == kind && b.Level > level {
			level = b.Level
		}
	}
	return level
}

// TotalXPBonus sums the levels of every XP boost buff. The bonus adds flat
// XP to each attack before the streak multiplier.
func (s *Set) TotalXPBonus() int {
	total := 0
	for _, b := range s.buffs {
		if b.Kind == KindXPBoost {
			total += b.Level
		}
	}
	return total
}

// XPShareMultiplier returns the fraction of attack XP shared with the rest
// of the party. Linear for the first ten levels, logarithmic after, capped
// at half.
//
// Postcondition: 0 <= result <= 0.5.
func (s *Set) XPShareMultiplier() float64 {
	level := s.levelOf(KindWaterEmblem)
	if level == 0 {
		return 0
	}
	if level <= 10 {
		return float64(level) * 0.01
	}
	additional := 0.05 * math.Log(1+float64(level-10)*0.5)
	return math.Min(0.10+additional, 0.50)
}

// SpawnReduction returns the fraction shaved off the spawn countdown.
//
// Postcondition: 0 <= result <= 0.8.
func (s *Set) SpawnReduction() float64 {
	level := s.levelOf(KindFlyingEmblem)
	if level == 0 {
		return 0
	}
	reduction := 1 - math.Pow(0.99, math.Pow(float64(level), 1.2))
	return math.Min(reduction, 0.80)
}

// StunResistChance returns the probability a lethal hit is shrugged off
// with the rock emblem. Progress accrues so slowly that the chance stays
// near zero for a long time.
//
// Postcondition: 0 <= result <= 1.
func (s *Set) StunResistChance() float64 {
	if s.stunProgress <= 0 {
		return 0
	}
	chance := math.Log(s.stunProgress) / math.Log(10000)
	if chance < 0 {
		return 0
	}
	return math.Min(chance, 1)
}

// IncreaseStunResistance accrues one mining completion's worth of progress.
func (s *Set) IncreaseStunResistance() {
	s.stunProgress += 0.0001
}

// RegisterDefeat counts a wild defeat toward the periodic spawn delay.
// Changing regions restarts the count.
func (s *Set) RegisterDefeat(regionID string) {
	if s.lastRegionID != regionID {
		s.lastRegionID = regionID
		s.defeatCount = 1
		return
	}
	s.defeatCount++
}

// ShouldDelaySpawn reports whether the next spawn takes the long delay.
func (s *Set) ShouldDelaySpawn(every int) bool {
	return s.defeatCount > 0 && every > 0 && s.defeatCount%every == 0
}

// ResetDefeatCounter steps past the delay boundary so the next defeat does
// not re-trigger it.
func (s *Set) ResetDefeatCounter(every int) {
	if every > 0 && s.defeatCount%every == 0 {
		s.defeatCount++
	}
}

// DefeatCount returns the running defeat count.
func (s *Set) DefeatCount() int {
	return s.defeatCount
}

// autoAttackState tracks the electric emblem's automatic attacks.
type autoAttackState struct {
	active     bool
	lastAttack time.Time
	interval   time.Duration
}

// baseAutoAttackInterval applies without an electric emblem.
const baseAutoAttackInterval = 5 * time.Second

// AutoAttackInterval derives the pause between automatic attacks from the
// electric emblem level. It decays from five seconds toward half a second.
//
// Postcondition: 500ms <= result <= 5s.
func (s *Set) AutoAttackInterval() time.Duration {
	level := s.levelOf(KindElectricEmblem)
	if level == 0 {
		return baseAutoAttackInterval
	}
	seconds := 0.5 + (5.0-0.5)*math.Exp(-0.003*float64(level))
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}

// ToggleAutoAttack flips automatic attacking on or off, reporting the new
// state. Without an electric emblem it stays off.
func (s *Set) ToggleAutoAttack(now time.Time) bool {
	if !s.Has(KindElectricEmblem) {
		return false
	}
	s.autoAttack.active = !s.autoAttack.active
	if s.autoAttack.active {
		s.autoAttack.interval = s.AutoAttackInterval()
		s.autoAttack.lastAttack = now
	}
	return s.autoAttack.active
}

// AutoAttackActive reports whether automatic attacks are on.
func (s *Set) AutoAttackActive() bool {
	return s.autoAttack.active
}

// ShouldAutoAttack reports whether the interval has elapsed since the last
// automatic attack.
func (s *Set) ShouldAutoAttack(now time.Time) bool {
	if !s.autoAttack.active {
		return false
	}
	interval := s.autoAttack.interval
	if interval <= 0 {
		interval = s.AutoAttackInterval()
	}
	return now.Sub(s.autoAttack.lastAttack) >= interval
}

// RecordAutoAttack stamps the time of an automatic attack.
func (s *Set) RecordAutoAttack(now time.Time) {
	s.autoAttack.lastAttack = now
}

// RefreshAutoAttackInterval recomputes the interval after an emblem level
// change.
func (s *Set) RefreshAutoAttackInterval() {
	s.autoAttack.interval = s.AutoAttackInterval()
}
