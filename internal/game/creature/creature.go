// Package creature defines owned and wild creature instances and the
// player's roster.
package creature

import (
	"time"

	"github.com/google/uuid"

	"github.com/pokengu/idlemon/internal/game/catalog"
	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/rng"
)

// Creature is one creature instance, wild or owned.
//
// Invariant: 0 <= HP <= MaxHP.
type Creature struct {
	// InstanceID identifies this instance across captures, merges, and saves.
	InstanceID uuid.UUID
	SpeciesID  string
	Name       string
	Types      []combat.Type
	Level      int
	// XP accumulates toward XPToNext and resets to zero on level up.
	XP       int
	XPToNext int
	HP       int
	MaxHP    int
	Attack   int
	Defense  int
	Shiny    bool
	// FaintedAt is zero while the creature is standing.
	FaintedAt time.Time
	// RecoverAt is when a fainted creature comes back up, at zero HP.
	RecoverAt time.Time
	// Working marks a creature assigned to an idle job.
	Working bool
	// JobID is the job the creature is working, empty when idle.
	JobID string
}

// New rolls a fresh creature of the given species at the given level.
//
// Precondition: level >= 1; src must be non-nil.
// Postcondition: The creature is at full HP with a fresh instance ID.
func New(species catalog.Species, level int, shiny bool, tn combat.Tuning, src rng.Source) *Creature {
	stats := tn.GenerateStats(level, src)
	types := make([]combat.Type, len(species.Types))
	copy(types, species.Types)
	return &Creature{
		InstanceID: uuid.New(),
		SpeciesID:  species.ID,
		Name:       species.Name,
		Types:      types,
		Level:      level,
		XPToNext:   combat.XPToNext(level),
		HP:         stats.MaxHP,
		MaxHP:      stats.MaxHP,
		Attack:     stats.Attack,
		Defense:    stats.Defense,
		Shiny:      shiny,
	}
}

// Clone returns a deep copy of the creature under a fresh instance ID.
// Capturing a wild creature clones it into the roster so duplicates of
// the same species never share identity.
func (c *Creature) Clone() *Creature {
	dup := *c
	dup.InstanceID = uuid.New()
	dup.Types = make([]combat.Type, len(c.Types))
	copy(dup.Types, c.Types)
	return &dup
}

// Fainted reports whether the creature is down.
func (c *Creature) Fainted() bool {
	return !c.FaintedAt.IsZero()
}

// Healthy reports whether the creature can fight.
func (c *Creature) Healthy() bool {
	return c.HP > 0 && !c.Fainted()
}

// SetHP clamps and assigns the creature's hit points.
//
// Postcondition: 0 <= c.HP <= c.MaxHP.
func (c *Creature) SetHP(hp int) {
	if hp < 0 {
		hp = 0
	}
	if hp > c.MaxHP {
		hp = c.MaxHP
	}
	c.HP = hp
}

// Heal restores up to value hit points and returns the amount actually
// restored.
func (c *Creature) Heal(value int) int {
	before := c.HP
	c.SetHP(c.HP + value)
	return c.HP - before
}

// Faint downs the creature and schedules its recovery.
//
// Postcondition: c.HP == 0 and Fainted() reports true until Revive.
func (c *Creature) Faint(now time.Time, recovery time.Duration) {
	c.SetHP(0)
	c.FaintedAt = now
	c.RecoverAt = now.Add(recovery)
}

// Revive clears the fainted state. The creature stands back up at zero HP
// and heals through ordinary regeneration.
func (c *Creature) Revive() {
	c.FaintedAt = time.Time{}
	c.RecoverAt = time.Time{}
}

// GainXP adds experience and levels the creature up when the requirement is
// met. Overflow experience is discarded on level up.
//
// Precondition: src must be non-nil.
// Postcondition: Returns true iff the creature leveled up.
func (c *Creature) GainXP(amount int, tn combat.Tuning, src rng.Source) bool {
	if amount <= 0 {
		return false
	}
	c.XP += amount
	if c.XPToNext == 0 {
		c.XPToNext = combat.XPToNext(c.Level)
	}
	if c.XP < c.XPToNext {
		return false
	}
	c.LevelUp(tn, src)
	return true
}

// LevelUp advances the creature one level, rerolls its stats, and heals it
// to full.
//
// Postcondition: c.XP == 0 and c.HP == c.MaxHP.
func (c *Creature) LevelUp(tn combat.Tuning, src rng.Source) {
	c.Level++
	stats := tn.GenerateStats(c.Level, src)
	c.MaxHP = stats.MaxHP
	c.HP = stats.MaxHP
	c.Attack = stats.Attack
	c.Defense = stats.Defense
	c.XP = 0
	c.XPToNext = combat.XPToNext(c.Level)
}
