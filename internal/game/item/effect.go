// Package item defines item content, the closed set of item effects, and the
// player inventory.
package item

import (
	"fmt"
	"time"
)

// Effect is the closed set of things an item can do when used. The sum is
// sealed so every consumer can switch exhaustively.
type Effect interface {
	isEffect()
}

// HealEffect restores hit points to a party member.
type HealEffect struct {
	// Value is the flat HP restored.
	Value int
}

func (HealEffect) isEffect() {}

// CatchEffect attempts a capture of the current wild creature.
type CatchEffect struct {
	// Rate is the base catch rate in (0, 1].
	Rate float64
	// Harsh applies the plain-ball penalty curve instead of the item curve.
	Harsh bool
	// Perfect bypasses all penalties; the roll succeeds at Rate directly.
	Perfect bool
}

func (CatchEffect) isEffect() {}

// AutoCatchEffect attempts captures passively for a duration.
type AutoCatchEffect struct {
	// Duration is how long the effect stays armed.
	Duration time.Duration
	// Rate is the base catch rate for each passive attempt.
	Rate float64
}

func (AutoCatchEffect) isEffect() {}

// SpecialKind names a one-shot scripted effect.
type SpecialKind string

const (
	// SpecialChooseNextSpawn queues a player-chosen species as the next spawn.
	SpecialChooseNextSpawn SpecialKind = "choose-next-spawn"
	// SpecialExpandJobSlot adds a worker slot to an idle job.
	SpecialExpandJobSlot SpecialKind = "expand-job-slot"
	// SpecialResetFearFactor clears a region's fear state and arms a
	// guaranteed capture.
	SpecialResetFearFactor SpecialKind = "reset-fear-factor"
)

// Valid reports whether k names a known special effect.
func (k SpecialKind) Valid() bool {
	switch k {
	case SpecialChooseNextSpawn, SpecialExpandJobSlot, SpecialResetFearFactor:
		return true
	}
	return false
}

// SpecialEffect triggers a scripted effect identified by Kind.
type SpecialEffect struct {
	Kind SpecialKind
}

func (SpecialEffect) isEffect() {}

// validateEffect checks an effect's field invariants.
func validateEffect(e Effect) error {
	switch eff := e.(type) {
	case HealEffect:
		if eff.Value <= 0 {
			return fmt.Errorf("heal effect value must be positive, got %d", eff.Value)
		}
	case CatchEffect:
		if eff.Rate <= 0 || eff.Rate > 1 {
			return fmt.Errorf("catch effect rate must be in (0, 1], got %g", eff.Rate)
		}
	case AutoCatchEffect:
		if eff.Duration <= 0 {
			return fmt.Errorf("auto-catch effect duration must be positive, got %s", eff.Duration)
		}
		if eff.Rate <= 0 || eff.Rate > 1 {
			return fmt.Errorf("auto-catch effect rate must be in (0, 1], got %g", eff.Rate)
		}
	case SpecialEffect:
		if !eff.Kind.Valid() {
			return fmt.Errorf("unknown special effect kind %q", eff.Kind)
		}
	case nil:
		return nil
	default:
		return fmt.Errorf("unknown effect type %T", e)
	}
	return nil
}
