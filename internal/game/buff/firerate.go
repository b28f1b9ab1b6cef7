package buff

import (
	"time"

	"github.com/google/uuid"
)

// fireRateState tracks the rapid-attack streak bound to one creature.
type fireRateState struct {
	active     bool
	tier       int
	count      int
	lastAttack time.Time
	multiplier float64
	// creatureID binds the streak to the attacker; switching creatures
	// breaks it.
	creatureID uuid.UUID
	allowed    time.Duration
}

func freshFireRate(tn Tuning) fireRateState {
	return fireRateState{multiplier: 1.0, allowed: tn.FireRateBaseWindow}
}

// RegisterAttack feeds one player attack into the streak. The streak only
// runs with a fire emblem, only while the attacker's level does not exceed
// the region's level band, and only for one creature at a time.
//
// Postcondition: FireRateMultiplier reflects the resulting tier.
func (s *Set) RegisterAttack(now time.Time, creatureID uuid.UUID, creatureLevel, regionMaxLevel int) {
	if !s.Has(KindFireEmblem) {
		return
	}

	// Overleveled attackers cannot farm the streak.
	if creatureLevel > regionMaxLevel {
		if s.fireRate.active {
			s.resetFireRate()
		}
		return
	}

	// Switching creatures breaks the streak and rebinds it.
	if s.fireRate.creatureID != uuid.Nil && s.fireRate.creatureID != creatureID {
		s.resetFireRate()
		s.fireRate.creatureID = creatureID
		return
	}
	if s.fireRate.creatureID == uuid.Nil {
		s.fireRate.creatureID = creatureID
	}

	// Too long a pause breaks an active streak.
	if s.fireRate.active && now.Sub(s.fireRate.lastAttack) > s.fireRate.allowed {
		s.resetFireRate()
		return
	}

	// Before activation a long pause just clears the count.
	if !s.fireRate.active && s.fireRate.count > 0 && now.Sub(s.fireRate.lastAttack) > s.tuning.FireRateBaseWindow {
		s.fireRate.count = 0
		s.fireRate.lastAttack = time.Time{}
		return
	}

	s.fireRate.count++
	s.fireRate.lastAttack = now
	s.fireRate.allowed = s.windowForTier(s.fireRate.tier)

	if !s.fireRate.active && s.fireRate.count >= s.tuning.FireRateActivateAt {
		s.fireRate.active = true
		s.fireRate.tier = 1
		s.fireRate.allowed = s.windowForTier(1)
		s.updateFireRateMultiplier()
		return
	}
	if s.fireRate.active {
		switch {
		case s.fireRate.count >= s.tuning.FireRateTier3At && s.fireRate.tier < 3:
			s.fireRate.tier = 3
		case s.fireRate.count >= s.tuning.FireRateTier2At && s.fireRate.tier < 2:
			s.fireRate.tier = 2
		default:
			return
		}
		s.fireRate.allowed = s.windowForTier(s.fireRate.tier)
		s.updateFireRateMultiplier()
	}
}

func (s *Set) windowForTier(tier int) time.Duration {
	switch tier {
	case 1:
		return s.tuning.FireRateTier1Window
	case 2:
		return s.tuning.FireRateTier2Window
	case 3:
		return s.tuning.FireRateTier3Window
	default:
		return s.tuning.FireRateBaseWindow
	}
}

// resetFireRate breaks the streak but keeps the creature binding.
func (s *Set) resetFireRate() {
	bound := s.fireRate.creatureID
	s.fireRate = freshFireRate(s.tuning)
	s.fireRate.creatureID = bound
}

// updateFireRateMultiplier derives the streak multiplier from the emblem
// level and current tier. Tier one adds a percent per level; higher tiers
// compound on it.
func (s *Set) updateFireRateMultiplier() {
	level := s.levelOf(KindFireEmblem)
	if level == 0 {
		return
	}
	tier1 := 1.0 + 0.01*float64(level)
	tier2 := tier1 + tier1
	tier3 := 3 * (tier1 + tier2)

	switch s.fireRate.tier {
	case 1:
		s.fireRate.multiplier = tier1
	case 2:
		s.fireRate.multiplier = tier2
	case 3:
		s.fireRate.multiplier = tier3
	default:
		s.fireRate.multiplier = 1.1
	}
}

// FireRateMultiplier returns the XP multiplier from the streak, 1 while
// inactive.
func (s *Set) FireRateMultiplier() float64 {
	if !s.fireRate.active {
		return 1.0
	}
	return s.fireRate.multiplier
}

// FireRateActive reports whether the streak is running.
func (s *Set) FireRateActive() bool {
	return s.fireRate.active
}

// FireRateTier returns the current streak tier, zero while inactive.
func (s *Set) FireRateTier() int {
	return s.fireRate.tier
}

// FireRateCount returns the running attack count.
func (s *Set) FireRateCount() int {
	return s.fireRate.count
}
