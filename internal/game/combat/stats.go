package combat

import (
	"math"

	"github.com/pokengu/idlemon/internal/game/rng"
)

// Stats are the rolled combat stats for a creature at a given level.
type Stats struct {
	MaxHP   int
	Attack  int
	Defense int
}

// GenerateStats rolls fresh stats for a creature at the given level. The base
// HP roll in [100, 150) carries through into attack and defense so a creature
// is uniformly sturdy or frail.
//
// Precondition: level >= 1; src must be non-nil.
// Postcondition: All returned stats are positive.
func (tn Tuning) GenerateStats(level int, src rng.Source) Stats {
	if level < 1 {
		level = 1
	}
	growth := math.Pow(float64(level), tn.StatGrowthExp)

	baseHP := 100 + src.Float64()*50
	maxHP := int(math.Floor(baseHP + tn.HPPerLevel*growth))

	baseAtk := math.Floor(baseHP / tn.BaseHitsToDefeat)
	attack := int(math.Floor(baseAtk * (1 + 0.2*growth)))

	baseDef := math.Floor(baseHP * tn.AtkDefRatio)
	defense := int(math.Floor(baseDef * (1 + 0.2*growth)))

	return Stats{MaxHP: maxHP, Attack: attack, Defense: defense}
}
