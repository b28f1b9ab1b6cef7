package combat

import (
	"math"

	"github.com/pokengu/idlemon/internal/game/rng"
)

// LevelExponent returns the exponent applied to the level difference in
// damage scaling. It decays logistically with the average combatant level so
// high-level fights are less swingy.
//
// Postcondition: tn.MinExponent <= result <= 1.
func (tn Tuning) LevelExponent(avgLevel float64) float64 {
	raw := 1 / (1 + math.Exp((avgLevel-tn.MidLevel)/6))
	return math.Max(tn.MinExponent, raw)
}

// DamageParams describes one attack for damage resolution.
type DamageParams struct {
	Attack        int
	Defense       int
	AttackerLevel int
	DefenderLevel int
	// Enemy marks a wild creature's attack, which uses the larger boost.
	Enemy bool
	// Effectiveness is the type-chart multiplier from Effectiveness.
	Effectiveness float64
}

// Damage resolves an attack into hit points. Variance draws from src in
// [0.85, 1.15).
//
// Precondition: src must be non-nil; p.Effectiveness > 0 (use 1 for neutral).
// Postcondition: result >= 1 when Effectiveness >= 1; result >= 0 always.
func (tn Tuning) Damage(p DamageParams, src rng.Source) int {
	attack := float64(p.Attack)
	if p.Enemy {
		attack *= tn.EnemyAttackBoost
	} else {
		attack *= tn.PlayerAttackBoost
	}

	levelDiff := float64(p.AttackerLevel - p.DefenderLevel)
	avgLevel := float64(p.AttackerLevel+p.DefenderLevel) / 2

	exp := tn.LevelExponent(avgLevel)
	levelFactor := math.Pow(tn.LevelScalingBase, levelDiff*exp)

	defense := float64(p.Defense)
	baseDamage := (attack * levelFactor) * (1 - defense/(defense+100))

	variation := 0.85 + src.Float64()*0.30

	raw := math.Floor(math.Max(1, math.Floor(baseDamage*variation)))

	eff := p.Effectiveness
	if eff == 0 {
		eff = 1
	}
	return int(math.Floor(raw * eff))
}
