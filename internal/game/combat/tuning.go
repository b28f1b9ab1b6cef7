package combat

// Tuning carries the combat balance constants, sourced from the balance
// configuration. Zero values are not usable; start from DefaultTuning.
type Tuning struct {
	// LevelScalingBase compounds per level of difference between combatants.
	LevelScalingBase float64
	// PlayerAttackBoost and EnemyAttackBoost scale raw attack before the
	// level factor. Wild creatures hit harder to offset the player's pace.
	PlayerAttackBoost float64
	EnemyAttackBoost  float64
	// MidLevel is where the level-difference exponent crosses 0.5.
	MidLevel float64
	// MinExponent floors the exponent so level difference never stops
	// mattering.
	MinExponent float64

	// StatGrowthExp flattens stat growth at high levels.
	StatGrowthExp float64
	// HPPerLevel is the HP gained per unit of growth.
	HPPerLevel float64
	// AtkDefRatio scales base defense relative to base HP.
	AtkDefRatio float64
	// BaseHitsToDefeat sets base attack so same-level fights last about
	// this many hits before modifiers.
	BaseHitsToDefeat float64

	// PlainBallRate is the base catch rate of the fallback ball used when
	// no catch item is held.
	PlainBallRate float64
	// LegendaryLevel is the level at or above which the extra legendary
	// capture penalty compounds.
	LegendaryLevel int
	// Capture penalties for the item curve and the harsher fallback curve.
	CatchLevelPenalty  float64
	CatchLegendPenalty float64
	CatchMinChance     float64
	HarshLevelPenalty  float64
	HarshLegendPenalty float64
	HarshMinChance     float64
}

// DefaultTuning returns the shipped combat balance.
func DefaultTuning() Tuning {
	return Tuning{
		LevelScalingBase:   1.28,
		PlayerAttackBoost:  1.5,
		EnemyAttackBoost:   2.5,
		MidLevel:           30,
		MinExponent:        0.25,
		StatGrowthExp:      0.8,
		HPPerLevel:         20,
		AtkDefRatio:        0.8,
		BaseHitsToDefeat:   10,
		PlainBallRate:      0.15,
		LegendaryLevel:     50,
		CatchLevelPenalty:  0.95,
		CatchLegendPenalty: 0.8,
		CatchMinChance:     0.001,
		HarshLevelPenalty:  0.9,
		HarshLegendPenalty: 0.7,
		HarshMinChance:     0.0005,
	}
}
