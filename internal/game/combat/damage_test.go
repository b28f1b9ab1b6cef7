package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/rng"
)

var tn = combat.DefaultTuning()

// midVariance pins the damage variance roll at exactly 1.0.
func midVariance() *rng.FixedSource {
	return &rng.FixedSource{Floats: []float64{0.5}}
}

func TestLevelExponent_Midpoint(t *testing.T) {
	assert.InDelta(t, 0.5, tn.LevelExponent(30), 1e-9)
}

func TestLevelExponent_Floor(t *testing.T) {
	assert.Equal(t, 0.25, tn.LevelExponent(1000))
}

func TestLevelExponent_Decreasing(t *testing.T) {
	prev := tn.LevelExponent(1)
	for lvl := 2.0; lvl <= 100; lvl++ {
		cur := tn.LevelExponent(lvl)
		assert.LessOrEqual(t, cur, prev, "exponent must not increase with level")
		prev = cur
	}
}

func TestDamage_EqualLevelsNoDefense(t *testing.T) {
	dmg := tn.Damage(combat.DamageParams{
		Attack:        10,
		Defense:       0,
		AttackerLevel: 5,
		DefenderLevel: 5,
		Effectiveness: 1,
	}, midVariance())
	// attack 10 * 1.5 boost, level factor 1, no mitigation.
	assert.Equal(t, 15, dmg)
}

func TestDamage_EnemyBoost(t *testing.T) {
	dmg := tn.Damage(combat.DamageParams{
		Attack:        10,
		Defense:       0,
		AttackerLevel: 5,
		DefenderLevel: 5,
		Enemy:         true,
		Effectiveness: 1,
	}, midVariance())
	assert.Equal(t, 25, dmg)
}

func TestDamage_DefenseMitigation(t *testing.T) {
	dmg := tn.Damage(combat.DamageParams{
		Attack:        10,
		Defense:       100,
		AttackerLevel: 5,
		DefenderLevel: 5,
		Effectiveness: 1,
	}, midVariance())
	// Defense 100 halves the base damage.
	assert.Equal(t, 7, dmg)
}

func TestDamage_MinimumOne(t *testing.T) {
	dmg := tn.Damage(combat.DamageParams{
		Attack:        0,
		Defense:       1000,
		AttackerLevel: 1,
		DefenderLevel: 99,
		Effectiveness: 1,
	}, midVariance())
	assert.Equal(t, 1, dmg)
}

func TestDamage_EffectivenessScales(t *testing.T) {
	base := tn.Damage(combat.DamageParams{
		Attack: 10, AttackerLevel: 5, DefenderLevel: 5, Effectiveness: 1,
	}, midVariance())
	super := tn.Damage(combat.DamageParams{
		Attack: 10, AttackerLevel: 5, DefenderLevel: 5, Effectiveness: 2,
	}, midVariance())
	assert.Equal(t, base*2, super)
}

func TestDamage_ZeroEffectivenessTreatedNeutral(t *testing.T) {
	dmg := tn.Damage(combat.DamageParams{
		Attack: 10, AttackerLevel: 5, DefenderLevel: 5,
	}, midVariance())
	assert.Equal(t, 15, dmg)
}

// TestDamage_Property verifies damage is at least 1 for neutral or better
// effectiveness, and that a level advantage never decreases output.
func TestDamage_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		attack := rapid.IntRange(1, 500).Draw(rt, "attack")
		defense := rapid.IntRange(0, 500).Draw(rt, "defense")
		atkLvl := rapid.IntRange(1, 100).Draw(rt, "atkLvl")
		defLvl := rapid.IntRange(1, 100).Draw(rt, "defLvl")
		roll := rapid.Float64Range(0, 0.999).Draw(rt, "roll")

		src := &rng.FixedSource{Floats: []float64{roll}}
		dmg := tn.Damage(combat.DamageParams{
			Attack:        attack,
			Defense:       defense,
			AttackerLevel: atkLvl,
			DefenderLevel: defLvl,
			Effectiveness: 1,
		}, src)
		assert.GreaterOrEqual(rt, dmg, 1)

		src = &rng.FixedSource{Floats: []float64{roll}}
		stronger := tn.Damage(combat.DamageParams{
			Attack:        attack,
			Defense:       defense,
			AttackerLevel: atkLvl + 10,
			DefenderLevel: defLvl,
			Effectiveness: 1,
		}, src)
		assert.GreaterOrEqual(rt, stronger, dmg)
	})
}
