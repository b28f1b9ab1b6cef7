package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/pokengu/idlemon/internal/game/combat"
)

func TestEffectiveness_Neutral(t *testing.T) {
	mult, verdict := combat.Effectiveness(
		[]combat.Type{combat.TypeNormal},
		[]combat.Type{combat.TypeFire},
	)
	assert.Equal(t, 1.0, mult)
	assert.Equal(t, combat.VerdictNeutral, verdict)
}

func TestEffectiveness_Super(t *testing.T) {
	mult, verdict := combat.Effectiveness(
		[]combat.Type{combat.TypeFire},
		[]combat.Type{combat.TypeGrass},
	)
	assert.Equal(t, 2.0, mult)
	assert.Equal(t, combat.VerdictSuper, verdict)
}

func TestEffectiveness_NotVery(t *testing.T) {
	mult, verdict := combat.Effectiveness(
		[]combat.Type{combat.TypeFire},
		[]combat.Type{combat.TypeWater},
	)
	assert.Equal(t, 0.5, mult)
	assert.Equal(t, combat.VerdictNotVery, verdict)
}

// TestEffectiveness_Mixed covers a dual-typed defender where strong and weak
// pairings both fire and cancel out.
func TestEffectiveness_Mixed(t *testing.T) {
	mult, verdict := combat.Effectiveness(
		[]combat.Type{combat.TypeFire},
		[]combat.Type{combat.TypeGrass, combat.TypeWater},
	)
	assert.Equal(t, 1.0, mult)
	assert.Equal(t, combat.VerdictMixed, verdict)
}

func TestEffectiveness_DualAttackerCompounds(t *testing.T) {
	mult, verdict := combat.Effectiveness(
		[]combat.Type{combat.TypeFire, combat.TypeFlying},
		[]combat.Type{combat.TypeGrass},
	)
	assert.Equal(t, 4.0, mult)
	assert.Equal(t, combat.VerdictSuper, verdict)
}

func TestEffectiveness_UnknownTypeIgnored(t *testing.T) {
	mult, verdict := combat.Effectiveness(
		[]combat.Type{combat.Type("cosmic")},
		[]combat.Type{combat.TypeGrass},
	)
	assert.Equal(t, 1.0, mult)
	assert.Equal(t, combat.VerdictNeutral, verdict)
}

func TestEffectiveness_EmptyTypes(t *testing.T) {
	mult, verdict := combat.Effectiveness(nil, nil)
	assert.Equal(t, 1.0, mult)
	assert.Equal(t, combat.VerdictNeutral, verdict)
}

func TestTypeValid(t *testing.T) {
	for _, typ := range combat.AllTypes {
		assert.True(t, typ.Valid(), "type %q should be valid", typ)
	}
	assert.False(t, combat.Type("cosmic").Valid())
	assert.False(t, combat.Type("").Valid())
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "", combat.VerdictNeutral.String())
	assert.Equal(t, "It's super effective!", combat.VerdictSuper.String())
	assert.Equal(t, "It's not very effective.", combat.VerdictNotVery.String())
	assert.Equal(t, "It has mixed effectiveness.", combat.VerdictMixed.String())
}

// TestEffectiveness_Property verifies the multiplier is always a positive
// power of two times a power of one-half, and that verdict agrees with the
// multiplier's direction for single pairings.
func TestEffectiveness_Property(t *testing.T) {
	typeGen := rapid.SampledFrom(combat.AllTypes)
	rapid.Check(t, func(rt *rapid.T) {
		atk := rapid.SliceOfN(typeGen, 1, 2).Draw(rt, "attacker")
		def := rapid.SliceOfN(typeGen, 1, 2).Draw(rt, "defender")
		mult, verdict := combat.Effectiveness(atk, def)
		assert.Greater(rt, mult, 0.0)
		if verdict == combat.VerdictNeutral {
			assert.Equal(rt, 1.0, mult)
		}
		if verdict == combat.VerdictSuper {
			assert.Greater(rt, mult, 1.0)
		}
		if verdict == combat.VerdictNotVery {
			assert.Less(rt, mult, 1.0)
		}
	})
}
