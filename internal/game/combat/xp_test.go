package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/pokengu/idlemon/internal/game/combat"
)

func TestXPGain(t *testing.T) {
	tests := []struct {
		name        string
		playerLevel int
		enemyLevel  int
		want        int
	}{
		{"equal levels", 10, 10, 350},
		{"enemy half level", 10, 5, 175},
		{"enemy far below", 10, 1, 35},
		{"enemy double level", 10, 20, 700},
		{"level one mirror", 1, 1, 350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, combat.XPGain(tt.playerLevel, tt.enemyLevel))
		})
	}
}

func TestXPToNext(t *testing.T) {
	assert.Equal(t, 100, combat.XPToNext(1))
	assert.Equal(t, 800, combat.XPToNext(4))
	assert.Equal(t, 2700, combat.XPToNext(9))
}

// TestXPToNext_Property verifies the requirement strictly increases.
func TestXPToNext_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 500).Draw(rt, "level")
		assert.Greater(rt, combat.XPToNext(level+1), combat.XPToNext(level))
	})
}

// TestXPGain_Property verifies the reward scales with enemy level and is a
// multiple of the per-defeat base.
func TestXPGain_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		playerLevel := rapid.IntRange(1, 100).Draw(rt, "playerLevel")
		enemyLevel := rapid.IntRange(1, 100).Draw(rt, "enemyLevel")
		gain := combat.XPGain(playerLevel, enemyLevel)
		assert.GreaterOrEqual(rt, gain, 0)
		assert.Zero(rt, gain%35)
		assert.GreaterOrEqual(rt, combat.XPGain(playerLevel, enemyLevel+10), gain)
	})
}
