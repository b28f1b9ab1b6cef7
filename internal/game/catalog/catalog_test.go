package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokengu/idlemon/internal/game/catalog"
	"github.com/pokengu/idlemon/internal/game/combat"
)

func sampleSpecies() []catalog.Species {
	return []catalog.Species{
		{ID: "pikachu", Name: "Pikachu", Types: []combat.Type{combat.TypeElectric}},
		{ID: "zubat", Name: "Zubat", Types: []combat.Type{combat.TypePoison, combat.TypeFlying}},
	}
}

func TestNew(t *testing.T) {
	c, err := catalog.New(sampleSpecies())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	s, ok := c.Get("zubat")
	require.True(t, ok)
	assert.Equal(t, "Zubat", s.Name)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestNew_DuplicateID(t *testing.T) {
	species := sampleSpecies()
	species = append(species, species[0])
	_, err := catalog.New(species)
	assert.Error(t, err)
}

func TestNew_Empty(t *testing.T) {
	_, err := catalog.New(nil)
	assert.Error(t, err)
}

func TestSpeciesValidate(t *testing.T) {
	tests := []struct {
		name    string
		species catalog.Species
		wantErr bool
	}{
		{"valid single type", catalog.Species{ID: "pikachu", Name: "Pikachu", Types: []combat.Type{combat.TypeElectric}}, false},
		{"valid dual type", catalog.Species{ID: "zubat", Name: "Zubat", Types: []combat.Type{combat.TypePoison, combat.TypeFlying}}, false},
		{"missing id", catalog.Species{Name: "X", Types: []combat.Type{combat.TypeFire}}, true},
		{"missing name", catalog.Species{ID: "x", Types: []combat.Type{combat.TypeFire}}, true},
		{"no types", catalog.Species{ID: "x", Name: "X"}, true},
		{"three types", catalog.Species{ID: "x", Name: "X", Types: []combat.Type{combat.TypeFire, combat.TypeWater, combat.TypeGrass}}, true},
		{"unknown type", catalog.Species{ID: "x", Name: "X", Types: []combat.Type{"cosmic"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.species.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIDsSorted(t *testing.T) {
	c, err := catalog.New(sampleSpecies())
	require.NoError(t, err)
	assert.Equal(t, []string{"pikachu", "zubat"}, c.IDs())
}
