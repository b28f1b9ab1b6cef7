package job_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/job"
	"github.com/pokengu/idlemon/internal/game/rng"
)

var tn = job.DefaultTuning()

func miningJob() job.Definition {
	return job.Definition{
		ID:               "material-mining",
		Name:             "Mine for Materials",
		Description:      "Rock types dig for crafting materials",
		Type:             combat.TypeRock,
		MaxSlots:         3,
		BaseTime:         6 * time.Minute,
		Chance:           0.35,
		ExtraWorkerBonus: 0.05,
		GrantsStunResist: true,
		Rewards: []job.Reward{
			{ItemID: "stone-fragment", Weight: 70},
			{ItemID: "expansion-crystal", Weight: 30},
		},
	}
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*job.Definition)
		wantErr string
	}{
		{name: "valid", mutate: func(*job.Definition) {}},
		{
			name:    "missing id",
			mutate:  func(d *job.Definition) { d.ID = "" },
			wantErr: "id must not be empty",
		},
		{
			name:    "unknown type",
			mutate:  func(d *job.Definition) { d.Type = "plasma" },
			wantErr: "unknown type",
		},
		{
			name:    "zero slots",
			mutate:  func(d *job.Definition) { d.MaxSlots = 0 },
			wantErr: "max_slots",
		},
		{
			name:    "zero base time",
			mutate:  func(d *job.Definition) { d.BaseTime = 0 },
			wantErr: "base_time",
		},
		{
			name:    "chance above one",
			mutate:  func(d *job.Definition) { d.Chance = 1.5 },
			wantErr: "chance",
		},
		{
			name:    "no rewards",
			mutate:  func(d *job.Definition) { d.Rewards = nil },
			wantErr: "at least one reward",
		},
		{
			name: "non-positive reward weight",
			mutate: func(d *job.Definition) {
				d.Rewards[0].Weight = 0
			},
			wantErr: "weight must be positive",
		},
		{
			name: "buff reward",
			mutate: func(d *job.Definition) {
				d.Rewards[0] = job.Reward{BuffID: "rock-emblem", Weight: 10}
			},
		},
		{
			name: "empty reward",
			mutate: func(d *job.Definition) {
				d.Rewards[0] = job.Reward{Weight: 10}
			},
			wantErr: "item or buff must be set",
		},
		{
			name: "item and buff on one reward",
			mutate: func(d *job.Definition) {
				d.Rewards[0].BuffID = "rock-emblem"
			},
			wantErr: "mutually exclusive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := miningJob()
			tt.mutate(&def)
			err := def.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEffectiveDuration(t *testing.T) {
	def := miningJob()

	assert.Equal(t, def.BaseTime, def.EffectiveDuration(tn, nil))

	// A level-50 worker contributes half of the per-worker 20% cap.
	got := def.EffectiveDuration(tn, []int{50})
	assert.Equal(t, time.Duration(float64(def.BaseTime)*0.90), got)

	// Level 100 and beyond both hit the per-worker cap.
	atCap := def.EffectiveDuration(tn, []int{100})
	assert.Equal(t, time.Duration(float64(def.BaseTime)*0.80), atCap)
	assert.Equal(t, atCap, def.EffectiveDuration(tn, []int{250}))
}

func TestEffectiveDuration_ExtraWorkerBonus(t *testing.T) {
	def := miningJob()

	// Two level-100 workers: 0.20+0.20 plus the capped 0.05 extra bonus.
	got := def.EffectiveDuration(tn, []int{100, 100})
	want := time.Duration(float64(def.BaseTime) * (1 - 0.45))
	assert.Equal(t, want, got)
}

func TestEffectiveDuration_FloorsAtTenthOfBase(t *testing.T) {
	def := miningJob()
	def.MaxSlots = 10

	// Five maxed workers exceed the 90% aggregate cap.
	got := def.EffectiveDuration(tn, []int{100, 100, 100, 100, 100})
	assert.Equal(t, time.Duration(float64(def.BaseTime)*0.10), got)
}

func TestSuccessChance(t *testing.T) {
	def := miningJob()

	assert.InDelta(t, 0.35, def.SuccessChance(tn, nil), 1e-9)

	// One level-10 worker adds 10*0.002.
	assert.InDelta(t, 0.37, def.SuccessChance(tn, []int{10}), 1e-9)

	// A second worker adds the extra-worker bonus on top of level bonuses.
	assert.InDelta(t, 0.35+0.05+0.04, def.SuccessChance(tn, []int{10, 10}), 1e-9)
}

func TestSuccessChance_CapsAtOne(t *testing.T) {
	def := miningJob()
	levels := []int{400, 400, 400}
	assert.Equal(t, 1.0, def.SuccessChance(tn, levels))
}

func TestDrawReward_CumulativeWeights(t *testing.T) {
	def := miningJob()

	low := def.DrawReward(&rng.FixedSource{Floats: []float64{0.1}})
	assert.Equal(t, "stone-fragment", low.ItemID)

	high := def.DrawReward(&rng.FixedSource{Floats: []float64{0.9}})
	assert.Equal(t, "expansion-crystal", high.ItemID)
}

func TestDrawReward_AlwaysReturnsAnEntry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		def := miningJob()
		roll := rapid.Float64Range(0, 1).Draw(t, "roll")
		r := def.DrawReward(&rng.FixedSource{Floats: []float64{roll}})
		assert.NotEmpty(t, r.ItemID)
	})
}
