// Package job implements the idle job engine: creatures assigned to
// perpetual background tasks that periodically produce item or emblem
// rewards.
package job

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/rng"
)

// Reward is one weighted entry in a job's reward table. Exactly one of
// ItemID and BuffID is set: item rewards deposit into the inventory,
// buff rewards grant or level an emblem.
type Reward struct {
	ItemID string
	BuffID string
	Weight float64
}

// Definition is the static configuration of one idle job.
type Definition struct {
	ID          string
	Name        string
	Description string
	// Type restricts workers to one elemental type; empty accepts any.
	Type combat.Type
	// MaxSlots is the base worker capacity before expansions.
	MaxSlots int
	// BaseTime is the cycle duration with no workers' reductions applied.
	BaseTime time.Duration
	// Chance is the base probability a completed cycle yields a reward.
	Chance float64
	// ExtraWorkerBonus is added per worker beyond the first, to both the
	// success chance and (capped) the time reduction.
	ExtraWorkerBonus float64
	// GrantsStunResist accrues stun resistance on every completion.
	GrantsStunResist bool
	Rewards          []Reward
}

// Validate checks the definition for internal consistency.
func (d *Definition) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "job id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, fmt.Sprintf("job %q: name must not be empty", d.ID))
	}
	if d.Type != "" && !d.Type.Valid() {
		errs = append(errs, fmt.Sprintf("job %q: unknown type %q", d.ID, d.Type))
	}
	if d.MaxSlots < 1 {
		errs = append(errs, fmt.Sprintf("job %q: max_slots must be >= 1, got %d", d.ID, d.MaxSlots))
	}
	if d.BaseTime <= 0 {
		errs = append(errs, fmt.Sprintf("job %q: base_time must be positive", d.ID))
	}
	if d.Chance <= 0 || d.Chance > 1 {
		errs = append(errs, fmt.Sprintf("job %q: chance must be in (0, 1], got %g", d.ID, d.Chance))
	}
	if d.ExtraWorkerBonus < 0 {
		errs = append(errs, fmt.Sprintf("job %q: extra_worker_bonus must not be negative", d.ID))
	}
	if len(d.Rewards) == 0 {
		errs = append(errs, fmt.Sprintf("job %q: at least one reward is required", d.ID))
	}
	for i, r := range d.Rewards {
		switch {
		case r.ItemID == "" && r.BuffID == "":
			errs = append(errs, fmt.Sprintf("job %q: reward %d: item or buff must be set", d.ID, i))
		case r.ItemID != "" && r.BuffID != "":
			errs = append(errs, fmt.Sprintf("job %q: reward %d: item and buff are mutually exclusive", d.ID, i))
		}
		if r.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("job %q: reward %d: weight must be positive, got %g", d.ID, i, r.Weight))
		}
	}
	if len(errs) > 0 {
		return errors.New(joinErrs(errs))
	}
	return nil
}

func joinErrs(errs []string) string {
	out := errs[0]
	for _, e := range errs[1:] {
		out += "; " + e
	}
	return out
}

// EffectiveDuration derives the cycle duration from the assigned worker
// levels. Each worker shaves off up to tn.WorkerReduction, extra workers
// add a small flat bonus, and the result never drops below the floor
// fraction of the base time.
//
// Invariant: BaseTime*tn.DurationFloor <= result <= BaseTime.
func (d *Definition) EffectiveDuration(tn Tuning, workerLevels []int) time.Duration {
	if len(workerLevels) == 0 {
		return d.BaseTime
	}

	reduction := 0.0
	for _, lv := range workerLevels {
		if lv < 1 {
			lv = 1
		}
		reduction += math.Min(tn.WorkerReduction, float64(lv)/float64(tn.WorkerLevelCap)*tn.WorkerReduction)
	}
	reduction = math.Min(tn.DurationCap, reduction)

	if d.ExtraWorkerBonus > 0 && len(workerLevels) > 1 {
		extra := math.Min(tn.ExtraWorkerCap, d.ExtraWorkerBonus*float64(len(workerLevels)-1))
		reduction = math.Min(tn.DurationCap, reduction+extra)
	}

	dur := time.Duration(float64(d.BaseTime) * (1 - reduction))
	floor := time.Duration(float64(d.BaseTime) * tn.DurationFloor)
	if dur < floor {
		dur = floor
	}
	return dur
}

// SuccessChance derives the reward probability for one completed cycle.
// Extra workers and worker levels both raise it, capped at one.
func (d *Definition) SuccessChance(tn Tuning, workerLevels []int) float64 {
	chance := d.Chance
	if d.ExtraWorkerBonus > 0 && len(workerLevels) > 1 {
		chance += d.ExtraWorkerBonus * float64(len(workerLevels)-1)
	}
	for _, lv := range workerLevels {
		if lv < 1 {
			lv = 1
		}
		chance += float64(lv) * tn.LevelChanceBonus
	}
	return math.Min(1.0, chance)
}

// DrawReward picks one reward by cumulative weight.
//
// Precondition: the definition has at least one reward.
func (d *Definition) DrawReward(src rng.Source) Reward {
	total := 0.0
	for _, r := range d.Rewards {
		total += r.Weight
	}
	roll := src.Float64() * total

	cumulative := 0.0
	for _, r := range d.Rewards {
		cumulative += r.Weight
		if roll <= cumulative {
			return r
		}
	}
	// Float accumulation can land the roll a hair past the last bound.
	return d.Rewards[len(d.Rewards)-1]
}
