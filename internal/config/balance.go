package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BalanceConfig holds the tunable simulation constants. Every value has a
// default matching the shipped balance; overriding any of them is an
// operator-level rebalance, not a code change.
type BalanceConfig struct {
	// EnemyAttackCooldown is the minimum interval between wild attacks.
	EnemyAttackCooldown time.Duration `mapstructure:"enemy_attack_cooldown"`
	// FleeChance is the per-attack probability a damaged wild creature runs.
	FleeChance float64 `mapstructure:"flee_chance"`
	// FleeDelay is the pause between a flee roll succeeding and the wild slot clearing.
	FleeDelay time.Duration `mapstructure:"flee_delay"`
	// FaintRecovery is how long a fainted party member stays down before reviving.
	FaintRecovery time.Duration `mapstructure:"faint_recovery"`
	// RegenRate is the fraction of max HP restored per second out of battle.
	RegenRate float64 `mapstructure:"regen_rate"`

	// LevelScalingBase compounds damage per level of difference.
	LevelScalingBase float64 `mapstructure:"level_scaling_base"`
	// PlayerAttackBoost and EnemyAttackBoost scale raw attack before the
	// level factor.
	PlayerAttackBoost float64 `mapstructure:"player_attack_boost"`
	EnemyAttackBoost  float64 `mapstructure:"enemy_attack_boost"`
	// LevelExponentMid is the average level where the level-difference
	// exponent crosses 0.5; LevelExponentFloor is its minimum.
	LevelExponentMid   float64 `mapstructure:"level_exponent_mid"`
	LevelExponentFloor float64 `mapstructure:"level_exponent_floor"`
	// StatGrowthExp flattens stat growth at high levels.
	StatGrowthExp float64 `mapstructure:"stat_growth_exp"`
	// HPPerLevel is the HP gained per unit of growth.
	HPPerLevel float64 `mapstructure:"hp_per_level"`
	// DefenseRatio scales base defense relative to base HP.
	DefenseRatio float64 `mapstructure:"defense_ratio"`
	// BaseHitsToDefeat sets base attack so same-level fights last about
	// this many hits before modifiers.
	BaseHitsToDefeat float64 `mapstructure:"base_hits_to_defeat"`

	// PlainBallRate is the catch rate of the fallback ball.
	PlainBallRate float64 `mapstructure:"plain_ball_rate"`
	// LegendaryLevel is where the extra capture penalty starts compounding.
	LegendaryLevel int `mapstructure:"legendary_level"`
	// Capture penalties for the item curve and the harsher fallback curve.
	CatchLevelPenalty  float64 `mapstructure:"catch_level_penalty"`
	CatchLegendPenalty float64 `mapstructure:"catch_legend_penalty"`
	CatchMinChance     float64 `mapstructure:"catch_min_chance"`
	HarshLevelPenalty  float64 `mapstructure:"harsh_level_penalty"`
	HarshLegendPenalty float64 `mapstructure:"harsh_legend_penalty"`
	HarshMinChance     float64 `mapstructure:"harsh_min_chance"`

	// Fire-rate streak thresholds and per-tier break windows.
	FireRateActivateAt  int           `mapstructure:"fire_rate_activate_at"`
	FireRateTier2At     int           `mapstructure:"fire_rate_tier2_at"`
	FireRateTier3At     int           `mapstructure:"fire_rate_tier3_at"`
	FireRateBaseWindow  time.Duration `mapstructure:"fire_rate_base_window"`
	FireRateTier1Window time.Duration `mapstructure:"fire_rate_tier1_window"`
	FireRateTier2Window time.Duration `mapstructure:"fire_rate_tier2_window"`
	FireRateTier3Window time.Duration `mapstructure:"fire_rate_tier3_window"`

	// SpawnFloor is the minimum spawn countdown after reductions.
	SpawnFloor time.Duration `mapstructure:"spawn_floor"`
	// SpawnDelayEvery is the defeat count that triggers a long spawn delay.
	SpawnDelayEvery int `mapstructure:"spawn_delay_every"`
	// SpawnDelay is the long delay applied every SpawnDelayEvery defeats.
	SpawnDelay time.Duration `mapstructure:"spawn_delay"`

	// FearWindow is the sliding window for counting captures and defeats.
	FearWindow time.Duration `mapstructure:"fear_window"`
	// FearThreshold is the event count within FearWindow that trips suppression.
	FearThreshold int `mapstructure:"fear_threshold"`
	// FearDuration is how long spawns stay suppressed after tripping.
	FearDuration time.Duration `mapstructure:"fear_duration"`

	// PartyCap is the maximum active party size.
	PartyCap int `mapstructure:"party_cap"`
	// StarterLevel is the level granted to a fresh profile's first creature.
	StarterLevel int `mapstructure:"starter_level"`

	// JobWorkerReduction is the time reduction one level-capped worker brings.
	JobWorkerReduction float64 `mapstructure:"job_worker_reduction"`
	// JobWorkerLevelCap is where a worker's time contribution maxes out.
	JobWorkerLevelCap int `mapstructure:"job_worker_level_cap"`
	// JobExtraWorkerCap bounds the flat time bonus from extra workers.
	JobExtraWorkerCap float64 `mapstructure:"job_extra_worker_cap"`
	// JobLevelChanceBonus is the success chance added per worker level.
	JobLevelChanceBonus float64 `mapstructure:"job_level_chance_bonus"`
	// JobDurationCap is the maximum total duration reduction from workers.
	JobDurationCap float64 `mapstructure:"job_duration_cap"`
	// JobDurationFloor is the minimum effective duration as a fraction of base.
	JobDurationFloor float64 `mapstructure:"job_duration_floor"`
	// JobBaseSlots is the number of worker slots a job starts with.
	JobBaseSlots int `mapstructure:"job_base_slots"`
}

func (b BalanceConfig) validate() error {
	var errs []string
	if b.EnemyAttackCooldown <= 0 {
		errs = append(errs, "balance.enemy_attack_cooldown must be positive")
	}
	if b.FleeChance < 0 || b.FleeChance > 1 {
		errs = append(errs, fmt.Sprintf("balance.flee_chance must be in [0, 1], got %g", b.FleeChance))
	}
	if b.RegenRate < 0 || b.RegenRate > 1 {
		errs = append(errs, fmt.Sprintf("balance.regen_rate must be in [0, 1], got %g", b.RegenRate))
	}
	if b.LevelScalingBase <= 1 {
		errs = append(errs, fmt.Sprintf("balance.level_scaling_base must be > 1, got %g", b.LevelScalingBase))
	}
	if b.PlayerAttackBoost <= 0 {
		errs = append(errs, "balance.player_attack_boost must be positive")
	}
	if b.EnemyAttackBoost <= 0 {
		errs = append(errs, "balance.enemy_attack_boost must be positive")
	}
	if b.LevelExponentFloor <= 0 || b.LevelExponentFloor > 1 {
		errs = append(errs, fmt.Sprintf("balance.level_exponent_floor must be in (0, 1], got %g", b.LevelExponentFloor))
	}
	if b.StatGrowthExp <= 0 || b.StatGrowthExp > 1 {
		errs = append(errs, fmt.Sprintf("balance.stat_growth_exp must be in (0, 1], got %g", b.StatGrowthExp))
	}
	if b.HPPerLevel <= 0 {
		errs = append(errs, "balance.hp_per_level must be positive")
	}
	if b.DefenseRatio <= 0 {
		errs = append(errs, "balance.defense_ratio must be positive")
	}
	if b.BaseHitsToDefeat <= 0 {
		errs = append(errs, "balance.base_hits_to_defeat must be positive")
	}
	if b.PlainBallRate <= 0 || b.PlainBallRate > 1 {
		errs = append(errs, fmt.Sprintf("balance.plain_ball_rate must be in (0, 1], got %g", b.PlainBallRate))
	}
	if b.LegendaryLevel < 1 {
		errs = append(errs, fmt.Sprintf("balance.legendary_level must be >= 1, got %d", b.LegendaryLevel))
	}
	for _, p := range []struct {
		key string
		val float64
	}{
		{"catch_level_penalty", b.CatchLevelPenalty},
		{"catch_legend_penalty", b.CatchLegendPenalty},
		{"catch_min_chance", b.CatchMinChance},
		{"harsh_level_penalty", b.HarshLevelPenalty},
		{"harsh_legend_penalty", b.HarshLegendPenalty},
		{"harsh_min_chance", b.HarshMinChance},
	} {
		if p.val <= 0 || p.val > 1 {
			errs = append(errs, fmt.Sprintf("balance.%s must be in (0, 1], got %g", p.key, p.val))
		}
	}
	if b.FireRateActivateAt < 1 {
		errs = append(errs, fmt.Sprintf("balance.fire_rate_activate_at must be >= 1, got %d", b.FireRateActivateAt))
	}
	if b.FireRateTier2At <= b.FireRateActivateAt || b.FireRateTier3At <= b.FireRateTier2At {
		errs = append(errs, "balance.fire_rate tier thresholds must be strictly increasing")
	}
	for _, p := range []struct {
		key string
		val time.Duration
	}{
		{"fire_rate_base_window", b.FireRateBaseWindow},
		{"fire_rate_tier1_window", b.FireRateTier1Window},
		{"fire_rate_tier2_window", b.FireRateTier2Window},
		{"fire_rate_tier3_window", b.FireRateTier3Window},
	} {
		if p.val <= 0 {
			errs = append(errs, fmt.Sprintf("balance.%s must be positive", p.key))
		}
	}
	if b.SpawnFloor < 0 {
		errs = append(errs, "balance.spawn_floor must not be negative")
	}
	if b.SpawnDelayEvery < 1 {
		errs = append(errs, fmt.Sprintf("balance.spawn_delay_every must be >= 1, got %d", b.SpawnDelayEvery))
	}
	if b.FearWindow <= 0 {
		errs = append(errs, "balance.fear_window must be positive")
	}
	if b.FearThreshold < 1 {
		errs = append(errs, fmt.Sprintf("balance.fear_threshold must be >= 1, got %d", b.FearThreshold))
	}
	if b.FearDuration <= 0 {
		errs = append(errs, "balance.fear_duration must be positive")
	}
	if b.PartyCap < 1 {
		errs = append(errs, fmt.Sprintf("balance.party_cap must be >= 1, got %d", b.PartyCap))
	}
	if b.StarterLevel < 1 {
		errs = append(errs, fmt.Sprintf("balance.starter_level must be >= 1, got %d", b.StarterLevel))
	}
	if b.JobWorkerReduction < 0 || b.JobWorkerReduction > 1 {
		errs = append(errs, fmt.Sprintf("balance.job_worker_reduction must be in [0, 1], got %g", b.JobWorkerReduction))
	}
	if b.JobWorkerLevelCap < 1 {
		errs = append(errs, fmt.Sprintf("balance.job_worker_level_cap must be >= 1, got %d", b.JobWorkerLevelCap))
	}
	if b.JobExtraWorkerCap < 0 {
		errs = append(errs, "balance.job_extra_worker_cap must not be negative")
	}
	if b.JobLevelChanceBonus < 0 {
		errs = append(errs, "balance.job_level_chance_bonus must not be negative")
	}
	if b.JobDurationCap < 0 || b.JobDurationCap >= 1 {
		errs = append(errs, fmt.Sprintf("balance.job_duration_cap must be in [0, 1), got %g", b.JobDurationCap))
	}
	if b.JobDurationFloor <= 0 || b.JobDurationFloor > 1 {
		errs = append(errs, fmt.Sprintf("balance.job_duration_floor must be in (0, 1], got %g", b.JobDurationFloor))
	}
	if b.JobBaseSlots < 1 {
		errs = append(errs, fmt.Sprintf("balance.job_base_slots must be >= 1, got %d", b.JobBaseSlots))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// DefaultBalance returns the shipped balance constants.
//
// Postcondition: The returned config passes validation.
func DefaultBalance() BalanceConfig {
	return BalanceConfig{
		EnemyAttackCooldown: 5 * time.Second,
		FleeChance:          0.05,
		FleeDelay:           2 * time.Second,
		FaintRecovery:       60 * time.Second,
		RegenRate:           0.025,
		LevelScalingBase:    1.28,
		PlayerAttackBoost:   1.5,
		EnemyAttackBoost:    2.5,
		LevelExponentMid:    30,
		LevelExponentFloor:  0.25,
		StatGrowthExp:       0.8,
		HPPerLevel:          20,
		DefenseRatio:        0.8,
		BaseHitsToDefeat:    10,
		PlainBallRate:       0.15,
		LegendaryLevel:      50,
		CatchLevelPenalty:   0.95,
		CatchLegendPenalty:  0.8,
		CatchMinChance:      0.001,
		HarshLevelPenalty:   0.9,
		HarshLegendPenalty:  0.7,
		HarshMinChance:      0.0005,
		FireRateActivateAt:  40,
		FireRateTier2At:     80,
		FireRateTier3At:     120,
		FireRateBaseWindow:  10 * time.Second,
		FireRateTier1Window: 8 * time.Second,
		FireRateTier2Window: 6 * time.Second,
		FireRateTier3Window: 5 * time.Second,
		SpawnFloor:          500 * time.Millisecond,
		SpawnDelayEvery:     10,
		SpawnDelay:          10 * time.Second,
		FearWindow:          30 * time.Second,
		FearThreshold:       10,
		FearDuration:        60 * time.Second,
		PartyCap:            6,
		StarterLevel:        8,
		JobWorkerReduction:  0.20,
		JobWorkerLevelCap:   100,
		JobExtraWorkerCap:   0.05,
		JobLevelChanceBonus: 0.002,
		JobDurationCap:      0.90,
		JobDurationFloor:    0.10,
		JobBaseSlots:        1,
	}
}

func setBalanceDefaults(v *viper.Viper) {
	b := DefaultBalance()
	v.SetDefault("balance.enemy_attack_cooldown", b.EnemyAttackCooldown)
	v.SetDefault("balance.flee_chance", b.FleeChance)
	v.SetDefault("balance.flee_delay", b.FleeDelay)
	v.SetDefault("balance.faint_recovery", b.FaintRecovery)
	v.SetDefault("balance.regen_rate", b.RegenRate)
	v.SetDefault("balance.level_scaling_base", b.LevelScalingBase)
	v.SetDefault("balance.player_attack_boost", b.PlayerAttackBoost)
	v.SetDefault("balance.enemy_attack_boost", b.EnemyAttackBoost)
	v.SetDefault("balance.level_exponent_mid", b.LevelExponentMid)
	v.SetDefault("balance.level_exponent_floor", b.LevelExponentFloor)
	v.SetDefault("balance.stat_growth_exp", b.StatGrowthExp)
	v.SetDefault("balance.hp_per_level", b.HPPerLevel)
	v.SetDefault("balance.defense_ratio", b.DefenseRatio)
	v.SetDefault("balance.base_hits_to_defeat", b.BaseHitsToDefeat)
	v.SetDefault("balance.plain_ball_rate", b.PlainBallRate)
	v.SetDefault("balance.legendary_level", b.LegendaryLevel)
	v.SetDefault("balance.catch_level_penalty", b.CatchLevelPenalty)
	v.SetDefault("balance.catch_legend_penalty", b.CatchLegendPenalty)
	v.SetDefault("balance.catch_min_chance", b.CatchMinChance)
	v.SetDefault("balance.harsh_level_penalty", b.HarshLevelPenalty)
	v.SetDefault("balance.harsh_legend_penalty", b.HarshLegendPenalty)
	v.SetDefault("balance.harsh_min_chance", b.HarshMinChance)
	v.SetDefault("balance.fire_rate_activate_at", b.FireRateActivateAt)
	v.SetDefault("balance.fire_rate_tier2_at", b.FireRateTier2At)
	v.SetDefault("balance.fire_rate_tier3_at", b.FireRateTier3At)
	v.SetDefault("balance.fire_rate_base_window", b.FireRateBaseWindow)
	v.SetDefault("balance.fire_rate_tier1_window", b.FireRateTier1Window)
	v.SetDefault("balance.fire_rate_tier2_window", b.FireRateTier2Window)
	v.SetDefault("balance.fire_rate_tier3_window", b.FireRateTier3Window)
	v.SetDefault("balance.spawn_floor", b.SpawnFloor)
	v.SetDefault("balance.spawn_delay_every", b.SpawnDelayEvery)
	v.SetDefault("balance.spawn_delay", b.SpawnDelay)
	v.SetDefault("balance.fear_window", b.FearWindow)
	v.SetDefault("balance.fear_threshold", b.FearThreshold)
	v.SetDefault("balance.fear_duration", b.FearDuration)
	v.SetDefault("balance.party_cap", b.PartyCap)
	v.SetDefault("balance.starter_level", b.StarterLevel)
	v.SetDefault("balance.job_worker_reduction", b.JobWorkerReduction)
	v.SetDefault("balance.job_worker_level_cap", b.JobWorkerLevelCap)
	v.SetDefault("balance.job_extra_worker_cap", b.JobExtraWorkerCap)
	v.SetDefault("balance.job_level_chance_bonus", b.JobLevelChanceBonus)
	v.SetDefault("balance.job_duration_cap", b.JobDurationCap)
	v.SetDefault("balance.job_duration_floor", b.JobDurationFloor)
	v.SetDefault("balance.job_base_slots", b.JobBaseSlots)
}
