package buff

import "time"

// Tuning carries the streak balance constants, sourced from the balance
// configuration. Zero values are not usable; start from DefaultTuning.
type Tuning struct {
	// Streak thresholds: the attack counts at which the streak activates
	// and promotes through its tiers.
	FireRateActivateAt int
	FireRateTier2At    int
	FireRateTier3At    int
	// Per-tier windows: the longest pause between attacks before the
	// streak breaks.
	FireRateBaseWindow  time.Duration
	FireRateTier1Window time.Duration
	FireRateTier2Window time.Duration
	FireRateTier3Window time.Duration
}

// DefaultTuning returns the shipped streak balance.
func DefaultTuning() Tuning {
	return Tuning{
		FireRateActivateAt:  40,
		FireRateTier2At:     80,
		FireRateTier3At:     120,
		FireRateBaseWindow:  10 * time.Second,
		FireRateTier1Window: 8 * time.Second,
		FireRateTier2Window: 6 * time.Second,
		FireRateTier3Window: 5 * time.Second,
	}
}
