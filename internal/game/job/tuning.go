package job

// Tuning carries the job balance constants, sourced from the balance
// configuration. Zero values are not usable; start from DefaultTuning.
type Tuning struct {
	// WorkerReduction is the time reduction one level-capped worker brings.
	WorkerReduction float64
	// WorkerLevelCap is the level at which a worker's contribution maxes out.
	WorkerLevelCap int
	// DurationCap bounds the summed reduction from all sources.
	DurationCap float64
	// ExtraWorkerCap bounds the flat time bonus from extra workers.
	ExtraWorkerCap float64
	// DurationFloor floors the effective duration relative to base.
	DurationFloor float64
	// LevelChanceBonus is the success chance added per worker level.
	LevelChanceBonus float64
}

// DefaultTuning returns the shipped job balance.
func DefaultTuning() Tuning {
	return Tuning{
		WorkerReduction:  0.20,
		WorkerLevelCap:   100,
		DurationCap:      0.90,
		ExtraWorkerCap:   0.05,
		DurationFloor:    0.10,
		LevelChanceBonus: 0.002,
	}
}
