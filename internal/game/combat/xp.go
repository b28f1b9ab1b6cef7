package combat

import "math"

// xpPerDefeat scales the base experience reward for a defeat.
const xpPerDefeat = 35

// XPGain returns the experience awarded for defeating an enemy. Beating
// higher-level enemies pays more; the ratio is floored before scaling, so an
// enemy below the player's level pays nothing.
//
// Precondition: playerLevel >= 1.
func XPGain(playerLevel, enemyLevel int) int {
	return int(math.Floor(10*float64(enemyLevel)/float64(playerLevel))) * xpPerDefeat
}

// XPToNext returns the experience required to advance from the given level.
//
// Precondition: level >= 1.
// Postcondition: result > 0 and strictly increases with level.
func XPToNext(level int) int {
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}
