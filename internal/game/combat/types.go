// Package combat implements the pure battle math for the simulation:
// type effectiveness, stat generation, damage, capture odds, and experience.
// Nothing in this package holds state; callers supply an rng.Source so every
// roll is pinnable in tests.
package combat

// Type is an elemental creature type.
type Type string

// The eighteen elemental types.
const (
	TypeNormal   Type = "normal"
	TypeFire     Type = "fire"
	TypeWater    Type = "water"
	TypeElectric Type = "electric"
	TypeGrass    Type = "grass"
	TypeIce      Type = "ice"
	TypeFighting Type = "fighting"
	TypePoison   Type = "poison"
	TypeGround   Type = "ground"
	TypeFlying   Type = "flying"
	TypePsychic  Type = "psychic"
	TypeBug      Type = "bug"
	TypeRock     Type = "rock"
	TypeGhost    Type = "ghost"
	TypeDragon   Type = "dragon"
	TypeDark     Type = "dark"
	TypeSteel    Type = "steel"
	TypeFairy    Type = "fairy"
)

// AllTypes lists every valid Type, in chart order.
var AllTypes = []Type{
	TypeNormal, TypeFire, TypeWater, TypeElectric, TypeGrass, TypeIce,
	TypeFighting, TypePoison, TypeGround, TypeFlying, TypePsychic, TypeBug,
	TypeRock, TypeGhost, TypeDragon, TypeDark, TypeSteel, TypeFairy,
}

// Valid reports whether t is one of the eighteen chart types.
func (t Type) Valid() bool {
	_, ok := typeChart[t]
	return ok
}

type matchup struct {
	strongAgainst []Type
	weakAgainst   []Type
}

// typeChart maps each attacking type to the defender types it hits hard
// (double damage) or soft (half damage). Pairs absent from both lists are
// neutral.
var typeChart = map[Type]matchup{
	TypeNormal:   {strongAgainst: nil, weakAgainst: []Type{TypeRock, TypeSteel}},
	TypeFire:     {strongAgainst: []Type{TypeGrass, TypeIce, TypeBug, TypeSteel}, weakAgainst: []Type{TypeFire, TypeWater, TypeRock, TypeDragon}},
	TypeWater:    {strongAgainst: []Type{TypeFire, TypeGround, TypeRock}, weakAgainst: []Type{TypeWater, TypeGrass, TypeDragon}},
	TypeElectric: {strongAgainst: []Type{TypeWater, TypeFlying}, weakAgainst: []Type{TypeElectric, TypeGrass, TypeDragon, TypeGround}},
	TypeGrass:    {strongAgainst: []Type{TypeWater, TypeGround, TypeRock}, weakAgainst: []Type{TypeFire, TypeGrass, TypePoison, TypeFlying, TypeBug, TypeDragon, TypeSteel}},
	TypeIce:      {strongAgainst: []Type{TypeGrass, TypeGround, TypeFlying, TypeDragon}, weakAgainst: []Type{TypeFire, TypeWater, TypeIce, TypeSteel}},
	TypeFighting: {strongAgainst: []Type{TypeNormal, TypeIce, TypeRock, TypeDark, TypeSteel}, weakAgainst: []Type{TypePoison, TypeFlying, TypePsychic, TypeBug, TypeFairy}},
	TypePoison:   {strongAgainst: []Type{TypeGrass, TypeFairy}, weakAgainst: []Type{TypePoison, TypeGround, TypeRock, TypeGhost}},
	TypeGround:   {strongAgainst: []Type{TypeFire, TypeElectric, TypePoison, TypeRock, TypeSteel}, weakAgainst: []Type{TypeGrass, TypeBug}},
	TypeFlying:   {strongAgainst: []Type{TypeGrass, TypeFighting, TypeBug}, weakAgainst: []Type{TypeElectric, TypeRock, TypeSteel}},
	TypePsychic:  {strongAgainst: []Type{TypeFighting, TypePoison}, weakAgainst: []Type{TypePsychic, TypeSteel}},
	TypeBug:      {strongAgainst: []Type{TypeGrass, TypePsychic, TypeDark}, weakAgainst: []Type{TypeFire, TypeFighting, TypePoison, TypeFlying, TypeGhost, TypeSteel, TypeFairy}},
	TypeRock:     {strongAgainst: []Type{TypeFire, TypeIce, TypeFlying, TypeBug}, weakAgainst: []Type{TypeFighting, TypeGround, TypeSteel}},
	TypeGhost:    {strongAgainst: []Type{TypePsychic, TypeGhost}, weakAgainst: []Type{TypeDark}},
	TypeDragon:   {strongAgainst: []Type{TypeDragon}, weakAgainst: []Type{TypeSteel, TypeFairy}},
	TypeDark:     {strongAgainst: []Type{TypePsychic, TypeGhost}, weakAgainst: []Type{TypeFighting, TypeDark, TypeFairy}},
	TypeSteel:    {strongAgainst: []Type{TypeIce, TypeRock, TypeFairy}, weakAgainst: []Type{TypeFire, TypeWater, TypeElectric, TypeSteel}},
	TypeFairy:    {strongAgainst: []Type{TypeFighting, TypeDragon, TypeDark}, weakAgainst: []Type{TypeFire, TypePoison, TypeSteel}},
}

// Verdict summarizes how a matchup landed, for battle-log phrasing.
type Verdict int

const (
	// VerdictNeutral means no strong or weak pairings fired.
	VerdictNeutral Verdict = iota
	// VerdictSuper means at least one strong pairing fired and no weak ones.
	VerdictSuper
	// VerdictNotVery means at least one weak pairing fired and no strong ones.
	VerdictNotVery
	// VerdictMixed means both strong and weak pairings fired.
	VerdictMixed
)

// String returns the battle-log phrase for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictSuper:
		return "It's super effective!"
	case VerdictNotVery:
		return "It's not very effective."
	case VerdictMixed:
		return "It has mixed effectiveness."
	default:
		return ""
	}
}

// Effectiveness computes the damage multiplier for an attack, pairing every
// attacker type against every defender type. Each strong pairing doubles the
// multiplier, each weak pairing halves it.
//
// Postcondition: multiplier > 0; multiplier == 1 iff verdict is Neutral or
// the strong and weak pairings cancel exactly.
func Effectiveness(attacker, defender []Type) (float64, Verdict) {
	multiplier := 1.0
	var super, notVery bool
	for _, atk := range attacker {
		chart, ok := typeChart[atk]
		if !ok {
			continue
		}
		for _, def := range defender {
			switch {
			case containsType(chart.strongAgainst, def):
				multiplier *= 2
				super = true
			case containsType(chart.weakAgainst, def):
				multiplier *= 0.5
				notVery = true
			}
		}
	}
	verdict := VerdictNeutral
	switch {
	case super && notVery:
		verdict = VerdictMixed
	case super:
		verdict = VerdictSuper
	case notVery:
		verdict = VerdictNotVery
	}
	return multiplier, verdict
}

func containsType(ts []Type, t Type) bool {
	for _, v := range ts {
		if v == t {
			return true
		}
	}
	return false
}
