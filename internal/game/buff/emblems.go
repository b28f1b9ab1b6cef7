package buff

import "fmt"

// emblems are the buff templates grantable as idle job rewards, keyed by
// buff ID. Jobs name these IDs in their reward tables.
var emblems = map[string]Buff{
	"fire-emblem":     {ID: "fire-emblem", Name: "Fire Emblem", Kind: KindFireEmblem},
	"water-emblem":    {ID: "water-emblem", Name: "Water Emblem", Kind: KindWaterEmblem},
	"rock-emblem":     {ID: "rock-emblem", Name: "Rock Emblem", Kind: KindRockEmblem},
	"electric-emblem": {ID: "electric-emblem", Name: "Electric Emblem", Kind: KindElectricEmblem},
	"flying-emblem":   {ID: "flying-emblem", Name: "Flying Emblem", Kind: KindFlyingEmblem},
	"xp-boost":        {ID: "xp-boost", Name: "XP Charm", Kind: KindXPBoost},
}

// KnownEmblem reports whether buffID names a grantable emblem.
func KnownEmblem(buffID string) bool {
	_, ok := emblems[buffID]
	return ok
}

// GrantEmblem grants the emblem by ID, at level 1 on the first grant and one
// level higher on each repeat. It returns the emblem's display name.
func (s *Set) GrantEmblem(buffID string) (string, error) {
	b, ok := emblems[buffID]
	if !ok {
		return "", fmt.Errorf("granting emblem: unknown emblem %q", buffID)
	}
	if err := s.Grant(b); err != nil {
		return "", err
	}
	// An electric emblem level change shifts the auto-attack pace.
	s.RefreshAutoAttackInterval()
	return b.Name, nil
}
