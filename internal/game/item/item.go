package item

import (
	"errors"
	"fmt"
	"strings"
)

// Rarity grades how hard an item is to come by.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Valid reports whether r is a known rarity grade.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Definition is the static content for one item.
type Definition struct {
	ID          string
	Name        string
	Description string
	Rarity      Rarity
	// Usable items can be activated from the inventory.
	Usable bool
	// Consumable items lose one unit of quantity when used.
	Consumable bool
	// Effect is what using the item does. Non-usable items may have none.
	Effect Effect
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff the definition is internally consistent.
func (d Definition) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "item id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "item name must not be empty")
	}
	if !d.Rarity.Valid() {
		errs = append(errs, fmt.Sprintf("unknown rarity %q", d.Rarity))
	}
	if d.Usable && d.Effect == nil {
		errs = append(errs, "usable item must have an effect")
	}
	if err := validateEffect(d.Effect); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
