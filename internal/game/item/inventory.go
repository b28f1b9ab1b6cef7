package item

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrItemNotFound is returned when an item ID has no stack in the inventory.
	ErrItemNotFound = errors.New("item not found in inventory")
	// ErrInsufficientQuantity is returned when a removal exceeds the stack.
	ErrInsufficientQuantity = errors.New("insufficient item quantity")
)

// Stack is a quantity of one item.
type Stack struct {
	Def      Definition
	Quantity int
}

// Inventory holds the player's item stacks. It is not safe for concurrent
// use; the simulation mutates it from the tick loop only.
//
// Invariant: every stored stack has Quantity >= 1.
type Inventory struct {
	stacks map[string]*Stack
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{stacks: make(map[string]*Stack)}
}

// Add merges qty units of the item into the inventory.
//
// Precondition: qty >= 1.
func (inv *Inventory) Add(def Definition, qty int) error {
	if qty < 1 {
		return fmt.Errorf("add quantity must be >= 1, got %d", qty)
	}
	if s, ok := inv.stacks[def.ID]; ok {
		s.Quantity += qty
		return nil
	}
	inv.stacks[def.ID] = &Stack{Def: def, Quantity: qty}
	return nil
}

// Remove takes qty units of the item out of the inventory, deleting the
// stack when it empties.
//
// Precondition: qty >= 1.
// Postcondition: Returns ErrItemNotFound or ErrInsufficientQuantity without
// mutating state on failure.
func (inv *Inventory) Remove(id string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("remove quantity must be >= 1, got %d", qty)
	}
	s, ok := inv.stacks[id]
	if !ok {
		return fmt.Errorf("removing %q: %w", id, ErrItemNotFound)
	}
	if s.Quantity < qty {
		return fmt.Errorf("removing %d of %q with %d held: %w", qty, id, s.Quantity, ErrInsufficientQuantity)
	}
	s.Quantity -= qty
	if s.Quantity == 0 {
		delete(inv.stacks, id)
	}
	return nil
}

// Quantity returns the held count for the item, zero if absent.
func (inv *Inventory) Quantity(id string) int {
	if s, ok := inv.stacks[id]; ok {
		return s.Quantity
	}
	return 0
}

// Get returns the stack for the item.
func (inv *Inventory) Get(id string) (Stack, bool) {
	if s, ok := inv.stacks[id]; ok {
		return *s, true
	}
	return Stack{}, false
}

// Stacks returns all stacks sorted by item ID.
func (inv *Inventory) Stacks() []Stack {
	out := make([]Stack, 0, len(inv.stacks))
	for _, s := range inv.stacks {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def.ID < out[j].Def.ID })
	return out
}

// Heals returns all stacks with a heal effect, weakest heal first. The
// survive-a-lethal-hit path burns the weakest potions, so the order matters.
func (inv *Inventory) Heals() []Stack {
	var out []Stack
	for _, s := range inv.stacks {
		if _, ok := s.Def.Effect.(HealEffect); ok {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		hi := out[i].Def.Effect.(HealEffect).Value
		hj := out[j].Def.Effect.(HealEffect).Value
		if hi != hj {
			return hi < hj
		}
		return out[i].Def.ID < out[j].Def.ID
	})
	return out
}

// CatchItems returns all stacks with a catch effect, weakest rate first.
func (inv *Inventory) CatchItems() []Stack {
	var out []Stack
	for _, s := range inv.stacks {
		if _, ok := s.Def.Effect.(CatchEffect); ok {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ri := out[i].Def.Effect.(CatchEffect).Rate
		rj := out[j].Def.Effect.(CatchEffect).Rate
		if ri != rj {
			return ri < rj
		}
		return out[i].Def.ID < out[j].Def.ID
	})
	return out
}

// Restore replaces the inventory contents from a snapshot.
//
// Precondition: every stack must have Quantity >= 1 and a valid definition.
func (inv *Inventory) Restore(stacks []Stack) error {
	fresh := make(map[string]*Stack, len(stacks))
	for _, s := range stacks {
		if s.Quantity < 1 {
			return fmt.Errorf("restoring %q: quantity must be >= 1, got %d", s.Def.ID, s.Quantity)
		}
		if err := s.Def.Validate(); err != nil {
			return fmt.Errorf("restoring %q: %w", s.Def.ID, err)
		}
		stack := s
		fresh[s.Def.ID] = &stack
	}
	inv.stacks = fresh
	return nil
}
