package creature

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotInRoster is returned when an instance ID matches no creature.
	ErrNotInRoster = errors.New("creature not in roster")
	// ErrLastHealthy is returned when an operation would leave the party
	// without a single healthy member.
	ErrLastHealthy = errors.New("cannot remove the last healthy party member")
	// ErrWorking is returned when a working creature is moved or activated.
	ErrWorking = errors.New("creature is assigned to a job")
)

// Roster holds the player's creatures: an active party with a fixed cap and
// an unbounded reserve. It is not safe for concurrent use; the simulation
// mutates it from the tick loop only.
//
// Invariant: len(party) <= partyCap; activeIdx is a valid party index
// whenever the party is non-empty.
type Roster struct {
	party     []*Creature
	reserve   []*Creature
	activeIdx int
	partyCap  int
}

// NewRoster returns an empty roster with the given party cap.
//
// Precondition: partyCap >= 1.
func NewRoster(partyCap int) *Roster {
	if partyCap < 1 {
		partyCap = 1
	}
	return &Roster{partyCap: partyCap}
}

// Add places a creature in the party if there is room, otherwise in the
// reserve.
//
// Precondition: c must not be nil.
func (r *Roster) Add(c *Creature) {
	if len(r.party) < r.partyCap {
		r.party = append(r.party, c)
		return
	}
	r.reserve = append(r.reserve, c)
}

// Party returns the active party in order.
func (r *Roster) Party() []*Creature {
	return r.party
}

// Reserve returns the reserve in order.
func (r *Roster) Reserve() []*Creature {
	return r.reserve
}

// All returns every creature, party first.
func (r *Roster) All() []*Creature {
	out := make([]*Creature, 0, len(r.party)+len(r.reserve))
	out = append(out, r.party...)
	return append(out, r.reserve...)
}

// Active returns the creature currently leading the party, nil when the
// party is empty.
func (r *Roster) Active() *Creature {
	if len(r.party) == 0 {
		return nil
	}
	if r.activeIdx >= len(r.party) {
		r.activeIdx = 0
	}
	return r.party[r.activeIdx]
}

// SetActive makes the identified party member the active creature.
func (r *Roster) SetActive(id uuid.UUID) error {
	for i, c := range r.party {
		if c.InstanceID == id {
			if c.Working {
				return fmt.Errorf("activating %s: %w", c.Name, ErrWorking)
			}
			r.activeIdx = i
			return nil
		}
	}
	return fmt.Errorf("activating %s: %w", id, ErrNotInRoster)
}

// Find returns the creature with the given instance ID.
func (r *Roster) Find(id uuid.UUID) (*Creature, bool) {
	for _, c := range r.All() {
		if c.InstanceID == id {
			return c, true
		}
	}
	return nil, false
}

// NextAvailable returns the next healthy, non-working party member after the
// active one, wrapping around, or nil when no other member can fight.
func (r *Roster) NextAvailable() *Creature {
	n := len(r.party)
	for offset := 1; offset < n; offset++ {
		c := r.party[(r.activeIdx+offset)%n]
		if c.Healthy() && !c.Working {
			return c
		}
	}
	return nil
}

// HasHealthy reports whether any party member can fight.
func (r *Roster) HasHealthy() bool {
	for _, c := range r.party {
		if c.Healthy() {
			return true
		}
	}
	return false
}

// MoveToParty promotes a reserve creature into the party.
//
// Postcondition: On success the creature occupies a party slot; returns an
// error when the party is full or the ID is unknown.
func (r *Roster) MoveToParty(id uuid.UUID) error {
	if len(r.party) >= r.partyCap {
		return fmt.Errorf("party is full (%d)", r.partyCap)
	}
	for i, c := range r.reserve {
		if c.InstanceID == id {
			r.reserve = append(r.reserve[:i], r.reserve[i+1:]...)
			r.party = append(r.party, c)
			return nil
		}
	}
	return fmt.Errorf("promoting %s: %w", id, ErrNotInRoster)
}

// MoveToReserve demotes a party creature into the reserve. The active slot
// hands off to the next healthy member first.
//
// Postcondition: The party never loses its last healthy member.
func (r *Roster) MoveToReserve(id uuid.UUID) error {
	for i, c := range r.party {
		if c.InstanceID != id {
			continue
		}
		if c.Healthy() && !r.otherHealthy(i) {
			return fmt.Errorf("demoting %s: %w", c.Name, ErrLastHealthy)
		}
		if i == r.activeIdx {
			if next := r.NextAvailable(); next != nil {
				_ = r.SetActive(next.InstanceID)
			}
		}
		if i < r.activeIdx {
			r.activeIdx--
		} else if i == r.activeIdx {
			r.activeIdx = 0
		}
		r.party = append(r.party[:i], r.party[i+1:]...)
		r.reserve = append(r.reserve, c)
		return nil
	}
	return fmt.Errorf("demoting %s: %w", id, ErrNotInRoster)
}

// Release removes the creature from the roster entirely. Working
// creatures must be pulled off their job first.
//
// Postcondition: The party never loses its last healthy member.
func (r *Roster) Release(id uuid.UUID) error {
	for i, c := range r.party {
		if c.InstanceID != id {
			continue
		}
		if c.Working {
			return fmt.Errorf("releasing %s: %w", c.Name, ErrWorking)
		}
		if c.Healthy() && !r.otherHealthy(i) {
			return fmt.Errorf("releasing %s: %w", c.Name, ErrLastHealthy)
		}
		if i == r.activeIdx {
			if next := r.NextAvailable(); next != nil {
				_ = r.SetActive(next.InstanceID)
			}
		}
		if i < r.activeIdx {
			r.activeIdx--
		} else if i == r.activeIdx {
			r.activeIdx = 0
		}
		r.party = append(r.party[:i], r.party[i+1:]...)
		return nil
	}
	for i, c := range r.reserve {
		if c.InstanceID != id {
			continue
		}
		if c.Working {
			return fmt.Errorf("releasing %s: %w", c.Name, ErrWorking)
		}
		r.reserve = append(r.reserve[:i], r.reserve[i+1:]...)
		return nil
	}
	return fmt.Errorf("releasing %s: %w", id, ErrNotInRoster)
}

func (r *Roster) otherHealthy(except int) bool {
	for i, c := range r.party {
		if i != except && c.Healthy() {
			return true
		}
	}
	return false
}

// Dedup merges duplicate instances by ID, keeping the higher level, or the
// higher experience at equal level. Running it twice is a no-op.
//
// Postcondition: Returns true iff any duplicates were merged.
func (r *Roster) Dedup() bool {
	seen := make(map[uuid.UUID]*Creature)
	merged := false

	keep := func(list []*Creature) []*Creature {
		out := list[:0]
		for _, c := range list {
			prev, ok := seen[c.InstanceID]
			if !ok {
				seen[c.InstanceID] = c
				out = append(out, c)
				continue
			}
			merged = true
			if betterOf(c, prev) == c {
				*prev = *c
			}
		}
		return out
	}

	r.party = keep(r.party)
	r.reserve = keep(r.reserve)
	if r.activeIdx >= len(r.party) {
		r.activeIdx = 0
	}
	return merged
}

func betterOf(a, b *Creature) *Creature {
	if a.Level != b.Level {
		if a.Level > b.Level {
			return a
		}
		return b
	}
	if a.XP >= b.XP {
		return a
	}
	return b
}

// Restore replaces the roster contents from a snapshot.
//
// Precondition: len(party) <= the roster's party cap and activeIdx indexes
// party when it is non-empty.
func (r *Roster) Restore(party, reserve []*Creature, activeIdx int) error {
	if len(party) > r.partyCap {
		return fmt.Errorf("restored party size %d exceeds cap %d", len(party), r.partyCap)
	}
	if len(party) > 0 && (activeIdx < 0 || activeIdx >= len(party)) {
		return fmt.Errorf("restored active index %d out of range for party of %d", activeIdx, len(party))
	}
	r.party = party
	r.reserve = reserve
	r.activeIdx = activeIdx
	return nil
}

// ActiveIndex returns the index of the active party slot.
func (r *Roster) ActiveIndex() int {
	return r.activeIdx
}

// Regen advances out-of-battle recovery for every creature: fainted members
// whose recovery has elapsed stand back up at zero HP, and standing members
// below full heal by rate*MaxHP. The creature in battle is skipped.
//
// Precondition: 0 <= rate <= 1.
func (r *Roster) Regen(now time.Time, rate float64, inBattle *Creature) {
	for _, c := range r.All() {
		if c == inBattle {
			continue
		}
		if c.Fainted() {
			if !c.RecoverAt.After(now) {
				c.Revive()
			}
			continue
		}
		if c.HP < c.MaxHP {
			amount := float64(c.MaxHP) * rate
			c.SetHP(int(math.Floor(float64(c.HP) + amount)))
		}
	}
}
