// Package storage defines the persistence contracts for the simulation:
// a single-player snapshot store and a last-tick marker store.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pokengu/idlemon/internal/game/battle"
	"github.com/pokengu/idlemon/internal/game/buff"
	"github.com/pokengu/idlemon/internal/game/creature"
	"github.com/pokengu/idlemon/internal/game/fear"
	"github.com/pokengu/idlemon/internal/game/job"
)

// ErrNoSnapshot is returned when no snapshot has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot saved")

// Unlocks are the one-way feature gates a profile opens as it plays.
type Unlocks struct {
	Pokedex   bool `json:"pokedex"`
	Inventory bool `json:"inventory"`
	IdleJobs  bool `json:"idle_jobs"`
}

// Snapshot is the full persisted game state. It aggregates the
// per-subsystem snapshots so a single load rebuilds the whole session.
type Snapshot struct {
	SavedAt time.Time `json:"saved_at"`

	Party       []*creature.Creature `json:"party"`
	Reserve     []*creature.Creature `json:"reserve"`
	ActiveIndex int                  `json:"active_index"`

	Unlocks Unlocks `json:"unlocks"`

	Inventory []ItemStack     `json:"inventory"`
	Buffs     buff.Snapshot   `json:"buffs"`
	Fear      fear.Snapshot   `json:"fear"`
	Jobs      job.Snapshot    `json:"jobs"`
	Battle    battle.Snapshot `json:"battle"`

	BerryTasks []BerryTask `json:"berry_tasks"`
}

// ItemStack is one persisted inventory stack. Only the item ID is
// stored; definitions always come from the loaded content.
type ItemStack struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// BerryTask is a scheduled passive catch attempt from a used lure berry.
type BerryTask struct {
	ID       string    `json:"id"`
	RegionID string    `json:"region_id"`
	ItemName string    `json:"item_name"`
	EndsAt   time.Time `json:"ends_at"`
}

// Store persists the game snapshot.
type Store interface {
	// Load returns the saved snapshot, or ErrNoSnapshot on first run.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the saved snapshot.
	Save(ctx context.Context, snap *Snapshot) error
}

// MarkerStore persists the wall-clock time of the last delivered tick,
// which bounds the offline catch-up window on the next start.
type MarkerStore interface {
	// LoadMarker returns the saved marker, or the zero time when none
	// has been saved yet.
	LoadMarker(ctx context.Context) (time.Time, error)

	// SaveMarker replaces the saved marker.
	SaveMarker(ctx context.Context, at time.Time) error
}
