// Package region defines the hunting regions, their level bands, and the
// weighted spawn pools wild creatures are drawn from.
package region

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pokengu/idlemon/internal/game/rng"
)

// ErrEmptyPool is returned when drawing from a region with no spawn entries.
var ErrEmptyPool = errors.New("region has no spawn pool")

// SpawnEntry weights one species within a region's pool.
type SpawnEntry struct {
	SpeciesID string
	Weight    float64
}

// Definition is the static content for one region.
type Definition struct {
	ID   string
	Name string
	// MinLevel and MaxLevel bound the levels of wild spawns.
	MinLevel int
	MaxLevel int
	// SpawnDelay is the base countdown before a new wild creature appears.
	SpawnDelay time.Duration
	// Pool is the weighted spawn table for active hunting.
	Pool []SpawnEntry
	// BerryPool is the weighted table used by passive auto-catch attempts.
	BerryPool []SpawnEntry
	// Sanctuary regions never spawn wild creatures.
	Sanctuary bool
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff the definition is internally consistent.
func (d Definition) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "region id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "region name must not be empty")
	}
	if d.MinLevel < 0 {
		errs = append(errs, fmt.Sprintf("min level must be >= 0, got %d", d.MinLevel))
	}
	if d.MaxLevel < d.MinLevel {
		errs = append(errs, fmt.Sprintf("max level (%d) must be >= min level (%d)", d.MaxLevel, d.MinLevel))
	}
	if d.SpawnDelay < 0 {
		errs = append(errs, "spawn delay must not be negative")
	}
	if !d.Sanctuary && len(d.Pool) == 0 {
		errs = append(errs, "non-sanctuary region must have a spawn pool")
	}
	if d.Sanctuary && len(d.Pool) > 0 {
		errs = append(errs, "sanctuary region must not have a spawn pool")
	}
	for i, e := range append(append([]SpawnEntry{}, d.Pool...), d.BerryPool...) {
		if e.SpeciesID == "" {
			errs = append(errs, fmt.Sprintf("spawn entry %d must name a species", i))
		}
		if e.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("spawn entry %d weight must be positive, got %g", i, e.Weight))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Draw picks one species ID from a weighted pool.
//
// Precondition: src must be non-nil; entries must have positive weights.
// Postcondition: Each entry is selected with probability weight/sum(weights),
// or ErrEmptyPool when the pool has no entries.
func Draw(pool []SpawnEntry, src rng.Source) (string, error) {
	var total float64
	for _, e := range pool {
		total += e.Weight
	}
	if total <= 0 {
		return "", ErrEmptyPool
	}

	roll := src.Float64() * total
	var cumulative float64
	for _, e := range pool {
		cumulative += e.Weight
		if roll < cumulative {
			return e.SpeciesID, nil
		}
	}
	// Float accumulation can leave roll a hair past the last bucket.
	return pool[len(pool)-1].SpeciesID, nil
}

// RollLevel picks a uniform wild level within the region's band.
//
// Precondition: d must have passed Validate; src must be non-nil.
// Postcondition: MinLevel <= result <= MaxLevel, floored at 1.
func (d Definition) RollLevel(src rng.Source) int {
	level := d.MinLevel
	if spread := d.MaxLevel - d.MinLevel; spread > 0 {
		level += src.Intn(spread + 1)
	}
	if level < 1 {
		level = 1
	}
	return level
}

// Index is an immutable lookup of regions by ID.
type Index struct {
	regions map[string]Definition
}

// NewIndex builds an index from validated regions.
//
// Precondition: every region must pass Validate; IDs must be unique.
func NewIndex(regions []Definition) (*Index, error) {
	m := make(map[string]Definition, len(regions))
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("region %q: %w", r.ID, err)
		}
		if _, exists := m[r.ID]; exists {
			return nil, fmt.Errorf("duplicate region id %q", r.ID)
		}
		m[r.ID] = r
	}
	if len(m) == 0 {
		return nil, errors.New("index must contain at least one region")
	}
	return &Index{regions: m}, nil
}

// Get returns the region by ID.
func (i *Index) Get(id string) (Definition, bool) {
	r, ok := i.regions[id]
	return r, ok
}

// IDs returns every region ID in sorted order.
func (i *Index) IDs() []string {
	out := make([]string, 0, len(i.regions))
	for id := range i.regions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of regions in the index.
func (i *Index) Len() int {
	return len(i.regions)
}
