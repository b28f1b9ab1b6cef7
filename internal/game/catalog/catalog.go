// Package catalog holds the static species content the simulation draws
// wild creatures from.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pokengu/idlemon/internal/game/combat"
)

// Species is the static content for one creature species.
type Species struct {
	ID          string
	Name        string
	Description string
	// Types are the species' elemental types, one or two.
	Types []combat.Type
}

// Validate checks the species' invariants.
//
// Postcondition: Returns nil iff the species is internally consistent.
func (s Species) Validate() error {
	var errs []string
	if s.ID == "" {
		errs = append(errs, "species id must not be empty")
	}
	if s.Name == "" {
		errs = append(errs, "species name must not be empty")
	}
	if len(s.Types) < 1 || len(s.Types) > 2 {
		errs = append(errs, fmt.Sprintf("species must have one or two types, got %d", len(s.Types)))
	}
	for _, t := range s.Types {
		if !t.Valid() {
			errs = append(errs, fmt.Sprintf("unknown type %q", t))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Catalog is an immutable lookup of species by ID.
type Catalog struct {
	species map[string]Species
}

// New builds a catalog from validated species.
//
// Precondition: every species must pass Validate; IDs must be unique.
// Postcondition: Returns a catalog containing every input species, or an error.
func New(species []Species) (*Catalog, error) {
	m := make(map[string]Species, len(species))
	for _, s := range species {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("species %q: %w", s.ID, err)
		}
		if _, exists := m[s.ID]; exists {
			return nil, fmt.Errorf("duplicate species id %q", s.ID)
		}
		m[s.ID] = s
	}
	if len(m) == 0 {
		return nil, errors.New("catalog must contain at least one species")
	}
	return &Catalog{species: m}, nil
}

// Get returns the species by ID.
func (c *Catalog) Get(id string) (Species, bool) {
	s, ok := c.species[id]
	return s, ok
}

// Len returns the number of species in the catalog.
func (c *Catalog) Len() int {
	return len(c.species)
}

// IDs returns all species IDs in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.species))
	for id := range c.species {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
