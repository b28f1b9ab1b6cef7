// Package content loads the static game content from YAML directories:
// species, regions, items, and idle jobs, one definition per file.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pokengu/idlemon/internal/config"
	"github.com/pokengu/idlemon/internal/game/buff"
	"github.com/pokengu/idlemon/internal/game/catalog"
	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/item"
	"github.com/pokengu/idlemon/internal/game/job"
	"github.com/pokengu/idlemon/internal/game/region"
	"github.com/pokengu/idlemon/internal/game/session"
)

// Load reads every content directory named by cfg.
//
// Postcondition: Returns fully validated content or a non-nil error
// naming the offending file.
func Load(cfg config.ContentConfig) (session.Content, error) {
	species, err := LoadSpecies(cfg.SpeciesDir)
	if err != nil {
		return session.Content{}, err
	}
	regions, err := LoadRegions(cfg.RegionsDir)
	if err != nil {
		return session.Content{}, err
	}
	items, err := LoadItems(cfg.ItemsDir)
	if err != nil {
		return session.Content{}, err
	}
	jobs, err := LoadJobs(cfg.JobsDir)
	if err != nil {
		return session.Content{}, err
	}
	if err := crossCheck(species, regions, items, jobs); err != nil {
		return session.Content{}, err
	}
	return session.Content{Species: species, Regions: regions, Items: items, Jobs: jobs}, nil
}

// duration parses YAML scalars like "90s" or "10m" into a time.Duration.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = duration(parsed)
	return nil
}

type speciesFile struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Types       []string `yaml:"types"`
}

// LoadSpecies reads all .yaml files in dir and builds the species catalog.
func LoadSpecies(dir string) (*catalog.Catalog, error) {
	var all []catalog.Species
	err := eachYAML(dir, func(path string) error {
		var f speciesFile
		if err := parseFile(path, &f); err != nil {
			return err
		}
		types := make([]combat.Type, len(f.Types))
		for i, t := range f.Types {
			types[i] = combat.Type(t)
		}
		all = append(all, catalog.Species{
			ID:          f.ID,
			Name:        f.Name,
			Description: f.Description,
			Types:       types,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	c, err := catalog.New(all)
	if err != nil {
		return nil, fmt.Errorf("species content in %s: %w", dir, err)
	}
	return c, nil
}

type spawnEntryFile struct {
	Species string  `yaml:"species"`
	Weight  float64 `yaml:"weight"`
}

type regionFile struct {
	ID         string           `yaml:"id"`
	Name       string           `yaml:"name"`
	MinLevel   int              `yaml:"min_level"`
	MaxLevel   int              `yaml:"max_level"`
	SpawnDelay duration         `yaml:"spawn_delay"`
	Sanctuary  bool             `yaml:"sanctuary"`
	Pool       []spawnEntryFile `yaml:"pool"`
	BerryPool  []spawnEntryFile `yaml:"berry_pool"`
}

// LoadRegions reads all .yaml files in dir and builds the region index.
func LoadRegions(dir string) (*region.Index, error) {
	var all []region.Definition
	err := eachYAML(dir, func(path string) error {
		var f regionFile
		if err := parseFile(path, &f); err != nil {
			return err
		}
		all = append(all, region.Definition{
			ID:         f.ID,
			Name:       f.Name,
			MinLevel:   f.MinLevel,
			MaxLevel:   f.MaxLevel,
			SpawnDelay: time.Duration(f.SpawnDelay),
			Sanctuary:  f.Sanctuary,
			Pool:       spawnEntries(f.Pool),
			BerryPool:  spawnEntries(f.BerryPool),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	idx, err := region.NewIndex(all)
	if err != nil {
		return nil, fmt.Errorf("region content in %s: %w", dir, err)
	}
	return idx, nil
}

func spawnEntries(entries []spawnEntryFile) []region.SpawnEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]region.SpawnEntry, len(entries))
	for i, e := range entries {
		out[i] = region.SpawnEntry{SpeciesID: e.Species, Weight: e.Weight}
	}
	return out
}

type effectFile struct {
	Kind string `yaml:"kind"`
	// Heal fields.
	Value int `yaml:"value"`
	// Catch and auto-catch fields.
	Rate    float64  `yaml:"rate"`
	Harsh   bool     `yaml:"harsh"`
	Perfect bool     `yaml:"perfect"`
	Dur     duration `yaml:"duration"`
}

type itemFile struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Rarity      string      `yaml:"rarity"`
	Usable      bool        `yaml:"usable"`
	Consumable  bool        `yaml:"consumable"`
	Effect      *effectFile `yaml:"effect"`
}

// LoadItems reads all .yaml files in dir and builds the item table.
func LoadItems(dir string) (map[string]item.Definition, error) {
	out := make(map[string]item.Definition)
	err := eachYAML(dir, func(path string) error {
		var f itemFile
		if err := parseFile(path, &f); err != nil {
			return err
		}
		eff, err := buildEffect(f.Effect)
		if err != nil {
			return fmt.Errorf("item file %s: %w", path, err)
		}
		def := item.Definition{
			ID:          f.ID,
			Name:        f.Name,
			Description: f.Description,
			Rarity:      item.Rarity(f.Rarity),
			Usable:      f.Usable,
			Consumable:  f.Consumable,
			Effect:      eff,
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("item file %s: %w", path, err)
		}
		if _, exists := out[def.ID]; exists {
			return fmt.Errorf("item file %s: duplicate item id %q", path, def.ID)
		}
		out[def.ID] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildEffect(f *effectFile) (item.Effect, error) {
	if f == nil {
		return nil, nil
	}
	switch f.Kind {
	case "heal":
		return item.HealEffect{Value: f.Value}, nil
	case "catch":
		return item.CatchEffect{Rate: f.Rate, Harsh: f.Harsh, Perfect: f.Perfect}, nil
	case "auto-catch":
		return item.AutoCatchEffect{Duration: time.Duration(f.Dur), Rate: f.Rate}, nil
	case string(item.SpecialChooseNextSpawn), string(item.SpecialExpandJobSlot), string(item.SpecialResetFearFactor):
		return item.SpecialEffect{Kind: item.SpecialKind(f.Kind)}, nil
	default:
		return nil, fmt.Errorf("unknown effect kind %q", f.Kind)
	}
}

type rewardFile struct {
	Item   string  `yaml:"item"`
	Buff   string  `yaml:"buff"`
	Weight float64 `yaml:"weight"`
}

type jobFile struct {
	ID               string       `yaml:"id"`
	Name             string       `yaml:"name"`
	Description      string       `yaml:"description"`
	Type             string       `yaml:"type"`
	MaxSlots         int          `yaml:"max_slots"`
	BaseTime         duration     `yaml:"base_time"`
	Chance           float64      `yaml:"chance"`
	ExtraWorkerBonus float64      `yaml:"extra_worker_bonus"`
	GrantsStunResist bool         `yaml:"grants_stun_resist"`
	Rewards          []rewardFile `yaml:"rewards"`
}

// LoadJobs reads all .yaml files in dir and builds the idle job table.
func LoadJobs(dir string) (map[string]job.Definition, error) {
	out := make(map[string]job.Definition)
	err := eachYAML(dir, func(path string) error {
		var f jobFile
		if err := parseFile(path, &f); err != nil {
			return err
		}
		rewards := make([]job.Reward, len(f.Rewards))
		for i, r := range f.Rewards {
			rewards[i] = job.Reward{ItemID: r.Item, BuffID: r.Buff, Weight: r.Weight}
		}
		def := job.Definition{
			ID:               f.ID,
			Name:             f.Name,
			Description:      f.Description,
			Type:             combat.Type(f.Type),
			MaxSlots:         f.MaxSlots,
			BaseTime:         time.Duration(f.BaseTime),
			Chance:           f.Chance,
			ExtraWorkerBonus: f.ExtraWorkerBonus,
			GrantsStunResist: f.GrantsStunResist,
			Rewards:          rewards,
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("job file %s: %w", path, err)
		}
		if _, exists := out[def.ID]; exists {
			return fmt.Errorf("job file %s: duplicate job id %q", path, def.ID)
		}
		out[def.ID] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// crossCheck verifies references between content types: spawn pools
// name known species and job rewards name known items or emblems.
func crossCheck(species *catalog.Catalog, regions *region.Index, items map[string]item.Definition, jobs map[string]job.Definition) error {
	for _, id := range regions.IDs() {
		def, _ := regions.Get(id)
		for _, e := range append(append([]region.SpawnEntry{}, def.Pool...), def.BerryPool...) {
			if _, ok := species.Get(e.SpeciesID); !ok {
				return fmt.Errorf("region %q: spawn pool names unknown species %q", id, e.SpeciesID)
			}
		}
	}
	for _, def := range jobs {
		for _, r := range def.Rewards {
			if r.BuffID != "" {
				if !buff.KnownEmblem(r.BuffID) {
					return fmt.Errorf("job %q: reward names unknown emblem %q", def.ID, r.BuffID)
				}
				continue
			}
			if _, ok := items[r.ItemID]; !ok {
				return fmt.Errorf("job %q: reward names unknown item %q", def.ID, r.ItemID)
			}
		}
	}
	return nil
}

func eachYAML(dir string, fn func(path string) error) error {
	paths, err := yamlFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := fn(path); err != nil {
			return err
		}
	}
	return nil
}

func parseFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
