// Package session composes the simulation: one Game owns the roster,
// battle, jobs, buffs, fear tracker, and inventory, and serializes all
// access behind a single mutex so tick deliveries and player actions
// never interleave mid-mutation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/config"
	"github.com/pokengu/idlemon/internal/game/battle"
	"github.com/pokengu/idlemon/internal/game/buff"
	"github.com/pokengu/idlemon/internal/game/catalog"
	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/creature"
	"github.com/pokengu/idlemon/internal/game/fear"
	"github.com/pokengu/idlemon/internal/game/item"
	"github.com/pokengu/idlemon/internal/game/job"
	"github.com/pokengu/idlemon/internal/game/notify"
	"github.com/pokengu/idlemon/internal/game/region"
	"github.com/pokengu/idlemon/internal/game/rng"
	"github.com/pokengu/idlemon/internal/storage"
)

// seedPlainBalls is the fallback ball count a fresh profile starts with.
const seedPlainBalls = 10

// ErrUnknownRegion is returned when a region ID matches no definition.
var ErrUnknownRegion = errors.New("unknown region")

// ErrUnknownItem is returned when an item ID matches no definition.
var ErrUnknownItem = errors.New("unknown item")

// Content is the loaded static game content.
type Content struct {
	Species *catalog.Catalog
	Regions *region.Index
	Items   map[string]item.Definition
	Jobs    map[string]job.Definition
}

// Game is the composition root of a running simulation. All methods are
// safe for concurrent use; every mutation runs under one mutex.
type Game struct {
	mu sync.Mutex

	balance config.BalanceConfig
	cadence config.GameConfig
	content Content
	tuning  combat.Tuning

	roster   *creature.Roster
	inv      *item.Inventory
	buffs    *buff.Set
	fears    *fear.Tracker
	jobs     *job.Engine
	battle   *battle.Controller
	blog     *battle.Log
	notifier notify.Notifier
	store    storage.Store
	src      rng.Source
	log      *zap.Logger
	now      func() time.Time

	unlocks storage.Unlocks
	berries []storage.BerryTask

	tickCount    int
	lastAllCount int
	regenAccum   time.Duration
	fearAccum    time.Duration
	savePending  bool
	lastSave     time.Time
}

// NewGame wires a Game from loaded content. Call Load before Register to
// restore a save or initialize a fresh profile.
//
// Precondition: content must be fully populated; store, src must be
// non-nil. A nil notifier drops notifications.
func NewGame(balance config.BalanceConfig, cadence config.GameConfig, content Content, store storage.Store, notifier notify.Notifier, src rng.Source, log *zap.Logger) *Game {
	if notifier == nil {
		notifier = notify.Nop()
	}
	tuning := combatTuning(balance)
	g := &Game{
		balance:  balance,
		cadence:  cadence,
		content:  content,
		tuning:   tuning,
		roster:   creature.NewRoster(balance.PartyCap),
		inv:      item.NewInventory(),
		buffs:    buff.NewSet(buffTuning(balance)),
		fears:    fear.New(balance.FearWindow, balance.FearThreshold, balance.FearDuration),
		blog:     battle.NewLog(),
		notifier: notifier,
		store:    store,
		src:      src,
		log:      log,
		now:      time.Now,
	}
	g.jobs = job.NewEngine(content.Jobs, jobTuning(balance), g.roster, depositor{g}, g.buffs, notifier, src, log)
	g.battle = battle.NewController(battle.Config{
		Tuning:              tuning,
		EnemyAttackCooldown: balance.EnemyAttackCooldown,
		FleeChance:          balance.FleeChance,
		FleeDelay:           balance.FleeDelay,
		FaintRecovery:       balance.FaintRecovery,
		SpawnFloor:          balance.SpawnFloor,
		SpawnDelayEvery:     balance.SpawnDelayEvery,
		SpawnDelay:          balance.SpawnDelay,
	}, g.roster, g.buffs, g.fears, content.Species, g.inv, notifier, g.blog, src, log)
	return g
}

// combatTuning extracts the combat balance knobs.
func combatTuning(b config.BalanceConfig) combat.Tuning {
	return combat.Tuning{
		LevelScalingBase:   b.LevelScalingBase,
		PlayerAttackBoost:  b.PlayerAttackBoost,
		EnemyAttackBoost:   b.EnemyAttackBoost,
		MidLevel:           b.LevelExponentMid,
		MinExponent:        b.LevelExponentFloor,
		StatGrowthExp:      b.StatGrowthExp,
		HPPerLevel:         b.HPPerLevel,
		AtkDefRatio:        b.DefenseRatio,
		BaseHitsToDefeat:   b.BaseHitsToDefeat,
		PlainBallRate:      b.PlainBallRate,
		LegendaryLevel:     b.LegendaryLevel,
		CatchLevelPenalty:  b.CatchLevelPenalty,
		CatchLegendPenalty: b.CatchLegendPenalty,
		CatchMinChance:     b.CatchMinChance,
		HarshLevelPenalty:  b.HarshLevelPenalty,
		HarshLegendPenalty: b.HarshLegendPenalty,
		HarshMinChance:     b.HarshMinChance,
	}
}

// buffTuning extracts the streak balance knobs.
func buffTuning(b config.BalanceConfig) buff.Tuning {
	return buff.Tuning{
		FireRateActivateAt:  b.FireRateActivateAt,
		FireRateTier2At:     b.FireRateTier2At,
		FireRateTier3At:     b.FireRateTier3At,
		FireRateBaseWindow:  b.FireRateBaseWindow,
		FireRateTier1Window: b.FireRateTier1Window,
		FireRateTier2Window: b.FireRateTier2Window,
		FireRateTier3Window: b.FireRateTier3Window,
	}
}

// jobTuning extracts the idle job balance knobs.
func jobTuning(b config.BalanceConfig) job.Tuning {
	return job.Tuning{
		WorkerReduction:  b.JobWorkerReduction,
		WorkerLevelCap:   b.JobWorkerLevelCap,
		DurationCap:      b.JobDurationCap,
		ExtraWorkerCap:   b.JobExtraWorkerCap,
		DurationFloor:    b.JobDurationFloor,
		LevelChanceBonus: b.JobLevelChanceBonus,
	}
}

// depositor adapts the inventory for job reward deposits, resolving
// reward item IDs against the loaded content.
type depositor struct{ g *Game }

func (d depositor) Deposit(itemID string, qty int) error {
	def, ok := d.g.content.Items[itemID]
	if !ok {
		return fmt.Errorf("depositing reward %q: %w", itemID, ErrUnknownItem)
	}
	return d.g.inv.Add(def, qty)
}

// Load restores the saved snapshot, or initializes a fresh profile when
// none exists.
//
// Postcondition: The roster has at least one creature and the battle
// controller has a region.
func (g *Game) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap, err := g.store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		return g.bootstrap(ctx)
	case err != nil:
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if err := g.restore(snap); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	g.log.Info("snapshot restored",
		zap.Time("saved_at", snap.SavedAt),
		zap.Int("creatures", len(snap.Party)+len(snap.Reserve)))
	return nil
}

// bootstrap initializes a fresh profile: a random starter at the
// configured level, the seed inventory, and the default region.
func (g *Game) bootstrap(ctx context.Context) error {
	ids := g.content.Species.IDs()
	species, _ := g.content.Species.Get(ids[g.src.Intn(len(ids))])
	starter := creature.New(species, g.balance.StarterLevel, false, g.tuning, g.src)
	g.roster.Add(starter)

	g.battle.AddPlainBalls(seedPlainBalls)
	g.battle.SetRegion(g.defaultRegion(), g.now())

	g.notifier.Notify(fmt.Sprintf("%s joined your party!", starter.Name), notify.SeveritySuccess, "")
	g.log.Info("fresh profile initialized",
		zap.String("starter", starter.SpeciesID),
		zap.Int("level", starter.Level))
	return g.save(ctx)
}

// defaultRegion prefers a sanctuary so a fresh or wiped party does not
// face spawns immediately.
func (g *Game) defaultRegion() region.Definition {
	ids := g.content.Regions.IDs()
	for _, id := range ids {
		if def, _ := g.content.Regions.Get(id); def.Sanctuary {
			return def
		}
	}
	def, _ := g.content.Regions.Get(ids[0])
	return def
}

// Close flushes a final save.
func (g *Game) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.save(ctx)
}

// TravelTo moves the player to another region, clearing any current
// encounter.
func (g *Game) TravelTo(regionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	def, ok := g.content.Regions.Get(regionID)
	if !ok {
		return fmt.Errorf("traveling to %q: %w", regionID, ErrUnknownRegion)
	}
	g.battle.SetRegion(def, g.now())
	g.savePending = true
	return nil
}

// Attack performs one manual player attack.
func (g *Game) Attack() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	landed := g.battle.PlayerAttack(g.now())
	if landed {
		g.savePending = true
	}
	return landed
}

// ThrowBall starts a capture attempt with the best available item.
func (g *Game) ThrowBall() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	thrown := g.battle.TryCapture(g.now())
	if thrown {
		g.savePending = true
	}
	return thrown
}

// ToggleAutoAttack flips automatic attacking, reporting the new state.
func (g *Game) ToggleAutoAttack() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buffs.ToggleAutoAttack(g.now())
}

// SetActive switches the leading party member.
func (g *Game) SetActive(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.SetActive(id)
}

// MoveToParty promotes a reserve creature.
func (g *Game) MoveToParty(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.roster.MoveToParty(id); err != nil {
		return err
	}
	g.savePending = true
	return nil
}

// MoveToReserve demotes a party creature.
func (g *Game) MoveToReserve(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.roster.MoveToReserve(id); err != nil {
		return err
	}
	g.savePending = true
	return nil
}

// Release removes a creature from the roster permanently.
func (g *Game) Release(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.roster.Release(id); err != nil {
		return err
	}
	g.jobs.PruneMissing()
	g.savePending = true
	return nil
}

// AssignJob puts a creature to work on an idle job.
func (g *Game) AssignJob(jobID string, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.jobs.Assign(jobID, id, g.now()); err != nil {
		return err
	}
	g.unlocks.IdleJobs = true
	g.savePending = true
	return nil
}

// RemoveFromJob pulls a worker off an idle job.
func (g *Game) RemoveFromJob(jobID string, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.jobs.Remove(jobID, id); err != nil {
		return err
	}
	g.savePending = true
	return nil
}

// Unlocks returns the profile's feature gates.
func (g *Game) Unlocks() storage.Unlocks {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocks
}

// Roster exposes the creature collections. Callers must not retain the
// returned pointer across ticks without holding their own ordering.
func (g *Game) Roster() *creature.Roster {
	return g.roster
}

// Inventory exposes the item stacks.
func (g *Game) Inventory() *item.Inventory {
	return g.inv
}

// Jobs exposes the idle job engine.
func (g *Game) Jobs() *job.Engine {
	return g.jobs
}

// Battle exposes the encounter controller.
func (g *Game) Battle() *battle.Controller {
	return g.battle
}

// BattleLog returns the recent battle log lines.
func (g *Game) BattleLog() []battle.Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blog.Entries()
}

// save assembles and persists the snapshot. Callers hold g.mu.
func (g *Game) save(ctx context.Context) error {
	now := g.now()
	if err := g.store.Save(ctx, g.snapshot(now)); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	g.savePending = false
	g.lastSave = now
	return nil
}
