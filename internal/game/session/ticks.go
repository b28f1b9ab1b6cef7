package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/game/battle"
	"github.com/pokengu/idlemon/internal/game/creature"
	"github.com/pokengu/idlemon/internal/game/notify"
	"github.com/pokengu/idlemon/internal/game/tick"
)

// offlineThreshold separates live ticks from a catch-up after downtime.
// Battles do not fast-forward; idle jobs and berries do.
const offlineThreshold = time.Minute

// Register subscribes the simulation to the scheduler. Subscriber order
// is load-bearing: battle resolution runs before regen so a creature
// that faints this tick does not also heal, and autosave runs last so
// it captures everything the tick changed.
func (g *Game) Register(ctx context.Context, s *tick.Scheduler) {
	s.Subscribe("battle", g.battleTick)
	s.Subscribe("autoattack", g.autoAttackTick)
	s.Subscribe("regen", g.regenTick)
	s.Subscribe("jobs", g.jobsTick)
	s.Subscribe("fear", g.fearTick)
	s.Subscribe("berries", g.berriesTick)
	s.Subscribe("dedup", g.dedupTick)
	s.Subscribe("autosave", func(elapsed time.Duration) { g.autosaveTick(ctx, elapsed) })
}

func (g *Game) battleTick(elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if elapsed > offlineThreshold {
		// Encounters do not replay downtime. Restart the spawn timer so
		// the region comes back to life on the next live tick.
		g.battle.StartSpawnTimer(g.now())
		return
	}
	err := g.battle.Tick(g.now(), elapsed)
	if err == nil {
		return
	}
	if errors.Is(err, battle.ErrPartyWiped) {
		g.retreat()
		return
	}
	g.log.Error("battle tick failed", zap.Error(err))
}

// retreat pulls a wiped party back to the default region. Callers hold
// g.mu.
func (g *Game) retreat() {
	home := g.defaultRegion()
	g.battle.SetRegion(home, g.now())
	g.notifier.Notify(
		fmt.Sprintf("Your party was defeated! You retreat to %s to recover.", home.Name),
		notify.SeverityError, "party-wiped")
	g.savePending = true
}

func (g *Game) autoAttackTick(time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.buffs.ShouldAutoAttack(now) {
		return
	}
	if g.battle.PlayerAttack(now) {
		g.buffs.RecordAutoAttack(now)
		g.savePending = true
	}
}

func (g *Game) regenTick(elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.regenAccum += elapsed
	if g.regenAccum < g.cadence.StatusInterval {
		return
	}
	g.regenAccum = 0

	var inBattle *creature.Creature
	if g.battle.Wild() != nil {
		inBattle = g.roster.Active()
	}
	g.roster.Regen(g.now(), g.balance.RegenRate, inBattle)
}

func (g *Game) jobsTick(elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if elapsed > offlineThreshold {
		g.jobs.CatchUp(now, elapsed)
	} else {
		g.jobs.Tick(now, elapsed)
	}
}

func (g *Game) fearTick(elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fearAccum += elapsed
	if g.fearAccum < g.cadence.StatusInterval {
		return
	}
	g.fearAccum = 0

	now := g.now()
	current := g.battle.Region().ID
	for _, regionID := range g.fears.Tick(now) {
		def, ok := g.content.Regions.Get(regionID)
		if !ok {
			continue
		}
		g.notifier.Notify(
			fmt.Sprintf("The creatures of %s have calmed down.", def.Name),
			notify.SeverityInfo, "fear-lifted")
		if regionID == current {
			g.battle.StartSpawnTimer(now)
		}
	}
}

func (g *Game) berriesTick(time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tickBerries(g.now())
}

// dedupTick sweeps out duplicate creature instances left behind by a
// restore of overlapping saves. It only runs when the roster size moved
// since the last sweep.
func (g *Game) dedupTick(time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tickCount++
	if g.tickCount%g.cadence.DedupEvery != 0 {
		return
	}
	count := len(g.roster.All())
	if count == g.lastAllCount {
		return
	}
	if g.roster.Dedup() {
		g.jobs.PruneMissing()
		g.savePending = true
		g.log.Info("roster deduplicated",
			zap.Int("before", count),
			zap.Int("after", len(g.roster.All())))
	}
	g.lastAllCount = len(g.roster.All())
}

func (g *Game) autosaveTick(ctx context.Context, _ time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.savePending && now.Sub(g.lastSave) < g.cadence.SaveInterval {
		return
	}
	if err := g.save(ctx); err != nil {
		g.log.Warn("autosave failed", zap.Error(err))
	}
}
