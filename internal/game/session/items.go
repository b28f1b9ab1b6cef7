package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/game/creature"
	"github.com/pokengu/idlemon/internal/game/item"
	"github.com/pokengu/idlemon/internal/game/notify"
	"github.com/pokengu/idlemon/internal/game/region"
	"github.com/pokengu/idlemon/internal/storage"
)

var (
	// ErrNeedsTarget is returned when an item requires an explicit target
	// and must go through its dedicated entry point.
	ErrNeedsTarget = errors.New("item requires a target")
	// ErrNotUsable is returned for items that cannot be activated.
	ErrNotUsable = errors.New("item is not usable")
)

// UseItem activates an item with no explicit target: healing, lure
// berries, and fear wards. Catch items go through ThrowBall; spawn
// selectors and slot expanders through their targeted entry points.
func (g *Game) UseItem(itemID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	stack, err := g.usableStack(itemID)
	if err != nil {
		return err
	}

	switch eff := stack.Def.Effect.(type) {
	case item.HealEffect:
		return g.useHeal(stack.Def, eff)
	case item.CatchEffect:
		// The battle controller picks the weakest catch item itself.
		if !g.battle.TryCapture(g.now()) {
			return errors.New("no capture attempt possible right now")
		}
		g.savePending = true
		return nil
	case item.AutoCatchEffect:
		return g.useBerry(stack.Def, eff)
	case item.SpecialEffect:
		return g.useSpecial(stack.Def, eff)
	default:
		return fmt.Errorf("using %q: %w", itemID, ErrNotUsable)
	}
}

// UseSpawnSelector consumes a choose-next-spawn item and queues the
// chosen species as the next wild encounter.
func (g *Game) UseSpawnSelector(itemID, speciesID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	stack, err := g.usableStack(itemID)
	if err != nil {
		return err
	}
	eff, ok := stack.Def.Effect.(item.SpecialEffect)
	if !ok || eff.Kind != item.SpecialChooseNextSpawn {
		return fmt.Errorf("using %q as spawn selector: %w", itemID, ErrNotUsable)
	}
	if err := g.battle.QueueSpawn(speciesID); err != nil {
		return err
	}
	g.consume(stack.Def)
	species, _ := g.content.Species.Get(speciesID)
	g.notifier.Notify(fmt.Sprintf("Used %s! A %s will appear next.", stack.Def.Name, species.Name), notify.SeveritySuccess, "")
	g.savePending = true
	return nil
}

// UseSlotExpander consumes an expand-job-slot item and raises the
// worker capacity of the chosen job by one.
func (g *Game) UseSlotExpander(itemID, jobID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	stack, err := g.usableStack(itemID)
	if err != nil {
		return err
	}
	eff, ok := stack.Def.Effect.(item.SpecialEffect)
	if !ok || eff.Kind != item.SpecialExpandJobSlot {
		return fmt.Errorf("using %q as slot expander: %w", itemID, ErrNotUsable)
	}
	if err := g.jobs.ExpandSlots(jobID); err != nil {
		return err
	}
	g.consume(stack.Def)
	g.notifier.Notify(fmt.Sprintf("Used %s! %s can now hold %d workers.", stack.Def.Name, g.content.Jobs[jobID].Name, g.jobs.SlotCap(jobID)), notify.SeveritySuccess, "")
	g.savePending = true
	return nil
}

func (g *Game) useHeal(def item.Definition, eff item.HealEffect) error {
	active := g.roster.Active()
	if active == nil {
		return errors.New("no active creature to heal")
	}
	healed := active.Heal(eff.Value)
	g.consume(def)
	g.notifier.Notify(fmt.Sprintf("Used %s on %s! Healed %d HP.", def.Name, active.Name, healed), notify.SeveritySuccess, "")
	g.savePending = true
	return nil
}

// useBerry schedules a passive catch attempt in the current region.
func (g *Game) useBerry(def item.Definition, eff item.AutoCatchEffect) error {
	reg := g.battle.Region()
	if reg.ID == "" {
		return errors.New("no current region for the berry")
	}
	g.consume(def)
	g.berries = append(g.berries, storage.BerryTask{
		ID:       uuid.New().String(),
		RegionID: reg.ID,
		ItemName: def.Name,
		EndsAt:   g.now().Add(eff.Duration),
	})
	g.notifier.Notify(
		fmt.Sprintf("Used %s in %s. It will attract a creature in %s.", def.Name, reg.Name, formatDuration(eff.Duration)),
		notify.SeveritySuccess, "")
	g.savePending = true
	return nil
}

func (g *Game) useSpecial(def item.Definition, eff item.SpecialEffect) error {
	switch eff.Kind {
	case item.SpecialChooseNextSpawn, item.SpecialExpandJobSlot:
		return fmt.Errorf("using %q: %w", def.ID, ErrNeedsTarget)
	case item.SpecialResetFearFactor:
		// Reset first so the guaranteed capture arms against a live region.
		reg := g.battle.Region()
		g.fears.Reset(reg.ID)
		g.battle.ArmGuaranteedCapture()
		g.battle.StartSpawnTimer(g.now())
		g.consume(def)
		g.notifier.Notify(fmt.Sprintf("Used %s! Fear factor reset and guaranteed capture enabled!", def.Name), notify.SeveritySuccess, "")
		g.savePending = true
		return nil
	default:
		return fmt.Errorf("using %q: unsupported special effect %q", def.ID, eff.Kind)
	}
}

// BerryTasks returns the scheduled passive catch attempts.
func (g *Game) BerryTasks() []storage.BerryTask {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]storage.BerryTask(nil), g.berries...)
}

// CancelBerryTask drops a scheduled berry task without a catch.
func (g *Game) CancelBerryTask(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, task := range g.berries {
		if task.ID == id {
			g.berries = append(g.berries[:i], g.berries[i+1:]...)
			g.savePending = true
			return true
		}
	}
	return false
}

// tickBerries resolves due berry tasks. Callers hold g.mu.
func (g *Game) tickBerries(now time.Time) {
	kept := g.berries[:0]
	for _, task := range g.berries {
		if now.Before(task.EndsAt) {
			kept = append(kept, task)
			continue
		}
		g.completeBerry(task)
		g.savePending = true
	}
	g.berries = kept
}

// completeBerry always catches: it draws from the region's berry pool,
// falling back to the hunting pool.
func (g *Game) completeBerry(task storage.BerryTask) {
	reg, ok := g.content.Regions.Get(task.RegionID)
	if !ok {
		g.log.Warn("berry task region missing", zap.String("region", task.RegionID))
		return
	}
	pool := reg.BerryPool
	if len(pool) == 0 {
		pool = reg.Pool
	}
	speciesID, err := region.Draw(pool, g.src)
	if err != nil {
		g.notifier.Notify(fmt.Sprintf("No creature found for the berry in %s!", reg.Name), notify.SeverityWarning, "")
		return
	}
	species, ok := g.content.Species.Get(speciesID)
	if !ok {
		g.log.Warn("berry draw species missing from catalog", zap.String("species", speciesID))
		return
	}

	level := reg.RollLevel(g.src)
	caught := creature.New(species, level, false, g.tuning, g.src)
	g.roster.Add(caught)
	g.unlocks.Pokedex = true
	g.unlocks.Inventory = true
	g.notifier.Notify(
		fmt.Sprintf("Your %s caught a wild %s (Lvl %d) in %s!", task.ItemName, species.Name, level, reg.Name),
		notify.SeveritySuccess, "")
	g.savePending = true
}

// usableStack fetches a held, usable item stack. Callers hold g.mu.
func (g *Game) usableStack(itemID string) (item.Stack, error) {
	stack, ok := g.inv.Get(itemID)
	if !ok {
		return item.Stack{}, fmt.Errorf("using %q: %w", itemID, ErrUnknownItem)
	}
	if !stack.Def.Usable {
		return item.Stack{}, fmt.Errorf("using %q: %w", itemID, ErrNotUsable)
	}
	return stack, nil
}

// consume burns one unit of a consumable. Callers hold g.mu.
func (g *Game) consume(def item.Definition) {
	if !def.Consumable {
		return
	}
	if err := g.inv.Remove(def.ID, 1); err != nil {
		g.log.Warn("consuming item failed", zap.Error(err))
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
