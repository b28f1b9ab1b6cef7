package session

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/game/item"
	"github.com/pokengu/idlemon/internal/storage"
)

// snapshot assembles the full persisted state. Callers hold g.mu.
func (g *Game) snapshot(now time.Time) *storage.Snapshot {
	stacks := g.inv.Stacks()
	inventory := make([]storage.ItemStack, len(stacks))
	for i, s := range stacks {
		inventory[i] = storage.ItemStack{ItemID: s.Def.ID, Quantity: s.Quantity}
	}
	return &storage.Snapshot{
		SavedAt:     now,
		Party:       g.roster.Party(),
		Reserve:     g.roster.Reserve(),
		ActiveIndex: g.roster.ActiveIndex(),
		Unlocks:     g.unlocks,
		Inventory:   inventory,
		Buffs:       g.buffs.Snapshot(),
		Fear:        g.fears.Snapshot(),
		Jobs:        g.jobs.Snapshot(),
		Battle:      g.battle.Snapshot(),
		BerryTasks:  append([]storage.BerryTask(nil), g.berries...),
	}
}

// restore applies a loaded snapshot. Callers hold g.mu.
//
// Postcondition: On error the Game may be partially restored and must
// not be used; callers should fail startup.
func (g *Game) restore(snap *storage.Snapshot) error {
	if err := g.roster.Restore(snap.Party, snap.Reserve, snap.ActiveIndex); err != nil {
		return fmt.Errorf("roster: %w", err)
	}
	if err := g.inv.Restore(g.resolveStacks(snap.Inventory)); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}
	if err := g.buffs.Restore(snap.Buffs); err != nil {
		return fmt.Errorf("buffs: %w", err)
	}
	g.fears.Restore(snap.Fear)
	g.jobs.Restore(snap.Jobs)
	g.jobs.PruneMissing()
	if err := g.battle.Restore(snap.Battle, g.content.Regions); err != nil {
		return fmt.Errorf("battle: %w", err)
	}
	g.unlocks = snap.Unlocks
	g.berries = append([]storage.BerryTask(nil), snap.BerryTasks...)
	g.lastAllCount = len(g.roster.All())
	g.lastSave = snap.SavedAt
	return nil
}

// resolveStacks rebinds persisted stacks to the loaded item content.
// Stacks whose item no longer exists are dropped with a log line so a
// content change never bricks a save.
func (g *Game) resolveStacks(stacks []storage.ItemStack) []item.Stack {
	out := make([]item.Stack, 0, len(stacks))
	for _, s := range stacks {
		def, ok := g.content.Items[s.ItemID]
		if !ok {
			g.log.Warn("dropping stack of unknown item", zap.String("item", s.ItemID))
			continue
		}
		out = append(out, item.Stack{Def: def, Quantity: s.Quantity})
	}
	return out
}
