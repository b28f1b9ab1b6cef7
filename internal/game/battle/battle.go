// Package battle runs the encounter loop: spawn countdown, the player
// and enemy attack exchange, flee sequences, and capture attempts.
package battle

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/game/buff"
	"github.com/pokengu/idlemon/internal/game/catalog"
	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/creature"
	"github.com/pokengu/idlemon/internal/game/fear"
	"github.com/pokengu/idlemon/internal/game/item"
	"github.com/pokengu/idlemon/internal/game/notify"
	"github.com/pokengu/idlemon/internal/game/region"
	"github.com/pokengu/idlemon/internal/game/rng"
)

const (
	// baseXPPerAttack is the experience one attack grants before buffs.
	baseXPPerAttack = 1
	// attackLockout is the animation pause during which a second player
	// attack is a no-op.
	attackLockout = 200 * time.Millisecond
	// captureDelay is the pause between throwing and resolving a capture.
	captureDelay = time.Second
	// shinyChance rolls once per wild spawn.
	shinyChance = 1.0 / 1000
	// survivePotionCount is how many of the weakest healing item the
	// lethal-hit save burns at once.
	survivePotionCount = 4
	// stunResistHPFraction is the health remaining after a resisted faint.
	stunResistHPFraction = 0.1
	// checkCadence spaces out the per-second flee and enemy attack checks.
	checkCadence = time.Second
)

// ErrPartyWiped signals that no healthy party member remains to fight.
// The caller decides what happens next, typically a retreat to a
// sanctuary region.
var ErrPartyWiped = errors.New("no healthy party member remains")

// Config carries the combat pacing knobs, sourced from the balance
// configuration.
type Config struct {
	Tuning              combat.Tuning
	EnemyAttackCooldown time.Duration
	FleeChance          float64
	FleeDelay           time.Duration
	FaintRecovery       time.Duration
	SpawnFloor          time.Duration
	SpawnDelayEvery     int
	SpawnDelay          time.Duration
}

// Wild is the current encounter target.
type Wild struct {
	Creature *creature.Creature
	// LastAttack gates the wild's own attack cadence, independent of the
	// scheduler frequency.
	LastAttack time.Time
	Fleeing    bool
	FleeAt     time.Time
}

// captureAttempt correlates a throw with its delayed resolution. The
// wild instance ID guards against resolving against a different target.
type captureAttempt struct {
	wildID    uuid.UUID
	chance    float64
	resolveAt time.Time
}

// Controller owns the battle state machine. It is not safe for
// concurrent use; the simulation drives it from the tick loop only.
type Controller struct {
	cfg      Config
	roster   *creature.Roster
	buffs    *buff.Set
	fears    *fear.Tracker
	species  *catalog.Catalog
	inv      *item.Inventory
	notifier notify.Notifier
	blog     *Log
	src      rng.Source
	log      *zap.Logger

	region     region.Definition
	wild       *Wild
	countdown  time.Duration
	spawnArmed bool
	// queue holds forced next spawns, consumed before the weighted draw.
	queue      []string
	guaranteed bool
	plainBalls int

	attackLockedUntil time.Time
	capture           *captureAttempt
	checkAccum        time.Duration
}

// NewController builds a Controller. The notifier may be nil.
func NewController(cfg Config, roster *creature.Roster, buffs *buff.Set, fears *fear.Tracker, species *catalog.Catalog, inv *item.Inventory, notifier notify.Notifier, blog *Log, src rng.Source, log *zap.Logger) *Controller {
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &Controller{
		cfg:      cfg,
		roster:   roster,
		buffs:    buffs,
		fears:    fears,
		species:  species,
		inv:      inv,
		notifier: notifier,
		blog:     blog,
		src:      src,
		log:      log,
	}
}

// Wild returns the current encounter target, nil when idle.
func (c *Controller) Wild() *Wild {
	return c.wild
}

// Region returns the region the controller is fighting in.
func (c *Controller) Region() region.Definition {
	return c.region
}

// SetRegion moves the encounter loop to a new region, clearing any
// current target and pending capture.
func (c *Controller) SetRegion(def region.Definition, now time.Time) {
	c.region = def
	c.wild = nil
	c.capture = nil
	c.StartSpawnTimer(now)
}

// QueueSpawn forces the species to spawn next, ahead of the weighted
// draw. Unknown species are rejected.
func (c *Controller) QueueSpawn(speciesID string) error {
	if _, ok := c.species.Get(speciesID); !ok {
		return fmt.Errorf("queueing spawn: unknown species %q", speciesID)
	}
	c.queue = append(c.queue, speciesID)
	return nil
}

// ArmGuaranteedCapture arms the one-shot flag that converts the next
// defeat into a capture and suppresses fleeing until consumed.
func (c *Controller) ArmGuaranteedCapture() {
	c.guaranteed = true
}

// GuaranteedCaptureArmed reports whether the one-shot flag is armed.
func (c *Controller) GuaranteedCaptureArmed() bool {
	return c.guaranteed
}

// AddPlainBalls grants n fallback capture balls.
func (c *Controller) AddPlainBalls(n int) {
	c.plainBalls += n
}

// PlainBalls returns the fallback ball count.
func (c *Controller) PlainBalls() int {
	return c.plainBalls
}

// StartSpawnTimer arms the countdown to the next wild spawn. Sanctuary
// regions and fear-suppressed regions never arm.
func (c *Controller) StartSpawnTimer(now time.Time) {
	c.spawnArmed = false
	if c.region.Sanctuary {
		return
	}
	if c.fears.Disabled(c.region.ID, now) {
		return
	}

	delay := c.region.SpawnDelay
	if reduction := c.buffs.SpawnReduction(); reduction > 0 {
		delay = time.Duration(float64(delay) * (1 - reduction))
		if delay < c.cfg.SpawnFloor {
			delay = c.cfg.SpawnFloor
		}
	}
	if c.buffs.ShouldDelaySpawn(c.cfg.SpawnDelayEvery) {
		delay = c.cfg.SpawnDelay
		c.buffs.ResetDefeatCounter(c.cfg.SpawnDelayEvery)
		c.blog.Append(SourceSystem, "The area seems quiet after defeating many creatures...")
	}

	c.countdown = delay
	c.spawnArmed = true
}

// Tick advances the encounter loop: it resolves due captures and flee
// sequences, counts the spawn timer down, and runs the per-second enemy
// attack and flee checks.
//
// Postcondition: Returns ErrPartyWiped when an enemy attack downs the
// last healthy party member; all other paths return nil.
func (c *Controller) Tick(now time.Time, elapsed time.Duration) error {
	if c.capture != nil && !now.Before(c.capture.resolveAt) {
		c.resolveCapture(now)
	}

	if c.wild != nil && c.wild.Fleeing && !now.Before(c.wild.FleeAt) {
		c.blog.Append(SourceSystem, fmt.Sprintf("Wild %s ran away!", c.wild.Creature.Name))
		c.wild = nil
		c.StartSpawnTimer(now)
	}

	if c.wild == nil && c.spawnArmed {
		c.countdown -= elapsed
		if c.countdown <= 0 {
			c.spawnArmed = false
			c.spawn(now)
		}
	}

	c.checkAccum += elapsed
	for c.checkAccum >= checkCadence {
		c.checkAccum -= checkCadence
		c.maybeFlee(now)
		if err := c.EnemyAttack(now); err != nil {
			return err
		}
	}
	return nil
}

// PlayerAttack performs one player attack against the wild target.
// Attacks during the animation lockout are dropped.
//
// Postcondition: Returns true iff the attack landed.
func (c *Controller) PlayerAttack(now time.Time) bool {
	if c.wild == nil {
		return false
	}
	active := c.roster.Active()
	if active == nil || !active.Healthy() {
		return false
	}
	if now.Before(c.attackLockedUntil) {
		return false
	}
	c.attackLockedUntil = now.Add(attackLockout)

	c.buffs.RegisterAttack(now, active.InstanceID, active.Level, c.region.MaxLevel)

	xp := int(math.Floor(float64(baseXPPerAttack+c.buffs.TotalXPBonus()) * c.buffs.FireRateMultiplier()))
	if active.GainXP(xp, c.cfg.Tuning, c.src) {
		c.announceLevelUp(active)
	}
	c.shareXP(active, xp)

	eff, verdict := combat.Effectiveness(active.Types, c.wild.Creature.Types)
	damage := c.cfg.Tuning.Damage(combat.DamageParams{
		Attack:        active.Attack,
		Defense:       c.wild.Creature.Defense,
		AttackerLevel: active.Level,
		DefenderLevel: c.wild.Creature.Level,
		Effectiveness: eff,
	}, c.src)
	c.wild.Creature.SetHP(c.wild.Creature.HP - damage)
	c.blog.Append(SourcePlayer, attackLine(active.Name, c.wild.Creature.Name, damage, verdict))

	if c.wild.Creature.HP == 0 {
		c.resolveDefeat(active, now)
	}
	return true
}

// resolveDefeat handles the wild target reaching zero HP from a player
// attack.
func (c *Controller) resolveDefeat(active *creature.Creature, now time.Time) {
	defeated := c.wild.Creature

	if active.GainXP(combat.XPGain(active.Level, defeated.Level), c.cfg.Tuning, c.src) {
		c.announceLevelUp(active)
	}
	c.blog.Append(SourceSystem, fmt.Sprintf("%s gained XP from defeating %s!", active.Name, defeated.Name))

	c.buffs.RegisterDefeat(c.region.ID)
	if c.fears.RecordDefeat(c.region.ID, now) {
		c.blog.Append(SourceSystem, "The creatures in this area have become too frightened to appear!")
		c.notifier.Notify(
			fmt.Sprintf("Fear factor activated in %s! Creatures will avoid this area for a while.", c.region.Name),
			notify.SeverityWarning, "fear:"+c.region.ID)
	}

	if c.guaranteed {
		c.guaranteed = false
		captured := defeated.Clone()
		captured.SetHP(captured.MaxHP)
		c.roster.Add(captured)
		c.blog.Append(SourceSystem, fmt.Sprintf("%s fainted! The contract seals it - guaranteed capture!", defeated.Name))
		c.notifier.Notify("Contract used! Creature captured!", notify.SeveritySuccess, "")
	} else {
		c.blog.Append(SourceSystem, fmt.Sprintf("%s fainted!", defeated.Name))
	}

	c.wild = nil
	c.capture = nil
	c.StartSpawnTimer(now)
}

// EnemyAttack lets the wild target attack if its own cooldown allows.
//
// Postcondition: Returns ErrPartyWiped when the hit downs the last
// healthy party member.
func (c *Controller) EnemyAttack(now time.Time) error {
	if c.wild == nil || c.wild.Fleeing {
		return nil
	}
	active := c.roster.Active()
	if active == nil || !active.Healthy() {
		return nil
	}
	if now.Sub(c.wild.LastAttack) < c.cfg.EnemyAttackCooldown {
		return nil
	}
	c.wild.LastAttack = now

	attacker := c.wild.Creature
	eff, verdict := combat.Effectiveness(attacker.Types, active.Types)
	damage := c.cfg.Tuning.Damage(combat.DamageParams{
		Attack:        attacker.Attack,
		Defense:       active.Defense,
		AttackerLevel: attacker.Level,
		DefenderLevel: active.Level,
		Enemy:         true,
		Effectiveness: eff,
	}, c.src)

	if active.HP <= damage && c.buffs.Has(buff.KindRockEmblem) {
		if c.bulkHeal(active) {
			active.SetHP(active.HP - damage)
			c.blog.Append(SourceEnemy, attackLine(attacker.Name, active.Name, damage, verdict))
			if active.HP == 0 {
				return c.faintActive(active, now)
			}
			return nil
		}
		if c.src.Float64() < c.buffs.StunResistChance() {
			minHP := int(math.Max(1, math.Floor(float64(active.MaxHP)*stunResistHPFraction)))
			actual := active.HP - minHP
			active.SetHP(minHP)
			c.blog.Append(SourceSystem, fmt.Sprintf("Rock Emblem protected %s from fainting!", active.Name))
			c.blog.Append(SourceEnemy, attackLine(attacker.Name, active.Name, actual, verdict))
			return nil
		}
	}

	active.SetHP(active.HP - damage)
	c.blog.Append(SourceEnemy, attackLine(attacker.Name, active.Name, damage, verdict))
	if active.HP == 0 {
		return c.faintActive(active, now)
	}
	return nil
}

// bulkHeal burns the weakest healing items to keep the active creature
// standing, if at least survivePotionCount are stocked in total.
func (c *Controller) bulkHeal(active *creature.Creature) bool {
	heals := c.inv.Heals()
	total := 0
	for _, s := range heals {
		total += s.Quantity
	}
	if total < survivePotionCount {
		return false
	}

	c.blog.Append(SourceSystem, fmt.Sprintf("Rock Emblem activated! Using %s to prevent fainting!", heals[0].Def.Name))
	remaining := survivePotionCount
	for _, s := range heals {
		use := s.Quantity
		if use > remaining {
			use = remaining
		}
		heal := s.Def.Effect.(item.HealEffect).Value
		for i := 0; i < use; i++ {
			active.Heal(heal)
		}
		if err := c.inv.Remove(s.Def.ID, use); err != nil {
			c.log.Warn("consuming heal item failed", zap.String("item", s.Def.ID), zap.Error(err))
		}
		remaining -= use
		if remaining == 0 {
			break
		}
	}
	return true
}

// faintActive marks the active creature down and switches forward.
func (c *Controller) faintActive(active *creature.Creature, now time.Time) error {
	active.Faint(now, c.cfg.FaintRecovery)
	c.blog.Append(SourceSystem, fmt.Sprintf("%s fainted!", active.Name))

	if next := c.roster.NextAvailable(); next != nil {
		if err := c.roster.SetActive(next.InstanceID); err == nil {
			c.blog.Append(SourcePlayer, fmt.Sprintf("Go, %s!", next.Name))
			return nil
		}
	}
	return ErrPartyWiped
}

// TryCapture throws a capture item at the wild target. The roll
// resolves after a short delay; a second attempt before then is a
// no-op.
//
// Postcondition: Returns true iff a throw was started.
func (c *Controller) TryCapture(now time.Time) bool {
	if c.wild == nil || c.capture != nil {
		return false
	}

	var params combat.CaptureParams
	itemName := ""
	if stacks := c.inv.CatchItems(); len(stacks) > 0 {
		// The item is consumed at the throw, win or lose.
		catch := stacks[0].Def.Effect.(item.CatchEffect)
		params = combat.CaptureParams{Rate: catch.Rate, Harsh: catch.Harsh, Perfect: catch.Perfect}
		itemName = stacks[0].Def.Name
		if err := c.inv.Remove(stacks[0].Def.ID, 1); err != nil {
			c.log.Warn("consuming capture item failed", zap.String("item", stacks[0].Def.ID), zap.Error(err))
		}
	} else if c.plainBalls > 0 {
		// The fallback ball is likewise consumed up front.
		c.plainBalls--
		params = combat.CaptureParams{Rate: c.cfg.Tuning.PlainBallRate, Harsh: true}
		itemName = "Plain Ball"
	} else {
		c.notifier.Notify("You don't have any capture items!", notify.SeverityError, "")
		return false
	}

	target := c.wild.Creature
	c.blog.Append(SourceSystem, fmt.Sprintf("Threw a %s at %s!", itemName, target.Name))

	hpPercent := float64(target.HP) / float64(target.MaxHP) * 100
	c.capture = &captureAttempt{
		wildID:    target.InstanceID,
		chance:    c.cfg.Tuning.CaptureChance(params, hpPercent, target.Level),
		resolveAt: now.Add(captureDelay),
	}
	return true
}

// resolveCapture rolls a pending capture attempt. The target must still
// be the one the throw correlated with; otherwise the attempt aborts
// without touching state.
func (c *Controller) resolveCapture(now time.Time) {
	attempt := c.capture
	c.capture = nil
	if c.wild == nil || c.wild.Creature.InstanceID != attempt.wildID {
		return
	}

	target := c.wild.Creature
	if c.src.Float64() <= attempt.chance {
		c.blog.Append(SourceSystem, fmt.Sprintf("Caught %s!", target.Name))
		c.roster.Add(target.Clone())
		c.wild = nil
		c.StartSpawnTimer(now)
		return
	}
	c.blog.Append(SourceSystem, fmt.Sprintf("%s broke free!", target.Name))
}

// CapturePending reports whether a throw is awaiting resolution.
func (c *Controller) CapturePending() bool {
	return c.capture != nil
}

// spawn draws and instantiates the next wild creature.
func (c *Controller) spawn(now time.Time) {
	var speciesID string
	forced := false
	if len(c.queue) > 0 {
		speciesID = c.queue[0]
		c.queue = c.queue[1:]
		forced = true
	} else {
		drawn, err := region.Draw(c.region.Pool, c.src)
		if err != nil {
			c.log.Warn("spawn draw failed", zap.String("region", c.region.ID), zap.Error(err))
			return
		}
		speciesID = drawn
	}

	species, ok := c.species.Get(speciesID)
	if !ok {
		// Tolerate a stale pool entry by skipping the spawn.
		c.log.Warn("species missing from catalog", zap.String("species", speciesID))
		c.StartSpawnTimer(now)
		return
	}

	level := c.region.RollLevel(c.src)
	shiny := c.src.Float64() < shinyChance
	wild := creature.New(species, level, shiny, c.cfg.Tuning, c.src)
	// Seed the cooldown as already elapsed so the wild attacks on the
	// next per-second check instead of idling for a full cooldown.
	c.wild = &Wild{Creature: wild, LastAttack: now.Add(-c.cfg.EnemyAttackCooldown)}

	if forced {
		c.blog.Append(SourceSystem, fmt.Sprintf("A %s appears from the seeker stone's power!", species.Name))
	}
	shinyText := ""
	if shiny {
		shinyText = " shiny"
		c.notifier.Notify(fmt.Sprintf("A shiny %s appeared!", species.Name), notify.SeveritySuccess, "")
	}
	c.blog.Append(SourceSystem, fmt.Sprintf("A wild%s %s (Lvl %d) appeared!", shinyText, species.Name, level))
}

// maybeFlee rolls the flee chance for a hurt wild target.
func (c *Controller) maybeFlee(now time.Time) {
	if c.wild == nil || c.wild.Fleeing || c.guaranteed {
		return
	}
	target := c.wild.Creature
	if target.HP >= target.MaxHP/2 {
		return
	}
	if c.src.Float64() < c.cfg.FleeChance {
		c.wild.Fleeing = true
		c.wild.FleeAt = now.Add(c.cfg.FleeDelay)
		c.blog.Append(SourceSystem, fmt.Sprintf("Wild %s is trying to run away!", target.Name))
	}
}

// shareXP spreads a cut of attack XP to the rest of the party when the
// share buff is active.
func (c *Controller) shareXP(active *creature.Creature, earned int) {
	if !c.buffs.Has(buff.KindWaterEmblem) {
		return
	}
	shared := int(math.Floor(float64(earned) * c.buffs.XPShareMultiplier()))
	if shared <= 0 {
		return
	}
	count := 0
	for _, member := range c.roster.Party() {
		if member == active || member.Fainted() {
			continue
		}
		if member.GainXP(shared, c.cfg.Tuning, c.src) {
			c.announceLevelUp(member)
		}
		count++
	}
	if count > 0 {
		c.blog.Append(SourceSystem, fmt.Sprintf("Water Emblem shared %d XP with %d party member(s)!", shared, count))
	}
}

func (c *Controller) announceLevelUp(member *creature.Creature) {
	c.blog.Append(SourceSystem, fmt.Sprintf("%s reached level %d!", member.Name, member.Level))
	c.notifier.Notify(fmt.Sprintf("%s reached level %d!", member.Name, member.Level), notify.SeveritySuccess, "level-up:"+member.InstanceID.String())
}

func attackLine(attacker, defender string, damage int, verdict combat.Verdict) string {
	line := fmt.Sprintf("%s attacks %s for %d damage!", attacker, defender, damage)
	if phrase := verdict.String(); phrase != "" {
		line += " " + phrase
	}
	return line
}
