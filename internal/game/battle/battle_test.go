package battle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pokengu/idlemon/internal/game/battle"
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

func battleSpecies() []catalog.Species {
	return []catalog.Species{
		{ID: "sparkit", Name: "Sparkit", Types: []combat.Type{combat.TypeElectric}},
		{ID: "puddle", Name: "Puddle", Types: []combat.Type{combat.TypeWater}},
	}
}

func meadow() region.Definition {
	return region.Definition{
		ID:         "meadow",
		Name:       "Sunny Meadow",
		MinLevel:   5,
		MaxLevel:   5,
		SpawnDelay: 2 * time.Second,
		Pool:       []region.SpawnEntry{{SpeciesID: "sparkit", Weight: 1}},
	}
}

func sanctuary() region.Definition {
	return region.Definition{
		ID:        "haven",
		Name:      "Haven",
		MinLevel:  1,
		MaxLevel:  1,
		Sanctuary: true,
	}
}

type fixture struct {
	ctrl   *battle.Controller
	roster *creature.Roster
	buffs  *buff.Set
	fears  *fear.Tracker
	inv    *item.Inventory
	events *notify.Recorder
	blog   *battle.Log
	src    *rng.FixedSource
}

func defaultConfig() battle.Config {
	return battle.Config{
		Tuning:              combat.DefaultTuning(),
		EnemyAttackCooldown: 5 * time.Second,
		FleeChance:          0.05,
		FleeDelay:           2 * time.Second,
		FaintRecovery:       30 * time.Second,
		SpawnFloor:          time.Second,
		SpawnDelayEvery:     10,
		SpawnDelay:          30 * time.Second,
	}
}

func newFixture(t *testing.T, cfg battle.Config, floats []float64) *fixture {
	t.Helper()
	species, err := catalog.New(battleSpecies())
	require.NoError(t, err)

	src := &rng.FixedSource{Floats: floats, Ints: []int{0}}
	roster := creature.NewRoster(6)
	active := creature.New(battleSpecies()[1], 10, false, combat.DefaultTuning(), src)
	roster.Add(active)

	f := &fixture{
		roster: roster,
		buffs:  buff.NewSet(buff.DefaultTuning()),
		fears:  fear.New(0, 0, 0),
		inv:    item.NewInventory(),
		events: &notify.Recorder{},
		blog:   battle.NewLog(),
		src:    src,
	}
	f.ctrl = battle.NewController(cfg, roster, f.buffs, f.fears, species, f.inv, f.events, f.blog, src, zap.NewNop())
	return f
}

// spawnWild drives the controller until a wild creature stands.
func spawnWild(t *testing.T, f *fixture, now time.Time) time.Time {
	t.Helper()
	f.ctrl.SetRegion(meadow(), now)
	now = now.Add(2 * time.Second)
	require.NoError(t, f.ctrl.Tick(now, 2*time.Second))
	require.NotNil(t, f.ctrl.Wild())
	return now
}

func logMessages(blog *battle.Log) []string {
	var out []string
	for _, e := range blog.Entries() {
		out = append(out, e.Message)
	}
	return out
}

func TestSpawnAfterCountdown(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := time.Now()
	f.ctrl.SetRegion(meadow(), now)
	require.Nil(t, f.ctrl.Wild())

	require.NoError(t, f.ctrl.Tick(now.Add(time.Second), time.Second))
	assert.Nil(t, f.ctrl.Wild(), "countdown not yet elapsed")

	require.NoError(t, f.ctrl.Tick(now.Add(2*time.Second), time.Second))
	wild := f.ctrl.Wild()
	require.NotNil(t, wild)
	assert.Equal(t, "sparkit", wild.Creature.SpeciesID)
	assert.Equal(t, 5, wild.Creature.Level)
	assert.False(t, wild.Creature.Shiny)
	assert.Contains(t, logMessages(f.blog), "A wild Sparkit (Lvl 5) appeared!")
}

func TestSanctuaryNeverSpawns(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := time.Now()
	f.ctrl.SetRegion(sanctuary(), now)
	require.NoError(t, f.ctrl.Tick(now.Add(time.Minute), time.Minute))
	assert.Nil(t, f.ctrl.Wild())
}

func TestFearSuppressedRegionDoesNotArm(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := time.Now()
	for i := 0; i < fear.DefaultThreshold; i++ {
		f.fears.RecordDefeat("meadow", now)
	}
	require.True(t, f.fears.Disabled("meadow", now))

	f.ctrl.SetRegion(meadow(), now)
	require.NoError(t, f.ctrl.Tick(now.Add(10*time.Second), 10*time.Second))
	assert.Nil(t, f.ctrl.Wild())
}

func TestQueuedSpawnTakesPriority(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := time.Now()
	f.ctrl.SetRegion(meadow(), now)
	require.NoError(t, f.ctrl.QueueSpawn("puddle"))

	now = now.Add(2 * time.Second)
	require.NoError(t, f.ctrl.Tick(now, 2*time.Second))
	wild := f.ctrl.Wild()
	require.NotNil(t, wild)
	assert.Equal(t, "puddle", wild.Creature.SpeciesID)
}

func TestQueueSpawnRejectsUnknownSpecies(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	assert.Error(t, f.ctrl.QueueSpawn("missingno"))
}

func TestFlyingEmblemShortensCountdown(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	require.NoError(t, f.buffs.Grant(buff.Buff{ID: "fe", Name: "Flying Emblem", Kind: buff.KindFlyingEmblem, Level: 200}))
	require.Greater(t, f.buffs.SpawnReduction(), 0.5)

	now := time.Now()
	f.ctrl.SetRegion(meadow(), now)
	require.NoError(t, f.ctrl.Tick(now.Add(time.Second), time.Second))
	assert.NotNil(t, f.ctrl.Wild(), "reduced countdown elapses within one second")
}

func TestPlayerAttackDamagesAndLocksOut(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := spawnWild(t, f, time.Now())
	wild := f.ctrl.Wild()
	startHP := wild.Creature.HP

	require.True(t, f.ctrl.PlayerAttack(now))
	assert.Less(t, wild.Creature.HP, startHP)

	assert.False(t, f.ctrl.PlayerAttack(now.Add(100*time.Millisecond)), "second attack inside the lockout drops")
	assert.True(t, f.ctrl.PlayerAttack(now.Add(300*time.Millisecond)))
}

func TestPlayerAttackWithoutTargetIsNoop(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	assert.False(t, f.ctrl.PlayerAttack(time.Now()))
}

func TestDefeatRestartsSpawnTimer(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := spawnWild(t, f, time.Now())
	f.ctrl.Wild().Creature.SetHP(1)

	require.True(t, f.ctrl.PlayerAttack(now))
	assert.Nil(t, f.ctrl.Wild())
	assert.Contains(t, logMessages(f.blog), "Sparkit fainted!")

	now = now.Add(2 * time.Second)
	require.NoError(t, f.ctrl.Tick(now, 2*time.Second))
	assert.NotNil(t, f.ctrl.Wild(), "next spawn follows the defeat")
}

func TestDefeatFeedsFearFactor(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := spawnWild(t, f, time.Now())
	f.ctrl.Wild().Creature.SetHP(1)
	require.True(t, f.ctrl.PlayerAttack(now))

	assert.Greater(t, f.fears.Pressure("meadow", now), 0.0)
}

func TestGuaranteedCaptureOnDefeat(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := spawnWild(t, f, time.Now())
	f.ctrl.ArmGuaranteedCapture()
	f.ctrl.Wild().Creature.SetHP(1)

	require.True(t, f.ctrl.PlayerAttack(now))
	assert.False(t, f.ctrl.GuaranteedCaptureArmed(), "flag is one-shot")
	require.Len(t, f.roster.All(), 2)
	captured := f.roster.All()[1]
	assert.Equal(t, "sparkit", captured.SpeciesID)
	assert.Equal(t, captured.MaxHP, captured.HP, "captured creature joins at full health")
	require.Len(t, f.events.Events, 1)
	assert.Equal(t, notify.SeveritySuccess, f.events.Events[0].Severity)
}

func TestEnemyAttackHonorsCooldown(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := spawnWild(t, f, time.Now())
	active := f.roster.Active()
	startHP := active.HP

	require.NoError(t, f.ctrl.EnemyAttack(now.Add(time.Second)))
	assert.Equal(t, startHP, active.HP, "cooldown still running")

	require.NoError(t, f.ctrl.EnemyAttack(now.Add(5*time.Second)))
	assert.Less(t, active.HP, startHP)
}

// TestFreshSpawnAttacksWithoutWarmup verifies a newly spawned wild swings
// on the next per-second check instead of idling through a full cooldown.
func TestFreshSpawnAttacksWithoutWarmup(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	active := f.roster.Active()
	startHP := active.HP

	spawnWild(t, f, time.Now())
	assert.Less(t, active.HP, startHP)
}

func TestEnemyAttackWipesLastFighter(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := spawnWild(t, f, time.Now())
	f.roster.Active().SetHP(1)

	err := f.ctrl.EnemyAttack(now.Add(5 * time.Second))
	assert.ErrorIs(t, err, battle.ErrPartyWiped)
	assert.True(t, f.roster.Active().Fainted())
}

func TestEnemyAttackSwitchesToNextFighter(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	backup := creature.New(battleSpecies()[1], 10, false, combat.DefaultTuning(), f.src)
	f.roster.Add(backup)

	now := spawnWild(t, f, time.Now())
	first := f.roster.Active()
	first.SetHP(1)

	require.NoError(t, f.ctrl.EnemyAttack(now.Add(5*time.Second)))
	assert.True(t, first.Fainted())
	assert.Same(t, backup, f.roster.Active())
	assert.Contains(t, logMessages(f.blog), "Go, Puddle!")
}

func TestRockEmblemBurnsPotionsToSurvive(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	require.NoError(t, f.buffs.Grant(buff.Buff{ID: "re", Name: "Rock Emblem", Kind: buff.KindRockEmblem, Level: 1}))
	potion := item.Definition{
		ID: "potion", Name: "Potion", Rarity: item.RarityCommon,
		Usable: true, Consumable: true, Effect: item.HealEffect{Value: 50},
	}
	require.NoError(t, f.inv.Add(potion, 4))

	now := spawnWild(t, f, time.Now())
	active := f.roster.Active()
	active.SetHP(1)

	require.NoError(t, f.ctrl.EnemyAttack(now.Add(5*time.Second)))
	assert.False(t, active.Fainted())
	assert.Greater(t, active.HP, 0)
	assert.Equal(t, 0, f.inv.Quantity("potion"), "all four potions burned")
}

func TestRockEmblemStunResistKeepsFighterUp(t *testing.T) {
	// Roll 0.4 against a 0.5 resist chance from high accrued progress.
	f := newFixture(t, defaultConfig(), []float64{0.4})
	require.NoError(t, f.buffs.Grant(buff.Buff{ID: "re", Name: "Rock Emblem", Kind: buff.KindRockEmblem, Level: 1}))
	snap := f.buffs.Snapshot()
	snap.StunProgress = 100
	require.NoError(t, f.buffs.Restore(snap))
	require.InDelta(t, 0.5, f.buffs.StunResistChance(), 1e-9)

	now := spawnWild(t, f, time.Now())
	active := f.roster.Active()
	active.SetHP(1)

	require.NoError(t, f.ctrl.EnemyAttack(now.Add(5*time.Second)))
	assert.False(t, active.Fainted())
	assert.Equal(t, active.MaxHP/10, active.HP)
	assert.Contains(t, logMessages(f.blog), "Rock Emblem protected Puddle from fainting!")
}

func TestCaptureConsumesItemOnSuccess(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	master := item.Definition{
		ID: "master-orb", Name: "Master Orb", Rarity: item.RarityLegendary,
		Usable: true, Consumable: true, Effect: item.CatchEffect{Rate: 1.0, Perfect: true},
	}
	require.NoError(t, f.inv.Add(master, 2))

	now := spawnWild(t, f, time.Now())
	require.True(t, f.ctrl.TryCapture(now))
	assert.True(t, f.ctrl.CapturePending())
	assert.Equal(t, 1, f.inv.Quantity("master-orb"), "item spends on the throw")

	now = now.Add(time.Second)
	require.NoError(t, f.ctrl.Tick(now, time.Second))
	assert.Nil(t, f.ctrl.Wild())
	assert.Equal(t, 1, f.inv.Quantity("master-orb"))
	require.Len(t, f.roster.All(), 2)
	assert.Equal(t, "sparkit", f.roster.All()[1].SpeciesID)
}

func TestCaptureFailureSpendsItemKeepsTarget(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	weak := item.Definition{
		ID: "cheap-orb", Name: "Cheap Orb", Rarity: item.RarityCommon,
		Usable: true, Consumable: true, Effect: item.CatchEffect{Rate: 0.01},
	}
	require.NoError(t, f.inv.Add(weak, 1))

	now := spawnWild(t, f, time.Now())
	require.True(t, f.ctrl.TryCapture(now))
	assert.Equal(t, 0, f.inv.Quantity("cheap-orb"), "the throw consumes the item, win or lose")

	now = now.Add(time.Second)
	require.NoError(t, f.ctrl.Tick(now, time.Second))
	assert.NotNil(t, f.ctrl.Wild())
	assert.Equal(t, 0, f.inv.Quantity("cheap-orb"))
	assert.Len(t, f.roster.All(), 1)
	assert.Contains(t, logMessages(f.blog), "Sparkit broke free!")
}

func TestPlainBallConsumedUpFront(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	f.ctrl.AddPlainBalls(1)

	now := spawnWild(t, f, time.Now())
	require.True(t, f.ctrl.TryCapture(now))
	assert.Equal(t, 0, f.ctrl.PlainBalls(), "plain balls spend on the throw")

	now = now.Add(time.Second)
	require.NoError(t, f.ctrl.Tick(now, time.Second))
	assert.NotNil(t, f.ctrl.Wild(), "low plain-ball odds miss against a healthy target")
	assert.Equal(t, 0, f.ctrl.PlainBalls())
}

func TestCaptureWithoutItemsNotifies(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := spawnWild(t, f, time.Now())

	assert.False(t, f.ctrl.TryCapture(now))
	require.Len(t, f.events.Events, 1)
	assert.Equal(t, notify.SeverityError, f.events.Events[0].Severity)
}

func TestSecondThrowWhilePendingDrops(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	f.ctrl.AddPlainBalls(2)
	now := spawnWild(t, f, time.Now())

	require.True(t, f.ctrl.TryCapture(now))
	assert.False(t, f.ctrl.TryCapture(now.Add(100*time.Millisecond)))
	assert.Equal(t, 1, f.ctrl.PlainBalls(), "only the first throw spent a ball")
}

func TestHurtWildFleesAndEscapes(t *testing.T) {
	cfg := defaultConfig()
	cfg.FleeChance = 1.0
	f := newFixture(t, cfg, []float64{0.5})
	now := spawnWild(t, f, time.Now())
	wild := f.ctrl.Wild()
	wild.Creature.SetHP(wild.Creature.MaxHP/2 - 1)

	now = now.Add(time.Second)
	require.NoError(t, f.ctrl.Tick(now, time.Second))
	require.True(t, wild.Fleeing)
	assert.Contains(t, logMessages(f.blog), "Wild Sparkit is trying to run away!")

	now = now.Add(time.Second)
	require.NoError(t, f.ctrl.Tick(now, time.Second))
	assert.NotNil(t, f.ctrl.Wild(), "flee delay not yet elapsed")

	now = now.Add(time.Second)
	require.NoError(t, f.ctrl.Tick(now, time.Second))
	assert.Nil(t, f.ctrl.Wild())
	assert.Contains(t, logMessages(f.blog), "Wild Sparkit ran away!")
}

func TestHealthyWildNeverFlees(t *testing.T) {
	cfg := defaultConfig()
	cfg.FleeChance = 1.0
	f := newFixture(t, cfg, []float64{0.5})
	now := spawnWild(t, f, time.Now())

	require.NoError(t, f.ctrl.Tick(now.Add(time.Second), time.Second))
	assert.False(t, f.ctrl.Wild().Fleeing)
}

func TestGuaranteedCaptureSuppressesFlee(t *testing.T) {
	cfg := defaultConfig()
	cfg.FleeChance = 1.0
	f := newFixture(t, cfg, []float64{0.5})
	now := spawnWild(t, f, time.Now())
	f.ctrl.ArmGuaranteedCapture()
	wild := f.ctrl.Wild()
	wild.Creature.SetHP(1)

	require.NoError(t, f.ctrl.Tick(now.Add(time.Second), time.Second))
	assert.False(t, wild.Fleeing)
}

func TestFleeAbortsPendingCapture(t *testing.T) {
	cfg := defaultConfig()
	cfg.FleeChance = 1.0
	cfg.FleeDelay = 500 * time.Millisecond
	f := newFixture(t, cfg, []float64{0.5})
	f.ctrl.AddPlainBalls(1)
	now := spawnWild(t, f, time.Now())
	f.ctrl.Wild().Creature.SetHP(1)

	now = now.Add(time.Second)
	require.NoError(t, f.ctrl.Tick(now, time.Second))
	require.True(t, f.ctrl.Wild().Fleeing)
	require.True(t, f.ctrl.TryCapture(now))

	// The target escapes before the throw resolves.
	now = now.Add(500 * time.Millisecond)
	require.NoError(t, f.ctrl.Tick(now, 500*time.Millisecond))
	require.Nil(t, f.ctrl.Wild())

	now = now.Add(500 * time.Millisecond)
	require.NoError(t, f.ctrl.Tick(now, 500*time.Millisecond))
	assert.Len(t, f.roster.All(), 1, "escaped target cannot be captured")
	assert.False(t, f.ctrl.CapturePending())
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	now := spawnWild(t, f, time.Now())
	require.NoError(t, f.ctrl.QueueSpawn("puddle"))
	f.ctrl.ArmGuaranteedCapture()
	f.ctrl.AddPlainBalls(3)

	snap := f.ctrl.Snapshot()

	regions, err := region.NewIndex([]region.Definition{meadow(), sanctuary()})
	require.NoError(t, err)

	g := newFixture(t, defaultConfig(), []float64{0.5})
	require.NoError(t, g.ctrl.Restore(snap, regions))
	assert.Equal(t, "meadow", g.ctrl.Region().ID)
	require.NotNil(t, g.ctrl.Wild())
	assert.Equal(t, f.ctrl.Wild().Creature.InstanceID, g.ctrl.Wild().Creature.InstanceID)
	assert.True(t, g.ctrl.GuaranteedCaptureArmed())
	assert.Equal(t, 3, g.ctrl.PlainBalls())
	assert.Equal(t, logMessages(f.blog), logMessages(g.blog))

	require.NoError(t, g.ctrl.Tick(now.Add(time.Minute), time.Minute))
}

func TestRestoreRejectsUnknownRegion(t *testing.T) {
	f := newFixture(t, defaultConfig(), []float64{0.5})
	spawnWild(t, f, time.Now())
	snap := f.ctrl.Snapshot()
	snap.RegionID = "atlantis"

	regions, err := region.NewIndex([]region.Definition{meadow()})
	require.NoError(t, err)

	g := newFixture(t, defaultConfig(), []float64{0.5})
	assert.Error(t, g.ctrl.Restore(snap, regions))
	assert.Equal(t, "", g.ctrl.Region().ID, "failed restore leaves state untouched")
}

func TestLogCapsAtFifty(t *testing.T) {
	blog := battle.NewLog()
	for i := 0; i < 120; i++ {
		blog.Append(battle.SourceSystem, "line")
	}
	assert.Len(t, blog.Entries(), 50)
}
