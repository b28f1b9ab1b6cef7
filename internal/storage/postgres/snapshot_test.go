package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokengu/idlemon/internal/game/battle"
	"github.com/pokengu/idlemon/internal/game/combat"
	"github.com/pokengu/idlemon/internal/game/creature"
	"github.com/pokengu/idlemon/internal/storage"
	"github.com/pokengu/idlemon/internal/storage/postgres"
	"github.com/pokengu/idlemon/internal/testutil"
)

func testSnapshot(savedAt time.Time) *storage.Snapshot {
	starter := &creature.Creature{
		InstanceID: uuid.New(),
		SpeciesID:  "sparkit",
		Name:       "Sparkit",
		Types:      []combat.Type{combat.TypeElectric},
		Level:      8,
		XPToNext:   2262,
		HP:         180,
		MaxHP:      200,
		Attack:     25,
		Defense:    150,
	}
	return &storage.Snapshot{
		SavedAt:     savedAt,
		Party:       []*creature.Creature{starter},
		ActiveIndex: 0,
		Unlocks:     storage.Unlocks{Pokedex: true},
		Inventory:   []storage.ItemStack{{ItemID: "potion", Quantity: 3}},
		Battle: battle.Snapshot{
			RegionID:   "meadow",
			Countdown:  2 * time.Second,
			SpawnArmed: true,
			PlainBalls: 10,
			LogEntries: []battle.Entry{
				{Message: "A wild Sparkit (Lvl 5) appeared!", Source: battle.SourceSystem, At: savedAt},
			},
		},
		BerryTasks: []storage.BerryTask{
			{ID: "task-1", RegionID: "meadow", ItemName: "Razz Berry", EndsAt: savedAt.Add(time.Hour)},
		},
	}
}

func TestSnapshotRepository_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	repo := postgres.NewSnapshotRepository(pc.Pool, postgres.DefaultProfileID)

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSnapshot, "a fresh profile has no snapshot")

	savedAt := time.Now().UTC().Truncate(time.Microsecond)
	want := testSnapshot(savedAt)
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.SavedAt.Equal(want.SavedAt))
	require.Len(t, got.Party, 1)
	assert.Equal(t, want.Party[0].InstanceID, got.Party[0].InstanceID)
	assert.Equal(t, want.Party[0].MaxHP, got.Party[0].MaxHP)
	assert.Equal(t, want.Inventory, got.Inventory)
	assert.Equal(t, want.Unlocks, got.Unlocks)
	assert.Equal(t, "meadow", got.Battle.RegionID)
	assert.Equal(t, 10, got.Battle.PlainBalls)
	require.Len(t, got.Battle.LogEntries, 1)
	assert.Equal(t, battle.SourceSystem, got.Battle.LogEntries[0].Source)
	require.Len(t, got.BerryTasks, 1)
	assert.Equal(t, "task-1", got.BerryTasks[0].ID)
}

func TestSnapshotRepository_SaveReplaces(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	repo := postgres.NewSnapshotRepository(pc.Pool, postgres.DefaultProfileID)

	first := testSnapshot(time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Save(ctx, first))

	second := testSnapshot(first.SavedAt.Add(time.Minute))
	second.Inventory = []storage.ItemStack{{ItemID: "potion", Quantity: 1}}
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.SavedAt.Equal(second.SavedAt))
	assert.Equal(t, second.Inventory, got.Inventory)
}

func TestSnapshotRepository_ProfilesAreIsolated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	one := postgres.NewSnapshotRepository(pc.Pool, "one")
	two := postgres.NewSnapshotRepository(pc.Pool, "two")

	require.NoError(t, one.Save(ctx, testSnapshot(time.Now().UTC())))

	_, err := two.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)
}

func TestSnapshotRepository_Markers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	repo := postgres.NewSnapshotRepository(pc.Pool, postgres.DefaultProfileID)

	at, err := repo.LoadMarker(ctx)
	require.NoError(t, err)
	assert.True(t, at.IsZero(), "no marker saved yet")

	want := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.SaveMarker(ctx, want))

	got, err := repo.LoadMarker(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(want))

	later := want.Add(time.Minute)
	require.NoError(t, repo.SaveMarker(ctx, later))
	got, err = repo.LoadMarker(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(later))
}
