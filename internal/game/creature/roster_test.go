package creature_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokengu/idlemon/internal/game/creature"
)

func newRosterWith(t *testing.T, n int) (*creature.Roster, []*creature.Creature) {
	t.Helper()
	r := creature.NewRoster(6)
	var all []*creature.Creature
	for i := 0; i < n; i++ {
		c := newTestCreature(t, 5+i)
		r.Add(c)
		all = append(all, c)
	}
	return r, all
}

func TestRosterAdd_OverflowsToReserve(t *testing.T) {
	r, _ := newRosterWith(t, 8)
	assert.Len(t, r.Party(), 6)
	assert.Len(t, r.Reserve(), 2)
}

func TestRosterActive_DefaultsToFirst(t *testing.T) {
	r, all := newRosterWith(t, 3)
	assert.Same(t, all[0], r.Active())
}

func TestRosterSetActive(t *testing.T) {
	r, all := newRosterWith(t, 3)
	require.NoError(t, r.SetActive(all[2].InstanceID))
	assert.Same(t, all[2], r.Active())
}

func TestRosterSetActive_Errors(t *testing.T) {
	r, all := newRosterWith(t, 3)

	outsider := newTestCreature(t, 1)
	err := r.SetActive(outsider.InstanceID)
	assert.ErrorIs(t, err, creature.ErrNotInRoster)

	all[1].Working = true
	err = r.SetActive(all[1].InstanceID)
	assert.ErrorIs(t, err, creature.ErrWorking)
}

func TestRosterNextAvailable_WrapsAndSkips(t *testing.T) {
	r, all := newRosterWith(t, 4)
	require.NoError(t, r.SetActive(all[2].InstanceID))

	all[3].Faint(time.Now(), time.Minute)
	all[0].Working = true

	assert.Same(t, all[1], r.NextAvailable())
}

func TestRosterNextAvailable_NoneLeft(t *testing.T) {
	r, all := newRosterWith(t, 2)
	all[1].Faint(time.Now(), time.Minute)
	assert.Nil(t, r.NextAvailable())
}

func TestRosterMoveToParty(t *testing.T) {
	r, _ := newRosterWith(t, 7)
	reserved := r.Reserve()[0]

	err := r.MoveToParty(reserved.InstanceID)
	assert.Error(t, err, "party is full")

	demoted := r.Party()[5]
	require.NoError(t, r.MoveToReserve(demoted.InstanceID))
	require.NoError(t, r.MoveToParty(reserved.InstanceID))
	assert.Len(t, r.Party(), 6)
	assert.Same(t, reserved, r.Party()[5])
}

func TestRosterMoveToReserve_RefusesLastHealthy(t *testing.T) {
	r, all := newRosterWith(t, 2)
	all[1].Faint(time.Now(), time.Minute)

	err := r.MoveToReserve(all[0].InstanceID)
	assert.ErrorIs(t, err, creature.ErrLastHealthy)
}

func TestRosterMoveToReserve_HandsOffActive(t *testing.T) {
	r, all := newRosterWith(t, 3)
	require.NoError(t, r.MoveToReserve(all[0].InstanceID))
	assert.Same(t, all[1], r.Active())
	assert.Len(t, r.Reserve(), 1)
}

func TestRosterDedup_MergesKeepingStronger(t *testing.T) {
	r := creature.NewRoster(6)
	a := newTestCreature(t, 5)
	dup := *a
	dup.Level = 9
	dup.XP = 42

	r.Add(a)
	r.Add(&dup)

	assert.True(t, r.Dedup())
	require.Len(t, r.Party(), 1)
	assert.Equal(t, 9, r.Party()[0].Level)
	assert.Equal(t, 42, r.Party()[0].XP)

	assert.False(t, r.Dedup(), "second sweep must be a no-op")
}

func TestRosterDedup_AcrossPartyAndReserve(t *testing.T) {
	r := creature.NewRoster(2)
	a := newTestCreature(t, 5)
	b := newTestCreature(t, 6)
	dup := *a
	dup.Level = 12

	r.Add(a)
	r.Add(b)
	r.Add(&dup) // lands in reserve

	assert.True(t, r.Dedup())
	assert.Len(t, r.Party(), 2)
	assert.Len(t, r.Reserve(), 0)
	assert.Equal(t, 12, r.Party()[0].Level, "merge must keep the higher level")
}

func TestRosterRegen_HealsAndSkipsBattler(t *testing.T) {
	r, all := newRosterWith(t, 2)
	all[0].SetHP(all[0].MaxHP - 50)
	all[1].SetHP(all[1].MaxHP - 50)

	r.Regen(time.Now(), 0.025, all[0])

	assert.Equal(t, all[0].MaxHP-50, all[0].HP, "creature in battle must not regen")
	assert.Greater(t, all[1].HP, all[1].MaxHP-50)
}

func TestRosterRegen_RevivesAfterRecovery(t *testing.T) {
	r, all := newRosterWith(t, 2)
	now := time.Now()
	all[1].Faint(now, time.Minute)

	r.Regen(now.Add(30*time.Second), 0.025, nil)
	assert.True(t, all[1].Fainted(), "recovery not elapsed yet")

	r.Regen(now.Add(61*time.Second), 0.025, nil)
	assert.False(t, all[1].Fainted())
	assert.Equal(t, 0, all[1].HP, "revived creature stands up at zero HP")

	r.Regen(now.Add(62*time.Second), 0.025, nil)
	assert.Greater(t, all[1].HP, 0, "revived creature heals through regen")
}

func TestRosterRestore(t *testing.T) {
	r := creature.NewRoster(6)
	a := newTestCreature(t, 5)
	b := newTestCreature(t, 6)

	require.NoError(t, r.Restore([]*creature.Creature{a, b}, nil, 1))
	assert.Same(t, b, r.Active())

	err := r.Restore([]*creature.Creature{a}, nil, 3)
	assert.Error(t, err)
}

func TestRosterRestore_CapViolation(t *testing.T) {
	r := creature.NewRoster(1)
	a := newTestCreature(t, 5)
	b := newTestCreature(t, 6)
	err := r.Restore([]*creature.Creature{a, b}, nil, 0)
	assert.Error(t, err)
}

func TestRosterFind(t *testing.T) {
	r, all := newRosterWith(t, 7)
	got, ok := r.Find(all[6].InstanceID)
	require.True(t, ok)
	assert.Same(t, all[6], got)

	_, ok = r.Find(newTestCreature(t, 1).InstanceID)
	assert.False(t, ok)
}

func TestRosterRelease(t *testing.T) {
	r, all := newRosterWith(t, 8)

	require.NoError(t, r.Release(all[7].InstanceID))
	assert.Len(t, r.Reserve(), 1)

	require.NoError(t, r.Release(all[1].InstanceID))
	assert.Len(t, r.Party(), 5)
	_, ok := r.Find(all[1].InstanceID)
	assert.False(t, ok)
}

func TestRosterRelease_RefusesLastHealthy(t *testing.T) {
	r, all := newRosterWith(t, 2)
	all[1].Faint(time.Now(), time.Minute)

	err := r.Release(all[0].InstanceID)
	assert.ErrorIs(t, err, creature.ErrLastHealthy)
}

func TestRosterRelease_RefusesWorking(t *testing.T) {
	r, all := newRosterWith(t, 3)
	all[2].Working = true

	err := r.Release(all[2].InstanceID)
	assert.ErrorIs(t, err, creature.ErrWorking)
}

func TestRosterRelease_HandsOffActive(t *testing.T) {
	r, all := newRosterWith(t, 3)
	require.NoError(t, r.Release(all[0].InstanceID))
	assert.Same(t, all[1], r.Active())
}
