package syncer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tobuy/internal/remote"
	"tobuy/internal/shop"
	"tobuy/internal/syncer"
)

// brokenService fails every call, for exercising the weak consistency
// paths.
type brokenService struct{}

var errBroken = errors.New("service unavailable")

func (brokenService) SelectItems(context.Context, string) ([]remote.ItemRow, error) {
	return nil, errBroken
}

func (brokenService) UpsertItems(context.Context, []remote.ItemRow) error { return errBroken }

func (brokenService) DeleteItems(context.Context, []string) error { return errBroken }

func (brokenService) SelectListByCode(context.Context, string) (remote.ListRow, error) {
	return remote.ListRow{}, errBroken
}

func (brokenService) UpsertList(context.Context, remote.ListRow) error { return errBroken }

func (brokenService) DeleteList(context.Context, string) error { return errBroken }

func (brokenService) SubscribeItems(context.Context) (<-chan remote.Event, func(), error) {
	return nil, nil, errBroken
}

func newStateWithList(t *testing.T) (*shop.State, shop.List) {
	t.Helper()

	state := shop.New()

	list, err := state.NewList("Groceries", time.UnixMilli(1000))
	require.NoError(t, err)

	require.True(t, state.InsertList(list))
	require.NoError(t, state.SetCurrentList(list.ID))

	return state, list
}

func addItem(t *testing.T, state *shop.State, name string, atMillis int64) shop.Item {
	t.Helper()

	item, _, err := state.AddItem(name, "", time.UnixMilli(atMillis))
	require.NoError(t, err)

	return item
}

func TestUnconfiguredEngineIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, _ := newStateWithList(t)
	addItem(t, state, "Milk", 2000)

	engine := syncer.New(state, nil, nil)

	assert.False(t, engine.Configured())
	require.NoError(t, engine.Push(ctx))
	require.NoError(t, engine.Pull(ctx))
	require.NoError(t, engine.FullSync(ctx))
	require.NoError(t, engine.DeleteRemote(ctx, []string{"x"}))
	require.NoError(t, engine.Subscribe(ctx))
	engine.Unsubscribe()

	// Local state is untouched by any of the above.
	assert.Len(t, state.PendingItems(), 1)
}

func TestPushUploadsActiveListOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	addItem(t, state, "Milk", 2000)
	addItem(t, state, "Eggs", 3000)

	other, err := state.NewList("Hardware", time.UnixMilli(1500))
	require.NoError(t, err)
	state.InsertList(other)
	state.UpsertItem(shop.Item{ID: "h1", ListID: other.ID, Name: "Nails", CreatedAt: 100})

	mem := remote.NewMemory()
	engine := syncer.New(state, mem, nil)

	require.NoError(t, engine.Push(ctx))

	rows := mem.Items()
	require.Len(t, rows, 2)

	for _, row := range rows {
		assert.Equal(t, list.ID, row.ListID)
	}
}

func TestPullReplacesActiveListWholesale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	addItem(t, state, "Local Only", 2000)
	state.UpsertItem(shop.Item{ID: "h1", ListID: "other", Name: "Nails", CreatedAt: 100})

	mem := remote.NewMemory()
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "r1", ListID: list.ID, Name: "Remote Milk", CreatedAt: 10, ItemOrder: 10},
	}))

	engine := syncer.New(state, mem, nil)
	require.NoError(t, engine.Pull(ctx))

	pending := state.PendingItems()
	require.Len(t, pending, 1)
	assert.Equal(t, "Remote Milk", pending[0].Name)

	// Items of other lists survive the replace.
	_, ok := state.Item("h1")
	assert.True(t, ok)
}

func TestFullSyncRoundTrips(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	local := addItem(t, state, "Milk", 2000)

	mem := remote.NewMemory()
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "r1", ListID: list.ID, Name: "Eggs", CreatedAt: 10, ItemOrder: 10},
	}))

	engine := syncer.New(state, mem, nil)
	require.NoError(t, engine.FullSync(ctx))

	// After push-then-pull both rows exist on both sides.
	assert.Len(t, mem.Items(), 2)
	assert.Len(t, state.PendingItems(), 2)

	_, ok := state.Item(local.ID)
	assert.True(t, ok)
}

// Two clients against the same backend do not see each other's mutations
// until one of them pulls: pushes are fire-and-forget, pulls are the only
// reconciliation point.
func TestReplicasDivergeUntilPull(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := remote.NewMemory()

	stateA, list := newStateWithList(t)
	engineA := syncer.New(stateA, mem, nil)

	stateB := shop.New()
	require.True(t, stateB.InsertList(list))
	require.NoError(t, stateB.SetCurrentList(list.ID))
	engineB := syncer.New(stateB, mem, nil)

	// A adds and pushes. B never hears about it on its own.
	addItem(t, stateA, "Milk", 2000)
	require.NoError(t, engineA.Push(ctx))
	assert.Empty(t, stateB.PendingItems())

	// B mutates too: both replicas now hold one item, and they disagree
	// about which.
	addItem(t, stateB, "Eggs", 3000)
	require.Len(t, stateA.PendingItems(), 1)
	require.Len(t, stateB.PendingItems(), 1)
	assert.NotEqual(t, stateA.PendingItems()[0].Name, stateB.PendingItems()[0].Name)

	// B reconciles with a full sync and converges on both rows; A still
	// holds only its own item until it pulls as well.
	require.NoError(t, engineB.FullSync(ctx))
	assert.Len(t, stateB.PendingItems(), 2)
	assert.Len(t, stateA.PendingItems(), 1)

	require.NoError(t, engineA.Pull(ctx))
	assert.Len(t, stateA.PendingItems(), 2)
}

func TestFullSyncPullsEvenAfterFailedPush(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, _ := newStateWithList(t)
	addItem(t, state, "Milk", 2000)

	engine := syncer.New(state, brokenService{}, nil)

	err := engine.FullSync(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBroken)
}

func TestPushErrorLeavesLocalStateIntact(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, _ := newStateWithList(t)
	addItem(t, state, "Milk", 2000)

	var logged []string

	engine := syncer.New(state, brokenService{}, func(format string, args ...any) {
		logged = append(logged, format)
	})

	err := engine.Push(ctx)
	require.ErrorIs(t, err, errBroken)
	assert.Len(t, state.PendingItems(), 1)
	assert.NotEmpty(t, logged)
}

func TestSubscribeSuppressesInsertEcho(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	mem := remote.NewMemory()
	engine := syncer.New(state, mem, nil)

	require.NoError(t, engine.Subscribe(ctx))
	defer engine.Unsubscribe()

	// Optimistic local insert followed by its own push: the insert event
	// coming back must not duplicate the row.
	item := addItem(t, state, "Milk", 2000)
	require.NoError(t, engine.Push(ctx))

	// A genuinely foreign insert must be adopted.
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "f1", ListID: list.ID, Name: "Foreign", CreatedAt: 50, ItemOrder: 50},
	}))

	waitFor(t, func() bool { return state.HasItem("f1") })

	assert.Len(t, state.PendingItems(), 2)

	_, ok := state.Item(item.ID)
	assert.True(t, ok)
}

func TestSubscribeIgnoresOtherListInserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, _ := newStateWithList(t)
	mem := remote.NewMemory()
	engine := syncer.New(state, mem, nil)

	require.NoError(t, engine.Subscribe(ctx))
	defer engine.Unsubscribe()

	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "o1", ListID: "someone-elses-list", Name: "Nails", CreatedAt: 50},
	}))

	// Give the event loop a moment, then confirm nothing was adopted.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, state.HasItem("o1"))
}

func TestSubscribeUpdateOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	mem := remote.NewMemory()
	engine := syncer.New(state, mem, nil)

	row := remote.ItemRow{ID: "r1", ListID: list.ID, Name: "Milk", CreatedAt: 10, ItemOrder: 10}
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{row}))
	require.NoError(t, engine.Pull(ctx))

	require.NoError(t, engine.Subscribe(ctx))
	defer engine.Unsubscribe()

	row.Name = "Oat Milk"
	row.IsBought = true
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{row}))

	waitFor(t, func() bool {
		item, ok := state.Item("r1")

		return ok && item.Name == "Oat Milk" && item.IsBought
	})
}

// Delivering the identical update event twice must land on the same
// final state as delivering it once.
func TestSubscribeDuplicateUpdateIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	mem := remote.NewMemory()
	engine := syncer.New(state, mem, nil)

	row := remote.ItemRow{ID: "r1", ListID: list.ID, Name: "Milk", CreatedAt: 10, ItemOrder: 10}
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{row}))
	require.NoError(t, engine.Pull(ctx))

	require.NoError(t, engine.Subscribe(ctx))
	defer engine.Unsubscribe()

	row.Name = "Oat Milk"
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{row}))
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{row}))

	// Events apply serially in receipt order, so once this trailing
	// insert has landed both duplicates have been folded in.
	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "m1", ListID: list.ID, Name: "Butter", CreatedAt: 20, ItemOrder: 20},
	}))
	waitFor(t, func() bool { return state.HasItem("m1") })

	items := state.ItemsForList(list.ID)
	require.Len(t, items, 2)

	item, ok := state.Item("r1")
	require.True(t, ok)
	assert.Equal(t, "Oat Milk", item.Name)
	assert.False(t, item.IsBought)
}

// An update for an id this client has never seen is adopted when the row
// belongs to the active list: a client that subscribed after the row's
// insert sees its first change as an update.
func TestSubscribeUpdateAdoptsUnknownActiveListRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	mem := remote.NewMemory()

	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "r1", ListID: list.ID, Name: "Milk", CreatedAt: 10, ItemOrder: 10},
		{ID: "x1", ListID: "someone-elses-list", Name: "Nails", CreatedAt: 10},
	}))

	engine := syncer.New(state, mem, nil)
	require.NoError(t, engine.Subscribe(ctx))
	defer engine.Unsubscribe()

	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "r1", ListID: list.ID, Name: "Oat Milk", CreatedAt: 10, ItemOrder: 10},
		{ID: "x1", ListID: "someone-elses-list", Name: "Screws", CreatedAt: 10},
	}))

	waitFor(t, func() bool { return state.HasItem("r1") })

	item, _ := state.Item("r1")
	assert.Equal(t, "Oat Milk", item.Name)

	// Unknown rows of foreign lists stay ignored.
	assert.False(t, state.HasItem("x1"))
}

func TestSubscribeDeleteRemoves(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	mem := remote.NewMemory()
	engine := syncer.New(state, mem, nil)

	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "r1", ListID: list.ID, Name: "Milk", CreatedAt: 10},
	}))
	require.NoError(t, engine.Pull(ctx))
	require.True(t, state.HasItem("r1"))

	require.NoError(t, engine.Subscribe(ctx))
	defer engine.Unsubscribe()

	require.NoError(t, mem.DeleteItems(ctx, []string{"r1"}))

	waitFor(t, func() bool { return !state.HasItem("r1") })
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	state, _ := newStateWithList(t)
	engine := syncer.New(state, remote.NewMemory(), nil)

	require.NoError(t, engine.Subscribe(context.Background()))

	engine.Unsubscribe()
	engine.Unsubscribe()
}

func TestDeleteRemoteForwardsIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state, list := newStateWithList(t)
	mem := remote.NewMemory()

	require.NoError(t, mem.UpsertItems(ctx, []remote.ItemRow{
		{ID: "r1", ListID: list.ID}, {ID: "r2", ListID: list.ID},
	}))

	engine := syncer.New(state, mem, nil)

	require.NoError(t, engine.DeleteRemote(ctx, []string{"r1"}))

	rows := mem.Items()
	require.Len(t, rows, 1)
	assert.Equal(t, "r2", rows[0].ID)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)

	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("condition not reached in time")
}
