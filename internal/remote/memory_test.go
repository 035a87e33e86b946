package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEvents(t *testing.T, ch <-chan Event, n int) []Event {
	t.Helper()

	var events []Event

	timeout := time.After(2 * time.Second)

	for len(events) < n {
		select {
		case event, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed after %d of %d events", len(events), n)
			}

			events = append(events, event)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(events), n)
		}
	}

	return events
}

func TestMemoryUpsertPublishesInsertThenUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewMemory()

	events, stop, err := mem.SubscribeItems(ctx)
	require.NoError(t, err)

	defer stop()

	row := ItemRow{ID: "i1", ListID: "l1", Name: "Milk", CreatedAt: 1, ItemOrder: 1}
	require.NoError(t, mem.UpsertItems(ctx, []ItemRow{row}))

	row.Name = "Milk 2%"
	require.NoError(t, mem.UpsertItems(ctx, []ItemRow{row}))

	got := collectEvents(t, events, 2)

	assert.Equal(t, EventInsert, got[0].Type)
	assert.Equal(t, "Milk", got[0].New.Name)
	assert.Equal(t, EventUpdate, got[1].Type)
	assert.Equal(t, "Milk 2%", got[1].New.Name)
}

func TestMemoryDeletePublishesOldRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewMemory()

	row := ItemRow{ID: "i1", ListID: "l1", Name: "Milk"}
	require.NoError(t, mem.UpsertItems(ctx, []ItemRow{row}))

	events, stop, err := mem.SubscribeItems(ctx)
	require.NoError(t, err)

	defer stop()

	require.NoError(t, mem.DeleteItems(ctx, []string{"i1", "missing"}))

	got := collectEvents(t, events, 1)

	assert.Equal(t, EventDelete, got[0].Type)
	require.NotNil(t, got[0].Old)
	assert.Equal(t, "i1", got[0].Old.ID)
	assert.Empty(t, mem.Items())
}

func TestMemorySelectItemsScopedAndOrdered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.UpsertItems(ctx, []ItemRow{
		{ID: "b", ListID: "l1", CreatedAt: 2},
		{ID: "a", ListID: "l1", CreatedAt: 1},
		{ID: "c", ListID: "other", CreatedAt: 0},
	}))

	rows, err := mem.SelectItems(ctx, "l1")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)
}

func TestMemorySelectListByCodeCaseInsensitive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.UpsertList(ctx, ListRow{ID: "l1", ShareCode: "ABC123"}))

	row, err := mem.SelectListByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "l1", row.ID)

	_, err = mem.SelectListByCode(ctx, "nosuch")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStopIsIdempotent(t *testing.T) {
	t.Parallel()

	mem := NewMemory()

	_, stop, err := mem.SubscribeItems(context.Background())
	require.NoError(t, err)

	stop()
	stop() // second call must not panic

	// Publishing after unsubscribe must not block or panic.
	require.NoError(t, mem.UpsertItems(context.Background(), []ItemRow{{ID: "i1"}}))
}
