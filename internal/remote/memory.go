package remote

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// subscriberBuffer bounds how far a slow subscriber may lag before
// publishes block.
const subscriberBuffer = 64

// Memory is an in-memory Service. It backs the sync-engine tests and
// doubles as a reference for the backend contract: upserts publish
// insert or update events depending on prior existence, deletes publish
// delete events carrying the old row.
type Memory struct {
	mu    sync.Mutex
	items map[string]ItemRow
	lists map[string]ListRow
	subs  map[int]chan Event
	next  int
}

// NewMemory returns an empty in-memory service.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]ItemRow),
		lists: make(map[string]ListRow),
		subs:  make(map[int]chan Event),
	}
}

// SelectItems returns all rows for a list, ordered by created_at then id
// for determinism.
func (m *Memory) SelectItems(_ context.Context, listID string) ([]ItemRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []ItemRow

	for _, row := range m.items {
		if row.ListID == listID {
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt != rows[j].CreatedAt {
			return rows[i].CreatedAt < rows[j].CreatedAt
		}

		return rows[i].ID < rows[j].ID
	})

	return rows, nil
}

// UpsertItems stores rows keyed by id and publishes an insert or update
// event per row.
func (m *Memory) UpsertItems(_ context.Context, rows []ItemRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range rows {
		eventType := EventInsert
		if _, exists := m.items[row.ID]; exists {
			eventType = EventUpdate
		}

		stored := row
		m.items[row.ID] = stored

		m.publishLocked(Event{Type: eventType, New: &stored})
	}

	return nil
}

// DeleteItems removes rows and publishes delete events for those that
// existed.
func (m *Memory) DeleteItems(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		old, exists := m.items[id]
		if !exists {
			continue
		}

		delete(m.items, id)
		m.publishLocked(Event{Type: EventDelete, Old: &old})
	}

	return nil
}

// SelectListByCode resolves a share code case-insensitively.
func (m *Memory) SelectListByCode(_ context.Context, code string) (ListRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	normalized := strings.ToUpper(strings.TrimSpace(code))

	for _, row := range m.lists {
		if strings.ToUpper(row.ShareCode) == normalized {
			return row, nil
		}
	}

	return ListRow{}, ErrNotFound
}

// UpsertList stores a list row.
func (m *Memory) UpsertList(_ context.Context, row ListRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists[row.ID] = row

	return nil
}

// DeleteList removes a list row.
func (m *Memory) DeleteList(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.lists, id)

	return nil
}

// SubscribeItems registers a subscriber channel. Events publish in the
// order the mutating calls ran.
func (m *Memory) SubscribeItems(_ context.Context) (<-chan Event, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++

	ch := make(chan Event, subscriberBuffer)
	m.subs[id] = ch

	var once sync.Once

	stop := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()

			delete(m.subs, id)
			close(ch)
		})
	}

	return ch, stop, nil
}

// Items returns a snapshot of all stored item rows, for assertions.
func (m *Memory) Items() []ItemRow {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]ItemRow, 0, len(m.items))
	for _, row := range m.items {
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	return rows
}

// Lists returns a snapshot of all stored list rows, for assertions.
func (m *Memory) Lists() []ListRow {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]ListRow, 0, len(m.lists))
	for _, row := range m.lists {
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	return rows
}

func (m *Memory) publishLocked(event Event) {
	for _, ch := range m.subs {
		ch <- event
	}
}
