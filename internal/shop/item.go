package shop

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddOutcome reports what AddItem did.
type AddOutcome int

// AddItem outcomes.
const (
	// OutcomeExisting means an active item with the same name already
	// exists; the add was a no-op.
	OutcomeExisting AddOutcome = iota
	// OutcomeRevived means a bought item with the same name was flipped
	// back to pending with its historical rank.
	OutcomeRevived
	// OutcomeCreated means a new item row was inserted.
	OutcomeCreated
)

// AddItem adds an item to the active list, creating a default list lazily
// when none exists. At most one active item per (list, lowercased name):
// an active duplicate is a no-op, a bought duplicate is revived at its
// historical rank instead of creating a second row.
func (s *State) AddItem(name, category string, now time.Time) (Item, AddOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Item{}, OutcomeExisting, ErrEmptyName
	}

	if s.currentListID == "" {
		list, err := s.newListLocked(DefaultListName, now)
		if err != nil {
			return Item{}, OutcomeExisting, err
		}

		s.lists = append(s.lists, list)
		s.currentListID = list.ID
	}

	lower := strings.ToLower(trimmed)

	for i := range s.items {
		existing := &s.items[i]

		if existing.ListID != s.currentListID || strings.ToLower(existing.Name) != lower {
			continue
		}

		// Active duplicate: no-op, and the history keeps the original
		// display form.
		if !existing.IsBought {
			return *existing, OutcomeExisting, nil
		}

		s.stats.Record(trimmed)
		existing.IsBought = false
		existing.Order = s.stats.Rank(trimmed, now)

		if category != "" {
			existing.Category = category
		}

		return *existing, OutcomeRevived, nil
	}

	s.stats.Record(trimmed)

	item := Item{
		ID:        uuid.NewString(),
		ListID:    s.currentListID,
		Name:      trimmed,
		Category:  category,
		CreatedAt: now.UnixMilli(),
		Order:     s.stats.Rank(trimmed, now),
	}

	s.items = append(s.items, item)

	return item, OutcomeCreated, nil
}

// ToggleItem flips an item's bought flag. Marking bought records the
// purchase and freezes the order; marking pending revives the item at its
// historical rank.
func (s *State) ToggleItem(id string, now time.Time) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		item := &s.items[i]
		if item.ID != id {
			continue
		}

		if item.IsBought {
			item.IsBought = false
			item.Order = s.stats.MarkPending(item.Name, now)
		} else {
			item.IsBought = true
			s.stats.MarkBought(item.Name, now)
		}

		return *item, nil
	}

	return Item{}, ErrItemNotFound
}

// DeleteItem removes the item with the given id. Returns false when no
// such item exists.
func (s *State) DeleteItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeItemLocked(id)
}

// ClearBought removes all bought items of the active list and returns
// their ids so the caller can issue the explicit remote delete.
func (s *State) ClearBought() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string

	kept := s.items[:0]

	for _, item := range s.items {
		if item.ListID == s.currentListID && item.IsBought {
			removed = append(removed, item.ID)

			continue
		}

		kept = append(kept, item)
	}

	s.items = kept

	return removed
}

// ReorderPending assigns dense 0-based order values following ids, which
// must be exactly the current pending items of the active list. Bought
// items are untouched.
func (s *State) ReorderPending(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[string]bool)

	for _, item := range s.items {
		if item.ListID == s.currentListID && !item.IsBought {
			pending[item.ID] = true
		}
	}

	if len(ids) != len(pending) {
		return ErrReorderMismatch
	}

	position := make(map[string]int64, len(ids))

	for idx, id := range ids {
		if !pending[id] {
			return ErrReorderMismatch
		}

		if _, dup := position[id]; dup {
			return ErrReorderMismatch
		}

		position[id] = int64(idx)
	}

	for i := range s.items {
		if order, ok := position[s.items[i].ID]; ok {
			s.items[i].Order = order
		}
	}

	return nil
}

// PendingItems returns the active list's pending items ascending by
// order. The sort is stable: ties keep insertion order.
func (s *State) PendingItems() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Item

	for _, item := range s.items {
		if item.ListID == s.currentListID && !item.IsBought {
			out = append(out, item)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})

	return out
}

// BoughtItems returns the active list's bought items, most recently
// created first, independent of order.
func (s *State) BoughtItems() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Item

	for _, item := range s.items {
		if item.ListID == s.currentListID && item.IsBought {
			out = append(out, item)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})

	return out
}

// Item returns the item with the given id.
func (s *State) Item(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}

	return Item{}, false
}

// HasItem reports whether an item with the given id exists.
func (s *State) HasItem(id string) bool {
	_, ok := s.Item(id)

	return ok
}

// FindItem resolves an id or a case-insensitive name within the active
// list, preferring pending items when both a pending and a bought item
// carry the name.
func (s *State) FindItem(ref string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == ref {
			return item, true
		}
	}

	lower := strings.ToLower(strings.TrimSpace(ref))

	var bought *Item

	for i := range s.items {
		item := &s.items[i]

		if item.ListID != s.currentListID || strings.ToLower(item.Name) != lower {
			continue
		}

		if !item.IsBought {
			return *item, true
		}

		if bought == nil {
			bought = item
		}
	}

	if bought != nil {
		return *bought, true
	}

	return Item{}, false
}

// ItemsForList returns a copy of the items scoped to one list.
func (s *State) ItemsForList(listID string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Item

	for _, item := range s.items {
		if item.ListID == listID {
			out = append(out, item)
		}
	}

	return out
}

// ReplaceListItems swaps the local subset belonging to listID for the
// given items wholesale. Items of other lists are untouched. This is the
// destructive-and-authoritative pull path.
func (s *State) ReplaceListItems(listID string, items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]

	for _, item := range s.items {
		if item.ListID != listID {
			kept = append(kept, item)
		}
	}

	s.items = kept

	for _, item := range items {
		item.ListID = listID
		s.items = append(s.items, item)
	}
}

// UpsertItem overwrites the item with a matching id or appends it.
func (s *State) UpsertItem(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item

			return
		}
	}

	s.items = append(s.items, item)
}

// RemoveItem removes the item with the given id if present.
func (s *State) RemoveItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeItemLocked(id)
}

func (s *State) removeItemLocked(id string) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = slices.Delete(s.items, i, i+1)

			return true
		}
	}

	return false
}

// activeNamesLocked collects lowercased names of the active list's
// pending items, the exclusion set for suggestions.
func (s *State) activeNamesLocked() map[string]bool {
	active := make(map[string]bool)

	for _, item := range s.items {
		if item.ListID == s.currentListID && !item.IsBought {
			active[strings.ToLower(item.Name)] = true
		}
	}

	return active
}
