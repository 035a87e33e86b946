// Package shop holds the process-wide shopping state: lists, items, store
// geofences, visit log, and ranking statistics. State is the single owner
// of all collections; every mutation runs to completion under one mutex,
// so callers always see their own change reflected before any network
// activity starts.
package shop

import (
	"sync"

	"tobuy/internal/rank"
)

// Item is a shopping-list entry. Order is an opaque sort key: a
// historical rank for pending items, a dense index after a manual
// reorder, and frozen at its last value once bought.
type Item struct {
	ID        string `json:"id"`
	ListID    string `json:"listId"`
	Name      string `json:"name"`
	IsBought  bool   `json:"isBought"`
	Category  string `json:"category,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	Order     int64  `json:"order"`
}

// List is a shopping list. ShareCode is a 6-character case-insensitive
// join token.
type List struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShareCode string `json:"shareCode"`
	CreatedAt int64  `json:"createdAt"`
}

// Store is a physical store with a circular detection geofence.
// VisitCount and LastVisit are mutated only through RecordVisit.
type Store struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Radius     float64 `json:"radius"`
	VisitCount int     `json:"visitCount"`
	LastVisit  int64   `json:"lastVisit,omitempty"`
	CreatedAt  int64   `json:"createdAt"`
}

// StoreVisit is an immutable log entry recorded when the current store
// transitions to a new value.
type StoreVisit struct {
	StoreID     string   `json:"storeId"`
	Timestamp   int64    `json:"timestamp"`
	ItemsBought []string `json:"itemsBought"`
}

// State is the in-memory source of truth. All exported methods serialize
// through the mutex; accessors return copies.
type State struct {
	mu sync.Mutex

	items              []Item
	lists              []List
	currentListID      string
	stores             []Store
	storeVisits        []StoreVisit
	currentStoreID     string
	locationPermission string
	stats              rank.Stats
}

// New returns an empty state.
func New() *State {
	return &State{
		locationPermission: PermissionPrompt,
		stats:              rank.NewStats(),
	}
}

// CurrentList returns the active list id, "" when none.
func (s *State) CurrentList() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentListID
}

// Lists returns a copy of the list registry.
func (s *State) Lists() []List {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]List, len(s.lists))
	copy(out, s.lists)

	return out
}

// Items returns a copy of the whole item collection.
func (s *State) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)

	return out
}

// Stats returns a snapshot of the ranking statistics.
func (s *State) Stats() rank.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.statsCopy()
}

// Suggest proxies autocomplete to the ranking engine, excluding names
// already active in the current list.
func (s *State) Suggest(typed string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats.Suggest(typed, s.activeNamesLocked())
}

// LocationPermission returns the stored geolocation permission value.
func (s *State) LocationPermission() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.locationPermission
}

// SetLocationPermission stores the geolocation permission value.
func (s *State) SetLocationPermission(permission string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locationPermission = permission
}

func (s *State) statsCopy() rank.Stats {
	out := rank.NewStats()

	for k, v := range s.stats.Ranks {
		out.Ranks[k] = v
	}

	for k, v := range s.stats.BuyCounts {
		out.BuyCounts[k] = v
	}

	out.History = append(out.History, s.stats.History...)

	return out
}
