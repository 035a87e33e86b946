package shop

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoreUpdate carries optional field edits for UpdateStore. Nil fields
// are left unchanged. VisitCount and LastVisit are deliberately absent:
// they move only through RecordVisit.
type StoreUpdate struct {
	Name      *string
	Latitude  *float64
	Longitude *float64
	Radius    *float64
}

// AddStore registers a store geofence.
func (s *State) AddStore(name string, lat, lon, radius float64, now time.Time) (Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Store{}, ErrEmptyName
	}

	store := Store{
		ID:        uuid.NewString(),
		Name:      trimmed,
		Latitude:  lat,
		Longitude: lon,
		Radius:    radius,
		CreatedAt: now.UnixMilli(),
	}

	s.stores = append(s.stores, store)

	return store, nil
}

// UpdateStore applies the non-nil fields of update to a store.
func (s *State) UpdateStore(id string, update StoreUpdate) (Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.stores {
		store := &s.stores[i]
		if store.ID != id {
			continue
		}

		if update.Name != nil {
			trimmed := strings.TrimSpace(*update.Name)
			if trimmed == "" {
				return Store{}, ErrEmptyName
			}

			store.Name = trimmed
		}

		if update.Latitude != nil {
			store.Latitude = *update.Latitude
		}

		if update.Longitude != nil {
			store.Longitude = *update.Longitude
		}

		if update.Radius != nil {
			store.Radius = *update.Radius
		}

		return *store, nil
	}

	return Store{}, ErrStoreNotFound
}

// DeleteStore removes a store, clearing the current-store pointer when it
// pointed at the deleted store. The visit log is append-only and keeps
// its entries.
func (s *State) DeleteStore(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.stores {
		if s.stores[i].ID == id {
			s.stores = slices.Delete(s.stores, i, i+1)

			if s.currentStoreID == id {
				s.currentStoreID = ""
			}

			return true
		}
	}

	return false
}

// Stores returns a copy of the registered stores.
func (s *State) Stores() []Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Store, len(s.stores))
	copy(out, s.stores)

	return out
}

// StoreByID returns the store with the given id.
func (s *State) StoreByID(id string) (Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, store := range s.stores {
		if store.ID == id {
			return store, true
		}
	}

	return Store{}, false
}

// CurrentStore returns the current store id, "" for none.
func (s *State) CurrentStore() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentStoreID
}

// SetCurrentStore changes the current-store pointer. An empty id clears
// it.
func (s *State) SetCurrentStore(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.currentStoreID = ""

		return nil
	}

	for _, store := range s.stores {
		if store.ID == id {
			s.currentStoreID = id

			return nil
		}
	}

	return ErrStoreNotFound
}

// RecordVisit appends a visit log entry and bumps the visited store's
// counters. This is the only path that mutates VisitCount and LastVisit.
func (s *State) RecordVisit(visit StoreVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.stores {
		if s.stores[i].ID == visit.StoreID {
			s.storeVisits = append(s.storeVisits, visit)
			s.stores[i].VisitCount++
			s.stores[i].LastVisit = visit.Timestamp

			return nil
		}
	}

	return ErrStoreNotFound
}

// StoreVisits returns a copy of the visit log.
func (s *State) StoreVisits() []StoreVisit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]StoreVisit, len(s.storeVisits))
	copy(out, s.storeVisits)

	return out
}
