package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"tobuy/internal/rank"
)

// SchemaVersion is stored in the state blob. A future bump gates
// migrations the way the order backfill does today.
const SchemaVersion = 1

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// lockTimeout bounds how long a CLI invocation waits for a concurrent one
// to finish its read-modify-write cycle.
const lockTimeout = 2 * time.Second

const lockRetryDelay = 50 * time.Millisecond

// blob is the serialized form of the full state under a single key. Field
// names match the original storage shape so an exported blob stays
// recognizable.
type blob struct {
	SchemaVersion      int              `json:"schemaVersion"`
	Items              []blobItem       `json:"items"`
	Lists              []List           `json:"lists"`
	CurrentListID      string           `json:"currentListId,omitempty"`
	ItemRanks          map[string]int64 `json:"itemRanks"`
	ItemBuyCounts      map[string]int   `json:"itemBuyCounts"`
	ItemHistory        []string         `json:"itemHistory"`
	Stores             []Store          `json:"stores"`
	CurrentStore       string           `json:"currentStore,omitempty"`
	StoreVisits        []StoreVisit     `json:"storeVisits"`
	LocationPermission string           `json:"locationPermission"`
}

// blobItem mirrors Item with a nullable order so the one-time
// order-backfill migration can tell "absent" from a legitimate zero
// assigned by a manual reorder.
type blobItem struct {
	ID        string `json:"id"`
	ListID    string `json:"listId"`
	Name      string `json:"name"`
	IsBought  bool   `json:"isBought"`
	Category  string `json:"category,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	Order     *int64 `json:"order,omitempty"`
}

// Load reads the state blob from path. A missing file yields a fresh
// empty state. Items persisted without an order are backfilled with their
// createdAt.
func Load(path string) (*State, error) {
	var data []byte

	err := withFileLock(path, func() error {
		var readErr error

		data, readErr = os.ReadFile(path)

		return readErr
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}

		return nil, fmt.Errorf("%w: %v", ErrStateFileRead, err)
	}

	var b blob

	decodeErr := json.Unmarshal(data, &b)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateFileInvalid, decodeErr)
	}

	state := New()
	state.lists = b.Lists
	state.currentListID = b.CurrentListID
	state.stores = b.Stores
	state.storeVisits = b.StoreVisits
	state.currentStoreID = b.CurrentStore

	if b.LocationPermission != "" {
		state.locationPermission = b.LocationPermission
	}

	state.stats = rank.Stats{
		Ranks:     b.ItemRanks,
		BuyCounts: b.ItemBuyCounts,
		History:   b.ItemHistory,
	}
	state.stats.Normalize()

	for _, bi := range b.Items {
		item := Item{
			ID:        bi.ID,
			ListID:    bi.ListID,
			Name:      bi.Name,
			IsBought:  bi.IsBought,
			Category:  bi.Category,
			CreatedAt: bi.CreatedAt,
			Order:     bi.CreatedAt, // order ?? createdAt
		}
		if bi.Order != nil {
			item.Order = *bi.Order
		}

		state.items = append(state.items, item)
	}

	return state, nil
}

// Save writes the full state atomically under path, serialized against
// concurrent invocations by an advisory lock.
func (s *State) Save(path string) error {
	s.mu.Lock()

	b := blob{
		SchemaVersion:      SchemaVersion,
		Lists:              s.lists,
		CurrentListID:      s.currentListID,
		ItemRanks:          s.stats.Ranks,
		ItemBuyCounts:      s.stats.BuyCounts,
		ItemHistory:        s.stats.History,
		Stores:             s.stores,
		CurrentStore:       s.currentStoreID,
		StoreVisits:        s.storeVisits,
		LocationPermission: s.locationPermission,
	}

	for _, item := range s.items {
		order := item.Order
		b.Items = append(b.Items, blobItem{
			ID:        item.ID,
			ListID:    item.ListID,
			Name:      item.Name,
			IsBought:  item.IsBought,
			Category:  item.Category,
			CreatedAt: item.CreatedAt,
			Order:     &order,
		})
	}

	s.mu.Unlock()

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(path)

	err = os.MkdirAll(dir, dirPerms)
	if err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	err = withFileLock(path, func() error {
		writeErr := atomic.WriteFile(path, bytes.NewReader(data))
		if writeErr != nil {
			return writeErr
		}

		// atomic.WriteFile does not set permissions for new files
		return os.Chmod(path, filePerms)
	})
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	return nil
}

// withFileLock runs handler while holding an exclusive advisory lock next
// to the state file. The lock serializes whole read-modify-write cycles
// across processes; within a process the State mutex already does.
func withFileLock(path string, handler func() error) error {
	dir := filepath.Dir(path)

	// The lock file must be creatable even before the first save.
	if mkErr := os.MkdirAll(dir, dirPerms); mkErr != nil {
		return fmt.Errorf("create state directory: %w", mkErr)
	}

	lock := flock.New(path + ".lock")

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return ErrLockTimeout
	}

	defer func() { _ = lock.Unlock() }()

	return handler()
}
