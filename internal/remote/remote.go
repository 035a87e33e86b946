// Package remote abstracts the shared backend: a hosted relational store
// with row-level change notifications on the items resource. Local
// operation never depends on it; callers hold a nil Service when no
// credentials are configured.
package remote

import (
	"context"
	"errors"
)

// Service errors.
var (
	ErrNotFound = errors.New("not found")
)

// EventType classifies a row-level change notification.
type EventType string

// Change notification types.
const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is one change notification on the items resource. New carries the
// row after the change (insert/update), Old the row before it (delete).
type Event struct {
	Type EventType `json:"eventType"`
	New  *ItemRow  `json:"new,omitempty"`
	Old  *ItemRow  `json:"old,omitempty"`
}

// Service is the remote data service consumed by the sync engine and the
// list registry. Implementations must deliver subscription events in
// receipt order.
type Service interface {
	// SelectItems returns all item rows for a list.
	SelectItems(ctx context.Context, listID string) ([]ItemRow, error)

	// UpsertItems inserts or updates rows keyed by id.
	UpsertItems(ctx context.Context, rows []ItemRow) error

	// DeleteItems removes the rows with the given ids.
	DeleteItems(ctx context.Context, ids []string) error

	// SelectListByCode resolves a share code case-insensitively.
	// Returns ErrNotFound when no list carries the code.
	SelectListByCode(ctx context.Context, code string) (ListRow, error)

	// UpsertList registers or updates a list row.
	UpsertList(ctx context.Context, row ListRow) error

	// DeleteList removes a list row.
	DeleteList(ctx context.Context, id string) error

	// SubscribeItems opens a standing change-notification channel for
	// the items resource. The returned stop function tears the channel
	// down and is safe to call more than once.
	SubscribeItems(ctx context.Context) (<-chan Event, func(), error)
}
