package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tobuy/internal/remote"
	"tobuy/internal/shop"
)

// Result reports the outcome of a list registry operation. Registry ops
// prefer partial success over rollback: a list created locally stays
// created even when its remote registration fails, and Message explains
// what happened either way.
type Result struct {
	Success bool
	Message string
}

// CreateList creates a list locally, makes it active, and registers it
// remotely so its share code resolves for other clients. Local creation
// alone is still a success when no remote is configured.
func (e *Engine) CreateList(ctx context.Context, name string) (shop.List, Result, error) {
	list, err := e.state.NewList(name, time.Now())
	if err != nil {
		return shop.List{}, Result{}, fmt.Errorf("create list: %w", err)
	}

	e.state.InsertList(list)

	if err := e.state.SetCurrentList(list.ID); err != nil {
		return shop.List{}, Result{}, fmt.Errorf("create list: %w", err)
	}

	if e.svc == nil {
		return list, Result{Success: true, Message: fmt.Sprintf("created %q (local only, share code %s)", list.Name, list.ShareCode)}, nil
	}

	err = e.svc.UpsertList(ctx, remote.RowFromList(list))
	if err != nil {
		e.logf("list registration failed: %v", err)

		return list, Result{
			Success: true,
			Message: fmt.Sprintf("created %q locally, but remote registration failed; the share code may not resolve for others yet", list.Name),
		}, nil
	}

	return list, Result{Success: true, Message: fmt.Sprintf("created %q, share code %s", list.Name, list.ShareCode)}, nil
}

// JoinList resolves a share code against the remote registry, adopts the
// list locally, switches to it, and pulls its items. Requires a
// configured remote.
func (e *Engine) JoinList(ctx context.Context, code string) (shop.List, Result, error) {
	code = shop.NormalizeShareCode(code)
	if code == "" {
		return shop.List{}, Result{Message: "share code is empty"}, nil
	}

	if e.svc == nil {
		return shop.List{}, Result{Message: "joining a shared list requires a configured remote"}, nil
	}

	row, err := e.svc.SelectListByCode(ctx, code)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return shop.List{}, Result{Message: fmt.Sprintf("no list found for code %s", code)}, nil
		}

		return shop.List{}, Result{}, fmt.Errorf("join list: %w", err)
	}

	list := row.List()

	e.state.InsertList(list)

	if err := e.state.SetCurrentList(list.ID); err != nil {
		return shop.List{}, Result{}, fmt.Errorf("join list: %w", err)
	}

	if err := e.Pull(ctx); err != nil {
		return list, Result{
			Success: true,
			Message: fmt.Sprintf("joined %q, but the initial pull failed; run sync to fetch its items", list.Name),
		}, nil
	}

	return list, Result{Success: true, Message: fmt.Sprintf("joined %q", list.Name)}, nil
}

// SwitchList makes a list the active one and pulls its remote items.
// The argument may be a list id or the share code of a locally known
// list.
func (e *Engine) SwitchList(ctx context.Context, idOrCode string) (shop.List, Result, error) {
	list, ok := e.resolveLocal(idOrCode)
	if !ok {
		return shop.List{}, Result{Message: fmt.Sprintf("no local list matches %q", idOrCode)}, nil
	}

	if err := e.state.SetCurrentList(list.ID); err != nil {
		return shop.List{}, Result{}, fmt.Errorf("switch list: %w", err)
	}

	if err := e.Pull(ctx); err != nil {
		return list, Result{
			Success: true,
			Message: fmt.Sprintf("switched to %q, but the pull failed; items may be stale", list.Name),
		}, nil
	}

	return list, Result{Success: true, Message: fmt.Sprintf("switched to %q", list.Name)}, nil
}

// RenameList renames a list locally and re-registers the new name
// remotely. The share code never changes.
func (e *Engine) RenameList(ctx context.Context, id, name string) (shop.List, Result, error) {
	list, err := e.state.RenameList(id, name)
	if err != nil {
		return shop.List{}, Result{}, fmt.Errorf("rename list: %w", err)
	}

	if e.svc == nil {
		return list, Result{Success: true, Message: fmt.Sprintf("renamed to %q", list.Name)}, nil
	}

	if err := e.svc.UpsertList(ctx, remote.RowFromList(list)); err != nil {
		e.logf("list rename push failed: %v", err)

		return list, Result{
			Success: true,
			Message: fmt.Sprintf("renamed to %q locally, but the remote registry still holds the old name", list.Name),
		}, nil
	}

	return list, Result{Success: true, Message: fmt.Sprintf("renamed to %q", list.Name)}, nil
}

// DeleteList removes a list with its items locally and deletes both from
// the remote. When the active list is deleted, the registry falls back
// to another local list, or to none.
func (e *Engine) DeleteList(ctx context.Context, idOrCode string) (Result, error) {
	list, ok := e.resolveLocal(idOrCode)
	if !ok {
		return Result{Message: fmt.Sprintf("no local list matches %q", idOrCode)}, nil
	}

	removed, removedItems := e.state.RemoveList(list.ID)
	if !removed {
		return Result{Message: fmt.Sprintf("no local list matches %q", idOrCode)}, nil
	}

	if e.svc == nil {
		return Result{Success: true, Message: fmt.Sprintf("deleted %q", list.Name)}, nil
	}

	var remoteErr error

	if err := e.svc.DeleteItems(ctx, removedItems); err != nil {
		remoteErr = err
	}

	if err := e.svc.DeleteList(ctx, list.ID); err != nil {
		remoteErr = err
	}

	if remoteErr != nil {
		e.logf("remote list delete failed: %v", remoteErr)

		return Result{
			Success: true,
			Message: fmt.Sprintf("deleted %q locally, but the remote copy may remain", list.Name),
		}, nil
	}

	return Result{Success: true, Message: fmt.Sprintf("deleted %q", list.Name)}, nil
}

// resolveLocal finds a locally known list by id first, then by share
// code.
func (e *Engine) resolveLocal(idOrCode string) (shop.List, bool) {
	if list, ok := e.state.ListByID(idOrCode); ok {
		return list, true
	}

	return e.state.ListByCode(idOrCode)
}
