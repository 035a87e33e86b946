// Package syncer reconciles the local item collection with the remote
// data service: optimistic local mutations are pushed best-effort, pulls
// replace the active list's subset wholesale, and a live subscription
// applies row-level change events idempotently. Local state is the source
// of truth until a pull says otherwise; a failed push never reverts a
// mutation.
package syncer

import (
	"context"
	"fmt"
	"sync"

	"tobuy/internal/remote"
	"tobuy/internal/shop"
)

// Engine drives push, pull, and the live subscription. A nil service
// means sync is not configured: every operation is a no-op that returns
// immediately, and local-only operation behaves identically for all item
// mutation commands.
type Engine struct {
	state *shop.State
	svc   remote.Service
	logf  func(format string, args ...any)

	mu      sync.Mutex
	syncing bool
	stop    func()
	done    chan struct{}
}

// New creates an engine. svc may be nil (unconfigured); logf may be nil
// to discard sync diagnostics.
func New(state *shop.State, svc remote.Service, logf func(format string, args ...any)) *Engine {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &Engine{state: state, svc: svc, logf: logf}
}

// Configured reports whether a remote service is attached.
func (e *Engine) Configured() bool {
	return e.svc != nil
}

// Syncing reports the advisory sync-in-progress flag. It never gates
// correctness.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.syncing
}

func (e *Engine) setSyncing(v bool) {
	e.mu.Lock()
	e.syncing = v
	e.mu.Unlock()
}

// Push upserts the active list's local items to the remote service.
// Transport failures are logged and returned, but callers on mutation
// paths ignore the error: local state stays authoritative regardless of
// push outcome.
func (e *Engine) Push(ctx context.Context) error {
	if e.svc == nil {
		return nil
	}

	listID := e.state.CurrentList()
	if listID == "" {
		return nil
	}

	e.setSyncing(true)
	defer e.setSyncing(false)

	rows := remote.RowsFromItems(e.state.ItemsForList(listID))

	err := e.svc.UpsertItems(ctx, rows)
	if err != nil {
		e.logf("push failed: %v", err)

		return fmt.Errorf("push: %w", err)
	}

	return nil
}

// Pull fetches all remote items for the active list and replaces the
// local subset wholesale. Remote wins unconditionally; items of other
// lists are untouched.
func (e *Engine) Pull(ctx context.Context) error {
	if e.svc == nil {
		return nil
	}

	listID := e.state.CurrentList()
	if listID == "" {
		return nil
	}

	e.setSyncing(true)
	defer e.setSyncing(false)

	rows, err := e.svc.SelectItems(ctx, listID)
	if err != nil {
		e.logf("pull failed: %v", err)

		return fmt.Errorf("pull: %w", err)
	}

	e.state.ReplaceListItems(listID, remote.ItemsFromRows(rows))

	return nil
}

// FullSync pushes then pulls, in that order: push what we have, then
// overwrite with what the server now holds. A failed push means the pull
// may discard local-only changes; that is the accepted tradeoff of the
// weak consistency model.
func (e *Engine) FullSync(ctx context.Context) error {
	if err := e.Push(ctx); err != nil {
		e.logf("full sync: continuing to pull after failed push")
	}

	return e.Pull(ctx)
}

// DeleteRemote removes rows by id at mutation time. Deletions cannot ride
// the upsert-based push: a row absent from a later push would never be
// removed remotely.
func (e *Engine) DeleteRemote(ctx context.Context, ids []string) error {
	if e.svc == nil || len(ids) == 0 {
		return nil
	}

	err := e.svc.DeleteItems(ctx, ids)
	if err != nil {
		e.logf("remote delete failed: %v", err)

		return fmt.Errorf("remote delete: %w", err)
	}

	return nil
}

// Subscribe opens the live change channel and applies events serially in
// receipt order until the context ends or Unsubscribe is called.
// Subscribing twice is a no-op.
func (e *Engine) Subscribe(ctx context.Context) error {
	if e.svc == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stop != nil {
		return nil
	}

	events, stop, err := e.svc.SubscribeItems(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	done := make(chan struct{})
	e.stop = stop
	e.done = done

	go func() {
		defer close(done)

		for event := range events {
			e.apply(event)
		}
	}()

	return nil
}

// Unsubscribe tears down the live channel. Idempotent and safe to call
// even if never subscribed.
func (e *Engine) Unsubscribe() {
	e.mu.Lock()
	stop := e.stop
	done := e.done
	e.stop = nil
	e.done = nil
	e.mu.Unlock()

	if stop == nil {
		return
	}

	stop()
	<-done
}

// apply folds one change event into the local collection.
//
// Insert events apply only when the row belongs to the active list and
// the id is unknown locally; that suppresses the echo of this client's
// own optimistic insert. Updates overwrite by id, last writer wins.
// Deletes remove the row if present. All three are idempotent.
func (e *Engine) apply(event remote.Event) {
	switch event.Type {
	case remote.EventInsert:
		if event.New == nil {
			return
		}

		if event.New.ListID != e.state.CurrentList() {
			return
		}

		if e.state.HasItem(event.New.ID) {
			return
		}

		e.state.UpsertItem(event.New.Item())
		e.logf("applied insert %s", event.New.ID)

	case remote.EventUpdate:
		if event.New == nil {
			return
		}

		// Overwrite a known row wherever it lives; adopt unknown rows
		// only for the active list (a late insert seen as update).
		if !e.state.HasItem(event.New.ID) && event.New.ListID != e.state.CurrentList() {
			return
		}

		e.state.UpsertItem(event.New.Item())
		e.logf("applied update %s", event.New.ID)

	case remote.EventDelete:
		if event.Old == nil {
			return
		}

		if e.state.RemoveItem(event.Old.ID) {
			e.logf("applied delete %s", event.Old.ID)
		}
	}
}
