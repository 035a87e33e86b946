package cli

import (
	"fmt"

	"tobuy/internal/shop"
	"tobuy/internal/syncer"
)

// App bundles the loaded state, resolved config, and sync engine for the
// duration of one invocation. Commands mutate State directly; Run saves
// the blob afterwards.
type App struct {
	State  *shop.State
	Cfg    shop.Config
	Engine *syncer.Engine
	Env    map[string]string
}

// findItem resolves an item reference (id or case-insensitive name) in
// the active list.
func (a *App) findItem(ref string) (shop.Item, error) {
	item, ok := a.State.FindItem(ref)
	if !ok {
		return shop.Item{}, fmt.Errorf("%w: %s", shop.ErrItemNotFound, ref)
	}

	return item, nil
}

// checkbox renders the bought marker for list output.
func checkbox(bought bool) string {
	if bought {
		return "[x]"
	}

	return "[ ]"
}
