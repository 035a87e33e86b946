package cli

import (
	"context"
	"errors"
	"strings"
	"time"
)

const buyHelp = `  buy <id|name>          Toggle an item between pending and bought`

var errItemRefRequired = errors.New("item id or name is required")

func cmdBuy(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy buy <id|name>")
		o.Println()
		o.Println("Toggle an item. Buying freezes its position; un-buying (or")
		o.Println("re-adding) revives it at its historical rank.")

		return nil
	}

	ref := strings.Join(args, " ")
	if strings.TrimSpace(ref) == "" {
		return errItemRefRequired
	}

	item, err := app.findItem(ref)
	if err != nil {
		return err
	}

	toggled, err := app.State.ToggleItem(item.ID, time.Now())
	if err != nil {
		return err
	}

	if toggled.IsBought {
		o.Printf("bought %q\n", toggled.Name)
	} else {
		o.Printf("%q is pending again\n", toggled.Name)
	}

	if err := app.Engine.Push(ctx); err != nil {
		o.Warn("push failed", "run 'tobuy sync' when back online")
	}

	return nil
}
