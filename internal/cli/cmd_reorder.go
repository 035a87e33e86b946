package cli

import (
	"context"
	"errors"
)

const reorderHelp = `  reorder <id>...        Set the manual order of pending items`

var errReorderIDsRequired = errors.New("reorder requires the pending item ids in the desired order")

func cmdReorder(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy reorder <id> <id> ...")
		o.Println()
		o.Println("Set the manual order of the active list's pending items. The ids")
		o.Println("must cover exactly the pending items; bought items are unaffected.")

		return nil
	}

	if len(args) == 0 {
		return errReorderIDsRequired
	}

	if err := app.State.ReorderPending(args); err != nil {
		return err
	}

	o.Printf("reordered %d item(s)\n", len(args))

	if err := app.Engine.Push(ctx); err != nil {
		o.Warn("push failed", "run 'tobuy sync' when back online")
	}

	return nil
}
