package cli

import (
	"context"
	"strings"
)

const rmHelp = `  rm <id|name>           Delete an item`

const clearHelp = `  clear                  Delete all bought items of the active list`

func cmdRm(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy rm <id|name>")
		o.Println()
		o.Println("Delete an item from the active list, locally and remotely.")

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

	app.State.DeleteItem(item.ID)
	o.Printf("removed %q\n", item.Name)

	// Deletion cannot ride the upsert push; it needs an explicit remote
	// delete.
	if err := app.Engine.DeleteRemote(ctx, []string{item.ID}); err != nil {
		o.Warn("remote delete failed", "the item may reappear on the next pull")
	}

	return nil
}

func cmdClear(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy clear")
		o.Println()
		o.Println("Delete all bought items of the active list.")

		return nil
	}

	removed := app.State.ClearBought()
	if len(removed) == 0 {
		o.Println("nothing to clear")

		return nil
	}

	o.Printf("cleared %d bought item(s)\n", len(removed))

	if err := app.Engine.DeleteRemote(ctx, removed); err != nil {
		o.Warn("remote delete failed", "cleared items may reappear on the next pull")
	}

	return nil
}
