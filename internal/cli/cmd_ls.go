package cli

import (
	"strings"

	"tobuy/internal/shop"
)

const lsHelp = `  ls                     Show the active list (pending, then bought)`

func cmdLs(o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy ls")
		o.Println()
		o.Println("Show the active list. Pending items come first in their manual")
		o.Println("order, bought items follow newest-first.")

		return nil
	}

	listID := app.State.CurrentList()
	if listID == "" {
		o.Println("no active list (add an item or run 'tobuy list create')")

		return nil
	}

	if list, ok := app.State.ListByID(listID); ok {
		o.Printf("%s (%s)\n", list.Name, list.ShareCode)
	}

	pending := app.State.PendingItems()
	bought := app.State.BoughtItems()

	if len(pending) == 0 && len(bought) == 0 {
		o.Println("(empty)")

		return nil
	}

	for _, item := range pending {
		o.Println(formatItemLine(item))
	}

	for _, item := range bought {
		o.Println(formatItemLine(item))
	}

	return nil
}

func formatItemLine(item shop.Item) string {
	var builder strings.Builder

	builder.WriteString(checkbox(item.IsBought))
	builder.WriteString(" ")
	builder.WriteString(item.Name)

	if item.Category != "" {
		builder.WriteString("  #")
		builder.WriteString(item.Category)
	}

	builder.WriteString("  (")
	builder.WriteString(item.ID)
	builder.WriteString(")")

	return builder.String()
}
