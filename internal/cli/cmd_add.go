package cli

import (
	"context"
	"strings"
	"time"

	"tobuy/internal/shop"

	flag "github.com/spf13/pflag"
)

const addHelp = `  add <name...>          Add an item to the active list
    -c, --category         Category label`

func cmdAdd(ctx context.Context, o *IO, app *App, args []string) error {
	flagSet := flag.NewFlagSet("add", flag.ContinueOnError)
	flagSet.SetOutput(&strings.Builder{})

	category := flagSet.StringP("category", "c", "", "Category label")

	if hasHelpFlag(args) {
		o.Println("Usage: tobuy add [options] <name...>")
		o.Println()
		o.Println("Add an item to the active list. Adding a name that already exists")
		o.Println("as a bought item revives it instead of creating a duplicate.")
		o.Println()
		o.Println("Options:")
		o.Println("  -c, --category   Category label")

		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	name := strings.Join(flagSet.Args(), " ")

	item, outcome, err := app.State.AddItem(name, *category, time.Now())
	if err != nil {
		return err
	}

	switch outcome {
	case shop.OutcomeExisting:
		o.Printf("%q is already on the list\n", item.Name)

		return nil
	case shop.OutcomeRevived:
		o.Printf("revived %q\n", item.Name)
	case shop.OutcomeCreated:
		o.Printf("added %q\n", item.Name)
	}

	// Fire-and-forget push: the item is already committed locally.
	if err := app.Engine.Push(ctx); err != nil {
		o.Warn("push failed", "run 'tobuy sync' when back online")
	}

	return nil
}
