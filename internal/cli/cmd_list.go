package cli

import (
	"context"
	"errors"
	"strings"

	"tobuy/internal/syncer"
)

const listHelp = `  list <subcommand>      Manage lists (ls|create|join|switch|rename|delete|code)`

var (
	errListNameRequired  = errors.New("list name is required")
	errListRefRequired   = errors.New("list id or share code is required")
	errShareCodeRequired = errors.New("share code is required")
)

func cmdList(ctx context.Context, o *IO, app *App, args []string) error {
	if len(args) == 0 || hasHelpFlag(args) {
		printListHelp(o)

		return nil
	}

	sub := args[0]
	subArgs := args[1:]

	switch sub {
	case "ls":
		return cmdListLs(o, app)
	case "create":
		return cmdListCreate(ctx, o, app, subArgs)
	case "join":
		return cmdListJoin(ctx, o, app, subArgs)
	case "switch":
		return cmdListSwitch(ctx, o, app, subArgs)
	case "rename":
		return cmdListRename(ctx, o, app, subArgs)
	case "delete":
		return cmdListDelete(ctx, o, app, subArgs)
	case "code":
		return cmdListCode(o, app)
	default:
		printListHelp(o)

		return errors.New("unknown list subcommand: " + sub)
	}
}

func printListHelp(o *IO) {
	o.Println("Usage: tobuy list <subcommand>")
	o.Println()
	o.Println("Subcommands:")
	o.Println("  ls                  Show known lists, active one marked with *")
	o.Println("  create <name>       Create a list and switch to it")
	o.Println("  join <code>         Join a shared list by its share code")
	o.Println("  switch <id|code>    Make a list active and pull its items")
	o.Println("  rename <id> <name>  Rename a list (share code is kept)")
	o.Println("  delete <id|code>    Delete a list and its items")
	o.Println("  code                Print the active list's share code")
}

func cmdListLs(o *IO, app *App) error {
	lists := app.State.Lists()
	if len(lists) == 0 {
		o.Println("no lists yet")

		return nil
	}

	current := app.State.CurrentList()

	for _, list := range lists {
		marker := " "
		if list.ID == current {
			marker = "*"
		}

		o.Printf("%s %s  %s  (%s)\n", marker, list.ShareCode, list.Name, list.ID)
	}

	return nil
}

func cmdListCreate(ctx context.Context, o *IO, app *App, args []string) error {
	name := strings.Join(args, " ")
	if strings.TrimSpace(name) == "" {
		return errListNameRequired
	}

	_, result, err := app.Engine.CreateList(ctx, name)
	if err != nil {
		return err
	}

	return printResult(o, result)
}

func cmdListJoin(ctx context.Context, o *IO, app *App, args []string) error {
	if len(args) == 0 {
		return errShareCodeRequired
	}

	_, result, err := app.Engine.JoinList(ctx, args[0])
	if err != nil {
		return err
	}

	return printResult(o, result)
}

func cmdListSwitch(ctx context.Context, o *IO, app *App, args []string) error {
	if len(args) == 0 {
		return errListRefRequired
	}

	_, result, err := app.Engine.SwitchList(ctx, args[0])
	if err != nil {
		return err
	}

	return printResult(o, result)
}

func cmdListRename(ctx context.Context, o *IO, app *App, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: tobuy list rename <id|code> <name>")
	}

	list, ok := app.State.ListByID(args[0])
	if !ok {
		list, ok = app.State.ListByCode(args[0])
	}

	if !ok {
		return errListRefRequired
	}

	_, result, err := app.Engine.RenameList(ctx, list.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	return printResult(o, result)
}

func cmdListDelete(ctx context.Context, o *IO, app *App, args []string) error {
	if len(args) == 0 {
		return errListRefRequired
	}

	result, err := app.Engine.DeleteList(ctx, args[0])
	if err != nil {
		return err
	}

	return printResult(o, result)
}

func cmdListCode(o *IO, app *App) error {
	current := app.State.CurrentList()
	if current == "" {
		o.Println("no active list")

		return nil
	}

	list, ok := app.State.ListByID(current)
	if !ok {
		o.Println("no active list")

		return nil
	}

	o.Println(list.ShareCode)

	return nil
}

// printResult reports a registry outcome. Failures are printed, not
// returned: "code not found" is a normal answer, not a broken command.
func printResult(o *IO, result syncer.Result) error {
	o.Println(result.Message)

	return nil
}
