package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"

	"tobuy/internal/shop"
)

const shellHelp = `  shell                  Interactive shopping mode`

// cmdShell runs the interactive loop: bare text adds items (with
// tab-completion from purchase history), a few keywords operate on the
// list. Live remote changes apply in the background while the shell is
// open.
func cmdShell(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy shell")
		o.Println()
		o.Println("Interactive shopping mode. Type an item name to add it; tab")
		o.Println("completes from purchase history. Commands: ls, buy <id|name>,")
		o.Println("rm <id|name>, clear, sync, help, exit.")

		return nil
	}

	if err := app.Engine.Subscribe(ctx); err != nil {
		o.Warn("live updates unavailable", "changes from other devices arrive on the next sync")
	}
	defer app.Engine.Unsubscribe()

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(typed string) []string {
		return shellCompletions(app.State, typed)
	})

	if f, err := os.Open(app.Cfg.HistoryPath()); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	o.Println("tobuy shell - type an item name to add it, 'help' for commands")

	for {
		input, err := line.Prompt("tobuy> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		if done := shellDispatch(ctx, o, app, input); done {
			break
		}
	}

	saveShellHistory(line, app.Cfg.HistoryPath())

	return nil
}

// shellDispatch handles one shell line. Returns true to exit the loop.
func shellDispatch(ctx context.Context, o *IO, app *App, input string) bool {
	fields := strings.Fields(input)
	keyword := strings.ToLower(fields[0])
	rest := strings.Join(fields[1:], " ")

	switch keyword {
	case "exit", "quit", "q":
		return true

	case "help", "?":
		o.Println("Commands:")
		o.Println("  <item name>      Add an item")
		o.Println("  ls               Show the list")
		o.Println("  buy <id|name>    Toggle bought")
		o.Println("  rm <id|name>     Delete an item")
		o.Println("  clear            Delete bought items")
		o.Println("  sync             Full sync now")
		o.Println("  exit / quit / q  Leave the shell")

	case "ls", "list":
		if err := cmdLs(o, app, nil); err != nil {
			o.Println("error:", err)
		}

	case "buy":
		if err := cmdBuy(ctx, o, app, []string{rest}); err != nil {
			o.Println("error:", err)
		}

	case "rm", "del":
		if err := cmdRm(ctx, o, app, []string{rest}); err != nil {
			o.Println("error:", err)
		}

	case "clear":
		if err := cmdClear(ctx, o, app, nil); err != nil {
			o.Println("error:", err)
		}

	case "sync":
		if err := cmdSync(ctx, o, app, nil); err != nil {
			o.Println("error:", err)
		}

	default:
		// Anything else is an item name.
		shellAdd(ctx, o, app, input)
	}

	return false
}

func shellAdd(ctx context.Context, o *IO, app *App, name string) {
	item, outcome, err := app.State.AddItem(name, "", time.Now())
	if err != nil {
		o.Println("error:", err)

		return
	}

	switch outcome {
	case shop.OutcomeExisting:
		o.Printf("%q is already on the list\n", item.Name)

		return
	case shop.OutcomeRevived:
		o.Printf("revived %q\n", item.Name)
	case shop.OutcomeCreated:
		o.Printf("added %q\n", item.Name)
	}

	if err := app.Engine.Push(ctx); err != nil {
		o.Println("(push failed, will sync later)")
	}
}

// shellCompletions completes keywords first, then item suggestions from
// purchase history.
func shellCompletions(state *shop.State, typed string) []string {
	keywords := []string{"ls", "buy", "rm", "clear", "sync", "help", "exit", "quit"}

	var completions []string

	lower := strings.ToLower(typed)
	for _, keyword := range keywords {
		if strings.HasPrefix(keyword, lower) && lower != "" {
			completions = append(completions, keyword)
		}
	}

	completions = append(completions, state.Suggest(typed)...)

	return completions
}

func saveShellHistory(line *liner.State, path string) {
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		_, _ = line.WriteHistory(f)
		_ = f.Close()
	}
}
