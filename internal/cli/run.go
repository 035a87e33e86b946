package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"tobuy/internal/remote"
	"tobuy/internal/shop"
	"tobuy/internal/syncer"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
)

// Run is the main entry point. Returns exit code. Stdin is accepted for
// signature stability but unused: the shell talks to the terminal through
// liner directly.
func Run(ctx context.Context, _ io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	cfg, err := shop.LoadConfig(shop.LoadConfigInput{
		WorkDir:           workDir,
		ConfigPath:        flags.configPath,
		StatePathOverride: flags.statePath,
		Env:               env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cmd := flags.remaining[0]
	cmdArgs := flags.remaining[1:]

	if cmd == "-h" || cmd == helpFlag {
		printUsage(out)

		return 0
	}

	state, err := shop.Load(cfg.StatePathAbs)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	var svc remote.Service
	if cfg.Configured() {
		svc = remote.NewClient(cfg.RemoteURL, cfg.RemoteKey)
	}

	engine := syncer.New(state, svc, func(format string, a ...any) {
		fprintln(errOut, "sync:", fmt.Sprintf(format, a...))
	})

	app := &App{State: state, Cfg: cfg, Engine: engine, Env: env}
	ioCtx := NewIO(out, errOut)

	var cmdErr error

	switch cmd {
	case "add":
		cmdErr = cmdAdd(ctx, ioCtx, app, cmdArgs)
	case "ls":
		cmdErr = cmdLs(ioCtx, app, cmdArgs)
	case "buy":
		cmdErr = cmdBuy(ctx, ioCtx, app, cmdArgs)
	case "rm":
		cmdErr = cmdRm(ctx, ioCtx, app, cmdArgs)
	case "clear":
		cmdErr = cmdClear(ctx, ioCtx, app, cmdArgs)
	case "reorder":
		cmdErr = cmdReorder(ctx, ioCtx, app, cmdArgs)
	case "suggest":
		cmdErr = cmdSuggest(ioCtx, app, cmdArgs)
	case "sync":
		cmdErr = cmdSync(ctx, ioCtx, app, cmdArgs)
	case "push":
		cmdErr = cmdPush(ctx, ioCtx, app, cmdArgs)
	case "pull":
		cmdErr = cmdPull(ctx, ioCtx, app, cmdArgs)
	case "watch":
		cmdErr = cmdWatch(ctx, ioCtx, app, cmdArgs)
	case "list":
		cmdErr = cmdList(ctx, ioCtx, app, cmdArgs)
	case "store":
		cmdErr = cmdStore(ioCtx, app, cmdArgs)
	case "whereami":
		cmdErr = cmdWhereami(ioCtx, app, cmdArgs)
	case "shell":
		cmdErr = cmdShell(ctx, ioCtx, app, cmdArgs)
	case "config":
		cmdErr = cmdConfig(ioCtx, app, cmdArgs)
	default:
		fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}

	if cmdErr != nil {
		fprintln(errOut, "error:", cmdErr)

		return 1
	}

	// Every command persists through the same path. The blob is small;
	// rewriting it for read-only commands keeps the save logic in one
	// place.
	if saveErr := state.Save(cfg.StatePathAbs); saveErr != nil {
		fprintln(errOut, "error:", saveErr)

		return 1
	}

	ioCtx.Finish()

	return 0
}

type globalFlags struct {
	workDir    string
	configPath string
	statePath  string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --state flag
	if arg == "--state" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.statePath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--state="); ok {
		flags.statePath = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}
	}

	return false
}

func printUsage(writer io.Writer) {
	fprintln(writer, `tobuy - local-first shared shopping list

Usage: tobuy [options] <command> [args]

Options:
  -C, --cwd <dir>    Run as if started in <dir>
  -c, --config       Use specified config file
  --state <file>     Use specified state file

Commands:`)
	fprintln(writer, addHelp)
	fprintln(writer, lsHelp)
	fprintln(writer, buyHelp)
	fprintln(writer, rmHelp)
	fprintln(writer, clearHelp)
	fprintln(writer, reorderHelp)
	fprintln(writer, suggestHelp)
	fprintln(writer, syncHelp)
	fprintln(writer, watchHelp)
	fprintln(writer, listHelp)
	fprintln(writer, storeHelp)
	fprintln(writer, whereamiHelp)
	fprintln(writer, shellHelp)
	fprintln(writer, configHelp)
}
