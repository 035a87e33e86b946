package cli

import (
	"errors"

	"tobuy/internal/shop"
)

const configHelp = `  config <subcommand>    Show or edit configuration (print|set-remote|clear-remote)`

func cmdConfig(o *IO, app *App, args []string) error {
	if len(args) == 0 || hasHelpFlag(args) {
		printConfigHelp(o)

		return nil
	}

	switch args[0] {
	case "print":
		return cmdConfigPrint(o, app)
	case "set-remote":
		return cmdConfigSetRemote(o, app, args[1:])
	case "clear-remote":
		return cmdConfigClearRemote(o, app)
	default:
		printConfigHelp(o)

		return errors.New("unknown config subcommand: " + args[0])
	}
}

func printConfigHelp(o *IO) {
	o.Println("Usage: tobuy config <subcommand>")
	o.Println()
	o.Println("Subcommands:")
	o.Println("  print                    Show the resolved configuration")
	o.Println("  set-remote <url> <key>   Store remote credentials in the user config")
	o.Println("  clear-remote             Remove remote credentials")
}

func cmdConfigPrint(o *IO, app *App) error {
	cfg := app.Cfg

	o.Println("remote_url:", orUnset(cfg.RemoteURL))

	if cfg.RemoteKey != "" {
		o.Println("remote_key: (set)")
	} else {
		o.Println("remote_key: (unset)")
	}

	o.Println("state_path:", cfg.StatePathAbs)

	o.Println()
	o.Println("# Sources:")

	if cfg.Sources.Global != "" {
		o.Println("#   global:", cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("#   project:", cfg.Sources.Project)
	}

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("#   (using defaults only)")
	}

	return nil
}

func cmdConfigSetRemote(o *IO, app *App, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: tobuy config set-remote <url> <key>")
	}

	cfg := app.Cfg
	cfg.RemoteURL = args[0]
	cfg.RemoteKey = args[1]

	path, err := shop.SaveUserConfig(cfg, app.Env)
	if err != nil {
		return err
	}

	o.Println("remote configured in", path)

	return nil
}

func cmdConfigClearRemote(o *IO, app *App) error {
	cfg := app.Cfg
	cfg.RemoteURL = ""
	cfg.RemoteKey = ""

	path, err := shop.SaveUserConfig(cfg, app.Env)
	if err != nil {
		return err
	}

	o.Println("remote credentials cleared in", path)

	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}

	return v
}
