package cli

import (
	"errors"
	"strings"
	"time"

	"tobuy/internal/shop"

	flag "github.com/spf13/pflag"
)

const storeHelp = `  store <subcommand>     Manage store geofences (ls|add|set|rm)`

var errStoreRefRequired = errors.New("store id is required")

func cmdStore(o *IO, app *App, args []string) error {
	if len(args) == 0 || hasHelpFlag(args) {
		printStoreHelp(o)

		return nil
	}

	sub := args[0]
	subArgs := args[1:]

	switch sub {
	case "ls":
		return cmdStoreLs(o, app)
	case "add":
		return cmdStoreAdd(o, app, subArgs)
	case "set":
		return cmdStoreSet(o, app, subArgs)
	case "rm":
		return cmdStoreRm(o, app, subArgs)
	default:
		printStoreHelp(o)

		return errors.New("unknown store subcommand: " + sub)
	}
}

func printStoreHelp(o *IO) {
	o.Println("Usage: tobuy store <subcommand>")
	o.Println()
	o.Println("Subcommands:")
	o.Println("  ls                                             Show registered stores")
	o.Println("  add <name> --lat <f> --lon <f> [--radius <m>]  Register a geofence")
	o.Println("  set <id> [--name|--lat|--lon|--radius]         Edit a geofence")
	o.Println("  rm <id>                                        Remove a store")
}

// defaultRadiusMeters matches the geofence radius used when none is
// given.
const defaultRadiusMeters = 150.0

func cmdStoreLs(o *IO, app *App) error {
	stores := app.State.Stores()
	if len(stores) == 0 {
		o.Println("no stores registered")

		return nil
	}

	current := app.State.CurrentStore()

	for _, store := range stores {
		marker := " "
		if store.ID == current {
			marker = "*"
		}

		o.Printf("%s %s  (%.5f, %.5f) r=%.0fm  visits=%d  (%s)\n",
			marker, store.Name, store.Latitude, store.Longitude, store.Radius, store.VisitCount, store.ID)
	}

	return nil
}

func cmdStoreAdd(o *IO, app *App, args []string) error {
	flagSet := flag.NewFlagSet("store add", flag.ContinueOnError)
	flagSet.SetOutput(&strings.Builder{})

	lat := flagSet.Float64("lat", 0, "Latitude")
	lon := flagSet.Float64("lon", 0, "Longitude")
	radius := flagSet.Float64("radius", defaultRadiusMeters, "Geofence radius in meters")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if !flagSet.Changed("lat") || !flagSet.Changed("lon") {
		return errors.New("--lat and --lon are required")
	}

	name := strings.Join(flagSet.Args(), " ")

	store, err := app.State.AddStore(name, *lat, *lon, *radius, time.Now())
	if err != nil {
		return err
	}

	o.Printf("added store %q (%s)\n", store.Name, store.ID)

	return nil
}

func cmdStoreSet(o *IO, app *App, args []string) error {
	flagSet := flag.NewFlagSet("store set", flag.ContinueOnError)
	flagSet.SetOutput(&strings.Builder{})

	name := flagSet.String("name", "", "Store name")
	lat := flagSet.Float64("lat", 0, "Latitude")
	lon := flagSet.Float64("lon", 0, "Longitude")
	radius := flagSet.Float64("radius", 0, "Geofence radius in meters")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errStoreRefRequired
	}

	// Only explicitly set flags become edits; visit counters are not
	// editable at all.
	var update shop.StoreUpdate

	if flagSet.Changed("name") {
		update.Name = name
	}

	if flagSet.Changed("lat") {
		update.Latitude = lat
	}

	if flagSet.Changed("lon") {
		update.Longitude = lon
	}

	if flagSet.Changed("radius") {
		update.Radius = radius
	}

	store, err := app.State.UpdateStore(flagSet.Arg(0), update)
	if err != nil {
		return err
	}

	o.Printf("updated store %q\n", store.Name)

	return nil
}

func cmdStoreRm(o *IO, app *App, args []string) error {
	if len(args) == 0 {
		return errStoreRefRequired
	}

	if !app.State.DeleteStore(args[0]) {
		return shop.ErrStoreNotFound
	}

	o.Println("removed store")

	return nil
}
