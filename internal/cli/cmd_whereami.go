package cli

import (
	"errors"
	"strings"
	"time"

	"tobuy/internal/geo"
	"tobuy/internal/shop"

	flag "github.com/spf13/pflag"
)

const whereamiHelp = `  whereami --lat --lon   Resolve the current store and record visits`

var errCoordinatesRequired = errors.New("--lat and --lon are required")

func cmdWhereami(o *IO, app *App, args []string) error {
	flagSet := flag.NewFlagSet("whereami", flag.ContinueOnError)
	flagSet.SetOutput(&strings.Builder{})

	lat := flagSet.Float64("lat", 0, "Latitude")
	lon := flagSet.Float64("lon", 0, "Longitude")
	allow := flagSet.Bool("allow", false, "Grant location permission")
	deny := flagSet.Bool("deny", false, "Deny location permission")

	if hasHelpFlag(args) {
		o.Println("Usage: tobuy whereami --lat <f> --lon <f>")
		o.Println()
		o.Println("Resolve the position against the registered store geofences. A")
		o.Println("transition into a store records one visit; staying put records")
		o.Println("nothing. Requires granted location permission (--allow once).")

		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *allow {
		app.State.SetLocationPermission(shop.PermissionGranted)
		o.Println("location permission granted")
	}

	if *deny {
		app.State.SetLocationPermission(shop.PermissionDenied)
		o.Println("location permission denied")

		return nil
	}

	if !flagSet.Changed("lat") || !flagSet.Changed("lon") {
		if *allow {
			return nil
		}

		return errCoordinatesRequired
	}

	if app.State.LocationPermission() != shop.PermissionGranted {
		o.Println("location permission not granted (run 'tobuy whereami --allow')")

		return nil
	}

	now := time.Now()

	tracker := geo.NewTracker(func(storeID string, at time.Time) {
		// Item names bought during the visit are not known at entry
		// time; the visit starts empty.
		_ = app.State.RecordVisit(shop.StoreVisit{StoreID: storeID, Timestamp: at.UnixMilli()})
	})
	tracker.SetCurrent(app.State.CurrentStore())

	resolved, changed := tracker.Observe(*lat, *lon, placesFromStores(app.State.Stores()), now)

	if err := app.State.SetCurrentStore(resolved); err != nil {
		return err
	}

	switch {
	case resolved == "":
		o.Println("not at a registered store")
	case changed:
		store, _ := app.State.StoreByID(resolved)
		o.Printf("arrived at %q (visit recorded)\n", store.Name)
	default:
		store, _ := app.State.StoreByID(resolved)
		o.Printf("still at %q\n", store.Name)
	}

	return nil
}

func placesFromStores(stores []shop.Store) []geo.Place {
	places := make([]geo.Place, len(stores))
	for i, store := range stores {
		places[i] = geo.Place{
			ID:        store.ID,
			Latitude:  store.Latitude,
			Longitude: store.Longitude,
			Radius:    store.Radius,
		}
	}

	return places
}
