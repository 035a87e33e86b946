package cli

import "context"

const watchHelp = `  watch                  Apply live remote changes until interrupted`

func cmdWatch(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy watch")
		o.Println()
		o.Println("Subscribe to the remote change feed and fold events into the")
		o.Println("local list until interrupted (Ctrl-C). The final state is saved")
		o.Println("on exit.")

		return nil
	}

	if !app.Engine.Configured() {
		o.Println("remote sync is not configured (run 'tobuy config set-remote')")

		return nil
	}

	// Start from the server's truth so the feed only has to carry deltas.
	if err := app.Engine.FullSync(ctx); err != nil {
		o.Warn("initial sync failed", "events will still apply on top of the local copy")
	}

	if err := app.Engine.Subscribe(ctx); err != nil {
		return err
	}

	o.Println("watching for changes (Ctrl-C to stop)")

	<-ctx.Done()
	app.Engine.Unsubscribe()

	return nil
}
