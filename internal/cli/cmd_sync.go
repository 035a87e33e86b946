package cli

import "context"

const syncHelp = `  sync | push | pull     Full sync, upload only, or download only`

func cmdSync(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy sync")
		o.Println()
		o.Println("Push local items, then pull the active list from the remote.")
		o.Println("The pull is authoritative: local rows it does not return are")
		o.Println("dropped.")

		return nil
	}

	if !app.Engine.Configured() {
		o.Println("remote sync is not configured (run 'tobuy config set-remote')")

		return nil
	}

	if err := app.Engine.FullSync(ctx); err != nil {
		return err
	}

	o.Println("synced")

	return nil
}

func cmdPush(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy push")
		o.Println()
		o.Println("Upload the active list's items to the remote.")

		return nil
	}

	if !app.Engine.Configured() {
		o.Println("remote sync is not configured (run 'tobuy config set-remote')")

		return nil
	}

	if err := app.Engine.Push(ctx); err != nil {
		return err
	}

	o.Println("pushed")

	return nil
}

func cmdPull(ctx context.Context, o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy pull")
		o.Println()
		o.Println("Replace the active list's items with the remote copy.")

		return nil
	}

	if !app.Engine.Configured() {
		o.Println("remote sync is not configured (run 'tobuy config set-remote')")

		return nil
	}

	if err := app.Engine.Pull(ctx); err != nil {
		return err
	}

	o.Println("pulled")

	return nil
}
