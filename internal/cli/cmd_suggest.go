package cli

import "strings"

const suggestHelp = `  suggest <text>         Autocomplete suggestions from purchase history`

func cmdSuggest(o *IO, app *App, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: tobuy suggest <text>")
		o.Println()
		o.Println("Suggest up to three previously bought items matching the typed")
		o.Println("text. Items already on the list are excluded.")

		return nil
	}

	typed := strings.Join(args, " ")

	for _, name := range app.State.Suggest(typed) {
		o.Println(name)
	}

	return nil
}
