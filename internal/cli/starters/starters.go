// Package starters implements the 'starters' command.
package starters

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/cratesmith/internal/cli/setup"
	"github.com/nightconcept/cratesmith/internal/core/manifest"
	"github.com/nightconcept/cratesmith/internal/core/starter"
)

// StartersCmd defines the 'starters' command.
var StartersCmd = &cli.Command{
	Name:    "starters",
	Aliases: []string{"ls"},
	Usage:   "Lists the available starters and the dependencies they declare",
	Action: func(c *cli.Context) error {
		cfg, err := setup.Config(c)
		if err != nil {
			return err
		}

		store, err := starter.Open(c.Context, cfg.Starters)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error opening %s starter store: %v", cfg.Starters.Backend, err), 1)
		}
		defer func() { _ = store.Close() }()

		names, err := store.List(c.Context)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error listing starters: %v", err), 1)
		}

		headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()
		nameColor := color.New(color.FgWhite).SprintFunc()
		depColor := color.New(color.FgHiBlack).SprintFunc()
		errColor := color.New(color.FgRed).SprintFunc()

		w := c.App.Writer
		_, _ = fmt.Fprintln(w, headerColor("starters:"))
		if len(names) == 0 {
			_, _ = fmt.Fprintf(w, "No starters found in the %s backend.\n", cfg.Starters.Backend)
			return nil
		}

		for _, name := range names {
			text, err := store.Get(c.Context, name)
			if err != nil {
				_, _ = fmt.Fprintf(w, "%s %s\n", nameColor(name), errColor("(unreadable: "+err.Error()+")"))
				continue
			}
			set, err := manifest.ParseDependencies(text)
			if err != nil {
				_, _ = fmt.Fprintf(w, "%s %s\n", nameColor(name), errColor("(invalid: "+err.Error()+")"))
				continue
			}
			deps := set.Names()
			if len(deps) == 0 {
				_, _ = fmt.Fprintf(w, "%s %s\n", nameColor(name), depColor("(no dependencies)"))
				continue
			}
			_, _ = fmt.Fprintf(w, "%s %s\n", nameColor(name), depColor(strings.Join(deps, ", ")))
		}
		return nil
	},
}
