// Command cratesmith scaffolds Cargo projects from starter manifests.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/cratesmith/internal/cli/generate"
	"github.com/nightconcept/cratesmith/internal/cli/initcmd"
	"github.com/nightconcept/cratesmith/internal/cli/self"
	"github.com/nightconcept/cratesmith/internal/cli/serve"
	"github.com/nightconcept/cratesmith/internal/cli/setup"
	"github.com/nightconcept/cratesmith/internal/cli/starters"
)

var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "cratesmith",
		Usage:   "Scaffold Cargo projects from starter manifests",
		Version: version,
		Flags:   setup.GlobalFlags(),
		Action: func(c *cli.Context) error {
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			initcmd.GetInitCommand(),
			serve.ServeCmd,
			generate.GenerateCmd,
			starters.StartersCmd,
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
