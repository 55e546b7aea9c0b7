// Package generate implements the 'generate' command, which runs the
// scaffolding pipeline locally and writes the archive to disk.
package generate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/cratesmith/internal/cli/setup"
	"github.com/nightconcept/cratesmith/internal/core/generator"
	"github.com/nightconcept/cratesmith/internal/core/project"
)

// GenerateCmd defines the 'generate' command.
var GenerateCmd = &cli.Command{
	Name:      "generate",
	Aliases:   []string{"gen"},
	Usage:     "Generates a Cargo project archive from starters",
	UsageText: "cratesmith generate --name <crate> [--lib] [--starter <name>...] [--output <file.zip>]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Usage:    "Package name of the generated crate",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Package description",
		},
		&cli.StringFlag{
			Name:  "author",
			Usage: "Package author",
		},
		&cli.BoolFlag{
			Name:  "lib",
			Usage: "Generate a library crate instead of an executable",
		},
		&cli.StringSliceFlag{
			Name:    "starter",
			Aliases: []string{"s"},
			Usage:   "Starter to fold into [dependencies] (repeatable, order matters)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Archive path (default: <name>.zip)",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Overwrite the output file if it exists",
		},
	},
	Action: generateAction,
}

func generateAction(c *cli.Context) error {
	cfg, err := setup.Config(c)
	if err != nil {
		return err
	}
	logger := setup.Logger(c, cfg)

	desc, err := descriptionFromFlags(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	output := c.String("output")
	if output == "" {
		output = desc.Package.Name + ".zip"
	}
	if !c.Bool("force") {
		if _, err := os.Stat(output); err == nil {
			return cli.Exit(fmt.Sprintf("Error: %s already exists (use --force to overwrite)", output), 1)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return cli.Exit(fmt.Sprintf("Error: cannot check %s: %v", output, err), 1)
		}
	}

	gen, store, err := setup.Service(c, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	res, err := gen.Build(c.Context, desc)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error [%s]: %v", generator.KindOf(err), err), 1)
	}
	defer func() {
		if err := res.Remove(); err != nil {
			logger.Warn("failed to remove project directory", "path", res.Root, "err", err)
		}
	}()

	if err := os.WriteFile(output, res.Archive, 0644); err != nil {
		return cli.Exit(fmt.Sprintf("Error writing %s: %v", output, err), 1)
	}

	nameColor := color.New(color.FgMagenta, color.Bold).SprintFunc()
	pathColor := color.New(color.FgHiBlack).SprintFunc()
	starterColor := color.New(color.FgCyan).SprintFunc()

	_, _ = fmt.Fprintf(c.App.Writer, "Generated %s (%s) -> %s (%d bytes)\n",
		nameColor(desc.Package.Name), desc.TargetKind, pathColor(output), len(res.Archive))
	if len(desc.Starters) > 0 {
		_, _ = fmt.Fprintf(c.App.Writer, "starters: %s\n", starterColor(strings.Join(desc.Starters, ", ")))
	}
	return nil
}

func descriptionFromFlags(c *cli.Context) (*project.Description, error) {
	kind := project.Executable
	if c.Bool("lib") {
		kind = project.Library
	}
	desc := project.NewDescription(strings.TrimSpace(c.String("name")), kind)
	desc.Package.Description = project.StringPtr(c.String("description"))
	desc.Package.Author = project.StringPtr(c.String("author"))
	for _, s := range c.StringSlice("starter") {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, errors.New("starter names must not be empty")
		}
		desc.Starters = append(desc.Starters, s)
	}
	return desc, nil
}
