// Package setup loads the configuration, logger and starter store shared by
// the cratesmith commands.
package setup

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/cratesmith/internal/core/config"
	"github.com/nightconcept/cratesmith/internal/core/generator"
	"github.com/nightconcept/cratesmith/internal/core/logging"
	"github.com/nightconcept/cratesmith/internal/core/starter"
)

// Global flag names, defined on the app and read from any subcommand.
const (
	ConfigFlag  = "config"
	VerboseFlag = "verbose"
)

// GlobalFlags returns the flags every command understands.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c"},
			Usage:   "Path to " + config.FileName,
			EnvVars: []string{"CRATESMITH_CONFIG"},
		},
		&cli.BoolFlag{
			Name:  VerboseFlag,
			Usage: "Enable debug logging",
		},
	}
}

// Config loads the configuration selected by the global flags.
func Config(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String(ConfigFlag))
	if err != nil {
		return cfg, cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
	}
	if c.Bool(VerboseFlag) {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// Logger writes to the app's error stream at the configured level.
func Logger(c *cli.Context, cfg config.Config) *log.Logger {
	return logging.New(c.App.ErrWriter, cfg.Level())
}

// Service prepares the workspace, opens the starter store and builds the
// generator. The caller closes the returned store.
func Service(c *cli.Context, cfg config.Config, logger *log.Logger) (*generator.Service, starter.Store, error) {
	if err := cfg.EnsureWorkspace(); err != nil {
		return nil, nil, cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	store, err := starter.Open(c.Context, cfg.Starters)
	if err != nil {
		return nil, nil, cli.Exit(fmt.Sprintf("Error opening %s starter store: %v", cfg.Starters.Backend, err), 1)
	}
	return generator.New(cfg, store, generator.WithLogger(logger)), store, nil
}
