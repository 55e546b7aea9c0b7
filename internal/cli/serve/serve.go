// Package serve implements the 'serve' command, which runs the HTTP API.
package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/cratesmith/internal/cli/setup"
	"github.com/nightconcept/cratesmith/internal/server"
)

// ServeCmd defines the 'serve' command.
var ServeCmd = &cli.Command{
	Name:  "serve",
	Usage: "Serves the project generation API until interrupted",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "Listen host (overrides configuration)",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Listen port (overrides configuration)",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := setup.Config(c)
		if err != nil {
			return err
		}
		if c.IsSet("host") {
			cfg.Host = c.String("host")
		}
		if c.IsSet("port") {
			cfg.Port = c.Int("port")
		}
		if err := cfg.Validate(); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		logger := setup.Logger(c, cfg)

		gen, store, err := setup.Service(c, cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(gen,
			server.WithLogger(logger),
			server.WithSweepAfter(cfg.SweepInterval()),
		)
		if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		return nil
	},
}
