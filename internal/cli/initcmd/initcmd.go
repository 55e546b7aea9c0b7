// Package initcmd implements the 'init' command, which writes cratesmith.toml.
package initcmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/cratesmith/internal/core/config"
)

// Input is where prompts read answers from.
var Input io.Reader = os.Stdin

// promptWithDefault asks for a value and returns defaultValue on an empty answer.
func promptWithDefault(w io.Writer, reader *bufio.Reader, promptText, defaultValue string) (string, error) {
	if defaultValue != "" {
		_, _ = fmt.Fprintf(w, "%s (default: %s): ", promptText, defaultValue)
	} else {
		_, _ = fmt.Fprintf(w, "%s: ", promptText)
	}

	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input for '%s': %w", promptText, err)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}
	return input, nil
}

// GetInitCommand returns the definition for the "init" command.
func GetInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Writes a " + config.FileName + " in the current directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Accept every default without prompting",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing " + config.FileName,
			},
		},
		Action: func(c *cli.Context) error {
			w := c.App.Writer
			target := filepath.Join(".", config.FileName)
			if _, err := os.Stat(target); err == nil && !c.Bool("force") {
				return cli.Exit(fmt.Sprintf("Error: %s already exists (use --force to overwrite)", config.FileName), 1)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return cli.Exit(fmt.Sprintf("Error checking %s: %v", config.FileName, err), 1)
			}

			cfg := config.Default()
			if !c.Bool("yes") {
				_, _ = fmt.Fprintln(w, "Starting cratesmith configuration...")
				reader := bufio.NewReader(Input)
				prompts := []struct {
					text string
					dst  *string
				}{
					{"Manifest label", &cfg.Label},
					{"Workspace directory", &cfg.Workspace},
					{"Starter backend (file, redis, mongo, github)", &cfg.Starters.Backend},
				}
				for _, p := range prompts {
					v, err := promptWithDefault(w, reader, p.text, *p.dst)
					if err != nil {
						return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
					}
					*p.dst = v
				}

				var backendPrompt struct {
					text string
					dst  *string
				}
				switch cfg.Starters.Backend {
				case config.BackendFile:
					backendPrompt.text, backendPrompt.dst = "Starter directory", &cfg.Starters.Dir
				case config.BackendRedis:
					backendPrompt.text, backendPrompt.dst = "Redis address", &cfg.Starters.RedisAddr
				case config.BackendMongo:
					backendPrompt.text, backendPrompt.dst = "MongoDB URI", &cfg.Starters.MongoURI
				case config.BackendGitHub:
					backendPrompt.text, backendPrompt.dst = "GitHub source (owner/repo/dir@ref)", &cfg.Starters.GitHubSource
				}
				if backendPrompt.dst != nil {
					v, err := promptWithDefault(w, reader, backendPrompt.text, *backendPrompt.dst)
					if err != nil {
						return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
					}
					*backendPrompt.dst = v
				}
			}

			if err := cfg.Validate(); err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			if err := config.Write(".", cfg); err != nil {
				return cli.Exit(fmt.Sprintf("Error writing %s: %v", config.FileName, err), 1)
			}
			_, _ = fmt.Fprintf(w, "Successfully wrote %s.\n", config.FileName)
			return nil
		},
	}
}
