// Package self implements 'self update', which replaces the running binary
// with the latest GitHub release.
package self

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/urfave/cli/v2"
)

// DefaultRepository is the GitHub slug releases are fetched from.
const DefaultRepository = "nightconcept/cratesmith"

// NewSelfCommand creates a new command for self-management.
func NewSelfCommand() *cli.Command {
	return &cli.Command{
		Name:  "self",
		Usage: "Manage the cratesmith binary itself",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update cratesmith to the latest version",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Automatically confirm the update",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Check for available updates without installing",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "GitHub update source as 'owner/repo'",
						Value: DefaultRepository,
					},
				},
				Action: updateAction,
			},
		},
	}
}

// ParseVersion accepts "vX.Y.Z" and "X.Y.Z".
func ParseVersion(v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(v), "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing version '%s': %w", v, err)
	}
	return parsed, nil
}

// ValidateSlug checks the 'owner/repo' form of --source.
func ValidateSlug(slug string) error {
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid --source format, expected 'owner/repo', got: %s", slug)
	}
	return nil
}

func updateAction(c *cli.Context) error {
	w := c.App.Writer
	verbose := c.Bool("verbose")
	currentVersionStr := c.App.Version

	currentSemVer, err := ParseVersion(currentVersionStr)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error %v. Ensure version is like vX.Y.Z or X.Y.Z.", err), 1)
	}

	repoSlug := c.String("source")
	if err := ValidateSlug(repoSlug); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if verbose {
		_, _ = fmt.Fprintf(w, "cratesmith %s, checking %s\n", currentSemVer, repoSlug)
	}

	ghSource, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error creating GitHub source: %v", err), 1)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: ghSource})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to initialize updater: %v", err), 1)
	}

	latestRelease, found, err := updater.DetectLatest(c.Context, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error detecting latest version: %v", err), 1)
	}
	if !found || !latestRelease.GreaterThan(currentSemVer.String()) {
		_, _ = fmt.Fprintf(w, "Current version %s is already the latest.\n", currentVersionStr)
		return nil
	}

	_, _ = fmt.Fprintf(w, "New version available: %s (current: %s)\n", latestRelease.Version(), currentVersionStr)
	if verbose && latestRelease.ReleaseNotes != "" {
		_, _ = fmt.Fprintf(w, "Release Notes:\n%s\n", latestRelease.ReleaseNotes)
	}
	if c.Bool("check") {
		return nil
	}

	if !c.Bool("yes") {
		_, _ = fmt.Fprint(w, "Do you want to update? (y/N): ")
		input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(strings.ToLower(input)) != "y" {
			_, _ = fmt.Fprintln(w, "Update cancelled.")
			return nil
		}
	}

	execPath, err := os.Executable()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Could not get executable path: %v", err), 1)
	}
	if err := updater.UpdateTo(c.Context, latestRelease, execPath); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to update: %v", err), 1)
	}
	_, _ = fmt.Fprintf(w, "Successfully updated to version %s.\n", latestRelease.Version())
	return nil
}
