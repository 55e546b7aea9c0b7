// Package starter resolves starter names to raw Cargo.toml text.
//
// Four backends are provided: a directory of <name>.toml files, a Redis
// keyspace, a MongoDB collection and a directory in a GitHub repository.
// Open selects one from configuration.
package starter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// ErrNotFound is returned when no starter has the requested name.
var ErrNotFound = errors.New("starter not found")

// Store is a read-only source of starter manifests.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]string, error)
	Close() error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateName rejects names that could escape the storage namespace.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid starter name %q", name)
	}
	return nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// sortedUnique sorts names in place and drops repeats. Backends that scan
// (redis SCAN, an unindexed mongo collection) may report a name twice.
func sortedUnique(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}
