// Package identity mints the workspace directory names of generation requests.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nightconcept/cratesmith/internal/core/hasher"
	"github.com/nightconcept/cratesmith/internal/core/project"
)

const (
	// DefaultMaxAttempts bounds the collision retry loop.
	DefaultMaxAttempts = 16

	idLength = 16
)

// ErrExhausted is returned when every attempt produced an identity that was already taken.
var ErrExhausted = errors.New("no free project identity")

// Generator derives identities from the wall clock and the request's content hash.
type Generator struct {
	workspace   string
	maxAttempts int
	now         func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithMaxAttempts sets the retry bound. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// New creates a Generator for identities under workspace.
func New(workspace string, opts ...Option) *Generator {
	g := &Generator{
		workspace:   workspace,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Candidate derives the identity for one attempt. The attempt number is part
// of the hash input so retries differ even when the clock has not advanced.
func (g *Generator) Candidate(descHash string, attempt int) string {
	input := g.now().UTC().Format(time.RFC3339Nano) + "|" + descHash + "|" + strconv.Itoa(attempt)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:idLength]
}

// Next returns an identity with no directory in the workspace at the time of the check.
func (g *Generator) Next(desc *project.Description) (string, error) {
	return g.Claim(desc, nil)
}

// Claim finds a free identity and passes it to create. The existence check is
// only a hint: a create that fails with fs.ErrExist counts as a collision and
// the loop moves on to the next candidate. Any other create error is returned.
func (g *Generator) Claim(desc *project.Description, create func(id string) error) (string, error) {
	descHash, err := hasher.Description(desc)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		id := g.Candidate(descHash, attempt)
		if g.taken(id) {
			continue
		}
		if create == nil {
			return id, nil
		}
		if err := create(id); err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return "", err
		}
		return id, nil
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, g.maxAttempts)
}

func (g *Generator) taken(id string) bool {
	_, err := os.Lstat(filepath.Join(g.workspace, id))
	return !errors.Is(err, fs.ErrNotExist)
}
