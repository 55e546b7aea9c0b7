// Package generator runs the end-to-end scaffolding pipeline: it mints an
// identity, lays out the crate, folds the requested starters into one
// dependency table, writes Cargo.toml and returns the zipped tree.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nightconcept/cratesmith/internal/core/assembler"
	"github.com/nightconcept/cratesmith/internal/core/config"
	"github.com/nightconcept/cratesmith/internal/core/deps"
	"github.com/nightconcept/cratesmith/internal/core/hasher"
	"github.com/nightconcept/cratesmith/internal/core/identity"
	"github.com/nightconcept/cratesmith/internal/core/logging"
	"github.com/nightconcept/cratesmith/internal/core/manifest"
	"github.com/nightconcept/cratesmith/internal/core/packager"
	"github.com/nightconcept/cratesmith/internal/core/project"
	"github.com/nightconcept/cratesmith/internal/core/starter"
)

// Service generates projects. It is safe for concurrent use; requests share
// nothing but the workspace directory namespace.
type Service struct {
	label      string
	assembler  *assembler.Assembler
	identities *identity.Generator
	store      starter.Store
	logger     *log.Logger
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	logger      *log.Logger
	identityOpt []identity.Option
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(l *log.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// WithIdentityOptions passes options through to the identity generator.
func WithIdentityOptions(opts ...identity.Option) Option {
	return func(o *serviceOptions) { o.identityOpt = append(o.identityOpt, opts...) }
}

// New creates a Service from cfg. The workspace must already exist.
func New(cfg config.Config, store starter.Store, opts ...Option) *Service {
	o := serviceOptions{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	idOpts := append([]identity.Option{identity.WithMaxAttempts(cfg.MaxIdentityAttempts)}, o.identityOpt...)
	return &Service{
		label:      cfg.Label,
		assembler:  assembler.New(cfg.Workspace),
		identities: identity.New(cfg.Workspace, idOpts...),
		store:      store,
		logger:     o.logger,
	}
}

// Result is a generated project. Root stays on disk until Remove is called.
type Result struct {
	ID      string
	Root    string
	Name    string
	Archive []byte
	Digest  string // "sha256:<hex>" of Archive
}

// Remove deletes the project's workspace directory, archive included.
func (r *Result) Remove() error {
	if r == nil || r.Root == "" {
		return nil
	}
	return os.RemoveAll(r.Root)
}

// Generate builds the project described by desc and returns the archive bytes.
// The workspace directory is left in place; callers that need to clean up use Build.
func (s *Service) Generate(ctx context.Context, desc *project.Description) ([]byte, error) {
	res, err := s.Build(ctx, desc)
	if err != nil {
		return nil, err
	}
	return res.Archive, nil
}

// Build runs the pipeline and returns the archive together with its location.
// Every error is an *Error. Nothing is cleaned up on failure.
func (s *Service) Build(ctx context.Context, desc *project.Description) (*Result, error) {
	logger := s.loggerFor(ctx)
	if desc == nil {
		return nil, &Error{Kind: KindProjectCreation, Err: errors.New("project description is nil")}
	}
	if !desc.TargetKind.Valid() {
		return nil, &Error{Kind: KindManifestSection, Err: fmt.Errorf("unsupported target kind %q", desc.TargetKind)}
	}
	name := desc.Package.Name
	// Rendering validates the name, which also becomes a directory, so it
	// happens before anything touches disk.
	packageSection, err := manifest.PackageSection(desc.Package)
	if err != nil {
		return nil, &Error{Kind: KindManifestSection, Err: err}
	}

	id, err := s.identities.Claim(desc, s.assembler.Reserve)
	if err != nil {
		if errors.Is(err, identity.ErrExhausted) {
			return nil, &Error{Kind: KindIdentityExhausted, Err: err}
		}
		return nil, &Error{Kind: KindProjectCreation, Err: err}
	}
	logger.Debug("reserved project identity", "id", id, "name", name, "kind", desc.TargetKind)

	proj, err := s.assembler.Create(id, name, desc.TargetKind)
	if err != nil {
		return nil, &Error{Kind: KindProjectCreation, Err: err}
	}

	dependencySection, err := s.dependencySection(ctx, logger, desc.Starters)
	if err != nil {
		return nil, err
	}

	content := manifest.Compose(s.label, packageSection, dependencySection)
	if err := proj.WriteManifest(content); err != nil {
		return nil, &Error{Kind: KindIO, Err: err}
	}

	archive, err := packager.Package(proj.Root, proj.Name)
	if err != nil {
		var perr *packager.Error
		if errors.As(err, &perr) {
			return nil, &Error{Kind: KindCompression, Err: err}
		}
		return nil, &Error{Kind: KindIO, Err: err}
	}
	digest := hasher.CalculateSHA256(archive)
	logger.Info("generated project", "id", id, "name", name, "starters", len(desc.Starters), "bytes", len(archive), "digest", digest)

	return &Result{ID: id, Root: proj.Root, Name: name, Archive: archive, Digest: digest}, nil
}

// dependencySection fetches every starter first, then parses and merges
// them in request order. No starters means no section.
func (s *Service) dependencySection(ctx context.Context, logger *log.Logger, starters []string) (string, error) {
	if len(starters) == 0 {
		return "", nil
	}
	if s.store == nil {
		return "", &Error{Kind: KindStarterLookup, Starter: starters[0], Err: errors.New("no starter store configured")}
	}

	texts := make([]string, 0, len(starters))
	for _, name := range starters {
		text, err := s.store.Get(ctx, name)
		if err != nil {
			return "", &Error{Kind: KindStarterLookup, Starter: name, Err: err}
		}
		logger.Debug("fetched starter", "starter", name, "bytes", len(text))
		texts = append(texts, text)
	}

	sets := make([]deps.Set, 0, len(texts))
	for i, text := range texts {
		set, err := manifest.ParseDependencies(text)
		if err != nil {
			gerr := &Error{Kind: KindManifestParse, Starter: starters[i], Err: err}
			var perr *manifest.ParseError
			if errors.As(err, &perr) {
				gerr.Dependency = perr.Dependency
			}
			return "", gerr
		}
		sets = append(sets, set)
	}

	merged, err := deps.Merge(sets)
	if err != nil {
		gerr := &Error{Kind: KindDependencyConflict, Err: err}
		var cerr *deps.ConflictError
		if errors.As(err, &cerr) {
			gerr.Dependency = cerr.Name
		}
		return "", gerr
	}

	section, err := manifest.DependencySection(merged)
	if err != nil {
		gerr := &Error{Kind: KindDependencySection, Err: err}
		var serr *manifest.SectionError
		if errors.As(err, &serr) {
			gerr.Dependency = serr.Dependency
		}
		return "", gerr
	}
	return section, nil
}

// Starters lists the names available from the store.
func (s *Service) Starters(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list starters: %w", err)
	}
	return names, nil
}

// Workspace returns the directory holding project identities.
func (s *Service) Workspace() string {
	return s.assembler.Workspace()
}

func (s *Service) loggerFor(ctx context.Context) *log.Logger {
	if l, ok := logging.Lookup(ctx); ok {
		return l
	}
	return s.logger
}
