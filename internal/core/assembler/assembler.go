// Package assembler lays out generated crates inside the workspace.
//
// Each request owns <workspace>/<identity>/, which holds the crate directory
// <name>/ with exactly one manifest and one entry-point file. Nothing here
// removes a directory on failure; Sweep reclaims stale ones.
package assembler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nightconcept/cratesmith/internal/core/manifest"
	"github.com/nightconcept/cratesmith/internal/core/project"
)

// Error reports a filesystem failure while building the project tree.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Assembler creates project trees under a workspace root.
type Assembler struct {
	workspace string
}

// New creates an Assembler rooted at workspace.
func New(workspace string) *Assembler {
	return &Assembler{workspace: workspace}
}

// Workspace returns the root directory.
func (a *Assembler) Workspace() string {
	return a.workspace
}

// Project is one assembled crate.
type Project struct {
	ID   string
	Root string // <workspace>/<ID>
	Name string
	Kind project.TargetKind
}

// CrateDir is the directory that ends up in the archive.
func (p *Project) CrateDir() string {
	return filepath.Join(p.Root, p.Name)
}

// ManifestPath is the location of Cargo.toml.
func (p *Project) ManifestPath() string {
	return filepath.Join(p.CrateDir(), manifest.FileName)
}

// EntryPointPath is the location of src/main.rs or src/lib.rs.
func (p *Project) EntryPointPath() string {
	return filepath.Join(p.CrateDir(), filepath.FromSlash(p.Kind.EntryPoint()))
}

// Reserve creates the identity directory. It fails with an error matching
// fs.ErrExist when the directory is already there, and never reuses it.
func (a *Assembler) Reserve(id string) error {
	root := filepath.Join(a.workspace, id)
	if err := os.Mkdir(root, 0755); err != nil {
		return &Error{Op: "create project root", Path: root, Err: err}
	}
	return nil
}

// Create lays out the crate skeleton inside a reserved identity directory
// and writes the entry-point source for kind.
func (a *Assembler) Create(id, name string, kind project.TargetKind) (*Project, error) {
	p := &Project{
		ID:   id,
		Root: filepath.Join(a.workspace, id),
		Name: name,
		Kind: kind,
	}
	srcDir := filepath.Dir(p.EntryPointPath())
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return nil, &Error{Op: "create source directory", Path: srcDir, Err: err}
	}
	if err := writeNew(p.EntryPointPath(), EntryPointSource(kind)); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteManifest writes Cargo.toml. It may be called once per project.
func (p *Project) WriteManifest(content string) error {
	return writeNew(p.ManifestPath(), content)
}

// writeNew refuses to overwrite: a generation flow owns its files exclusively.
func writeNew(path, content string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return &Error{Op: "create file", Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	if _, err := file.WriteString(content); err != nil {
		return &Error{Op: "write file", Path: path, Err: err}
	}
	return nil
}

// Sweep removes identity directories (and stray archives) in workspace whose
// modification time is older than maxAge. It returns the removed names.
func Sweep(workspace string, maxAge time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(workspace)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace %s: %w", workspace, err)
	}

	var removed []string
	var errs []error
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		path := filepath.Join(workspace, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, entry.Name())
	}
	return removed, errors.Join(errs...)
}
