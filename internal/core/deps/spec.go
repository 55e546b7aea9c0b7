// Package deps models Cargo dependency declarations and folds the
// declarations of several starters into one conflict-resolved set.
package deps

import (
	"slices"
	"sort"
)

// Spec is a single dependency declaration.
// An empty Version means "any version"; a nil DefaultFeatures means Cargo's default (true).
type Spec struct {
	Version         string
	Features        []string
	Optional        bool
	DefaultFeatures *bool

	// Alternate sources. All empty means crates.io.
	Path     string
	Git      string
	Branch   string
	Tag      string
	Rev      string
	Registry string
	Package  string
}

// IsSimple reports whether the spec can be written as `name = "version"`.
func (s Spec) IsSimple() bool {
	return s.Version != "" &&
		len(s.Features) == 0 &&
		!s.Optional &&
		s.DefaultFeatures == nil &&
		!s.HasAlternateSource()
}

// HasAlternateSource reports whether the dependency is not a plain registry crate.
func (s Spec) HasAlternateSource() bool {
	return s.Path != "" || s.Git != "" || s.Branch != "" || s.Tag != "" ||
		s.Rev != "" || s.Registry != "" || s.Package != ""
}

func (s Spec) sameSource(o Spec) bool {
	return s.Path == o.Path &&
		s.Git == o.Git &&
		s.Branch == o.Branch &&
		s.Tag == o.Tag &&
		s.Rev == o.Rev &&
		s.Registry == o.Registry &&
		s.Package == o.Package
}

// Clone returns a deep copy of s.
func (s Spec) Clone() Spec {
	c := s
	c.Features = slices.Clone(s.Features)
	if s.DefaultFeatures != nil {
		v := *s.DefaultFeatures
		c.DefaultFeatures = &v
	}
	return c
}

// Set maps a dependency name to its declaration.
type Set map[string]Spec

// NewSet creates an empty Set.
func NewSet() Set {
	return make(Set)
}

// Names returns the dependency names in lexical order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
