// Package manifest reads starter manifests and renders the sections of the
// generated Cargo.toml.
package manifest

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/nightconcept/cratesmith/internal/core/deps"
)

// FileName is the name of the generated manifest inside the crate directory.
const FileName = "Cargo.toml"

// ParseError reports a starter manifest that is not valid TOML or whose
// [dependencies] table contains an entry that cannot be read.
type ParseError struct {
	Dependency string // empty when the whole document is invalid
	Reason     string
	Err        error
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if e.Dependency != "" {
		msg = fmt.Sprintf("dependency %q: %s", e.Dependency, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

type starterFile struct {
	Dependencies map[string]any `toml:"dependencies"`
}

// ParseDependencies reads the [dependencies] table of a starter manifest.
// Every other table in the document is ignored.
func ParseDependencies(text string) (deps.Set, error) {
	var doc starterFile
	if _, err := toml.Decode(text, &doc); err != nil {
		return nil, &ParseError{Reason: "invalid TOML", Err: err}
	}

	names := make([]string, 0, len(doc.Dependencies))
	for name := range doc.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	set := deps.NewSet()
	for _, name := range names {
		spec, err := parseSpec(name, doc.Dependencies[name])
		if err != nil {
			return nil, err
		}
		set[name] = spec
	}
	return set, nil
}

func parseSpec(name string, raw any) (deps.Spec, error) {
	switch v := raw.(type) {
	case string:
		return deps.Spec{Version: v}, nil
	case map[string]any:
		return parseTable(name, v)
	default:
		return deps.Spec{}, &ParseError{Dependency: name, Reason: fmt.Sprintf("expected a version string or a table, got %T", raw)}
	}
}

func parseTable(name string, table map[string]any) (deps.Spec, error) {
	var spec deps.Spec

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := table[key]
		var err error
		switch key {
		case "version":
			spec.Version, err = asString(value)
		case "path":
			spec.Path, err = asString(value)
		case "git":
			spec.Git, err = asString(value)
		case "branch":
			spec.Branch, err = asString(value)
		case "tag":
			spec.Tag, err = asString(value)
		case "rev":
			spec.Rev, err = asString(value)
		case "registry":
			spec.Registry, err = asString(value)
		case "package":
			spec.Package, err = asString(value)
		case "optional":
			spec.Optional, err = asBool(value)
		case "default-features", "default_features":
			var b bool
			b, err = asBool(value)
			spec.DefaultFeatures = &b
		case "features":
			spec.Features, err = asStrings(value)
		default:
			return deps.Spec{}, &ParseError{Dependency: name, Reason: fmt.Sprintf("unsupported key %q", key)}
		}
		if err != nil {
			return deps.Spec{}, &ParseError{Dependency: name, Reason: fmt.Sprintf("key %q", key), Err: err}
		}
	}
	return spec, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
	return b, nil
}

func asStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected an array of strings, found %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected an array of strings, got %T", v)
	}
}
