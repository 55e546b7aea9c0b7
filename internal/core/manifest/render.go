package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nightconcept/cratesmith/internal/core/deps"
	"github.com/nightconcept/cratesmith/internal/core/project"
)

const (
	InitialVersion    = "0.1.0"
	Edition           = "2021"
	NoDescription     = "No description"
	UnspecifiedAuthor = "Unspecified Author"
)

// Section identifies which part of the manifest failed to render.
type Section string

const (
	SectionPackage      Section = "package"
	SectionDependencies Section = "dependencies"
)

// SectionError is returned when a manifest section cannot be rendered.
type SectionError struct {
	Section    Section
	Dependency string
	Err        error
}

func (e *SectionError) Error() string {
	if e.Dependency != "" {
		return fmt.Sprintf("render %s section: dependency %q: %v", e.Section, e.Dependency, e.Err)
	}
	return fmt.Sprintf("render %s section: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

var crateName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

const maxCrateNameLen = 64

// ValidateName checks a package or dependency name against Cargo's rules.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New("name is empty")
	case len(name) > maxCrateNameLen:
		return fmt.Errorf("name %q is longer than %d characters", name, maxCrateNameLen)
	case !crateName.MatchString(name):
		return fmt.Errorf("name %q must start with a letter or '_' and contain only letters, digits, '-' and '_'", name)
	}
	return nil
}

type packageTable struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Authors     []string `toml:"authors"`
	Edition     string   `toml:"edition"`
	Description string   `toml:"description"`
}

type packageDoc struct {
	Package packageTable `toml:"package"`
}

// PackageSection renders the [package] table for pkg.
func PackageSection(pkg project.PackageInfo) (string, error) {
	if err := ValidateName(pkg.Name); err != nil {
		return "", &SectionError{Section: SectionPackage, Err: err}
	}

	doc := packageDoc{Package: packageTable{
		Name:        pkg.Name,
		Version:     InitialVersion,
		Authors:     []string{valueOr(pkg.Author, UnspecifiedAuthor)},
		Edition:     Edition,
		Description: valueOr(pkg.Description, NoDescription),
	}}

	buf := new(bytes.Buffer)
	enc := toml.NewEncoder(buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return "", &SectionError{Section: SectionPackage, Err: err}
	}
	return buf.String(), nil
}

func valueOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

// DependencySection renders the [dependencies] table, one line per entry in
// name order. An empty set renders as the empty string. If any entry fails
// nothing is returned.
func DependencySection(set deps.Set) (string, error) {
	if len(set) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("[dependencies]\n")
	for _, name := range set.Names() {
		line, err := DependencyLine(name, set[name])
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// DependencyLine renders one dependency as a single TOML line.
func DependencyLine(name string, spec deps.Spec) (string, error) {
	fail := func(err error) (string, error) {
		return "", &SectionError{Section: SectionDependencies, Dependency: name, Err: err}
	}
	if err := ValidateName(name); err != nil {
		return fail(err)
	}

	if spec.IsSimple() || isBare(spec) {
		version := spec.Version
		if version == "" {
			version = "*"
		}
		q, err := quote(version)
		if err != nil {
			return fail(err)
		}
		return name + " = " + q, nil
	}

	var fields []string
	for _, kv := range []struct{ key, value string }{
		{"version", spec.Version},
		{"path", spec.Path},
		{"git", spec.Git},
		{"branch", spec.Branch},
		{"tag", spec.Tag},
		{"rev", spec.Rev},
		{"registry", spec.Registry},
		{"package", spec.Package},
	} {
		if kv.value == "" {
			continue
		}
		q, err := quote(kv.value)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", kv.key, err))
		}
		fields = append(fields, kv.key+" = "+q)
	}
	if len(spec.Features) > 0 {
		quoted := make([]string, 0, len(spec.Features))
		for _, f := range spec.Features {
			q, err := quote(f)
			if err != nil {
				return fail(fmt.Errorf("features: %w", err))
			}
			quoted = append(quoted, q)
		}
		fields = append(fields, "features = ["+strings.Join(quoted, ", ")+"]")
	}
	if spec.Optional {
		fields = append(fields, "optional = true")
	}
	if spec.DefaultFeatures != nil {
		fields = append(fields, fmt.Sprintf("default-features = %t", *spec.DefaultFeatures))
	}
	return name + " = { " + strings.Join(fields, ", ") + " }", nil
}

func isBare(spec deps.Spec) bool {
	return spec.Version == "" && len(spec.Features) == 0 && !spec.Optional &&
		spec.DefaultFeatures == nil && !spec.HasAlternateSource()
}

// quote renders s as a TOML basic string.
func quote(s string) (string, error) {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			return "", fmt.Errorf("value %q contains a control character", s)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String(), nil
}

// LabelLine renders the comment line placed at the top of every manifest.
func LabelLine(label string) string {
	return "#" + label + "\n"
}

// Compose joins the label line, the package section and the optional
// dependency section into the manifest text.
func Compose(label, packageSection, dependencySection string) string {
	var b strings.Builder
	b.WriteString(LabelLine(label))
	b.WriteString(packageSection)
	if dependencySection != "" {
		if !strings.HasSuffix(packageSection, "\n") {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
		b.WriteString(dependencySection)
	}
	return b.String()
}
