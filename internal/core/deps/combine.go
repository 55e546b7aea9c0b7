package deps

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Field names the attribute two declarations disagree on.
type Field string

const (
	FieldVersion  Field = "version"
	FieldOptional Field = "optional"
	FieldSource   Field = "source"
)

// ConflictError is returned when two declarations of the same dependency
// cannot be reconciled.
type ConflictError struct {
	Name  string
	Field Field
	Left  Spec
	Right Spec
	Err   error // set when a version constraint could not be parsed
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case FieldVersion:
		if e.Err != nil {
			return fmt.Sprintf("dependency %q: cannot combine versions %q and %q: %v", e.Name, e.Left.Version, e.Right.Version, e.Err)
		}
		return fmt.Sprintf("dependency %q: version requirements %q and %q are incompatible", e.Name, e.Left.Version, e.Right.Version)
	case FieldOptional:
		return fmt.Sprintf("dependency %q: declared optional=%t and optional=%t", e.Name, e.Left.Optional, e.Right.Optional)
	default:
		return fmt.Sprintf("dependency %q: declared with different sources", e.Name)
	}
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Combine merges two declarations of the dependency name into one that
// satisfies both. The result does not depend on argument order.
func Combine(name string, a, b Spec) (Spec, error) {
	if a.Optional != b.Optional {
		return Spec{}, &ConflictError{Name: name, Field: FieldOptional, Left: a, Right: b}
	}
	if !a.sameSource(b) {
		return Spec{}, &ConflictError{Name: name, Field: FieldSource, Left: a, Right: b}
	}

	version, err := combineVersions(a.Version, b.Version)
	if err != nil {
		ce := &ConflictError{Name: name, Field: FieldVersion, Left: a, Right: b}
		if !errors.Is(err, errIncompatible) {
			ce.Err = err
		}
		return Spec{}, ce
	}

	out := a.Clone()
	out.Version = version
	out.Features = unionFeatures(a.Features, b.Features)
	out.DefaultFeatures = combineDefaultFeatures(a.DefaultFeatures, b.DefaultFeatures)
	return out, nil
}

var errIncompatible = errors.New("incompatible version requirements")

// versionLiteral matches the version literals inside a requirement string,
// including partial versions ("1", "1.2") and pre-release tags.
var versionLiteral = regexp.MustCompile(`\d+(?:\.\d+){0,2}(?:-[0-9A-Za-z.]+)?`)

func combineVersions(a, b string) (string, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return a, nil
	}
	if isWildcard(a) {
		return b, nil
	}
	if isWildcard(b) {
		return a, nil
	}

	ca, err := semver.NewConstraint(cargoRequirement(a))
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", a, err)
	}
	cb, err := semver.NewConstraint(cargoRequirement(b))
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", b, err)
	}
	if !overlaps(ca, cb, a, b) {
		return "", errIncompatible
	}

	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ", "), nil
}

func isWildcard(v string) bool {
	return v == "" || v == "*"
}

// cargoRequirement rewrites Cargo's bare requirements ("1.2") into the caret
// form they mean, so the semver library reads them the same way Cargo does.
func cargoRequirement(req string) string {
	parts := strings.Split(req, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p[0] >= '0' && p[0] <= '9' {
			p = "^" + p
		}
		parts[i] = p
	}
	return strings.Join(parts, ", ")
}

// overlaps looks for a version accepted by both constraints. Each requirement
// accepts a union of intervals whose lower bounds are versions written in the
// requirement, or for exclusive bounds the next patch, minor or major of one
// (">1.2" starts at 1.3.0, ">1" at 2.0.0). Checking those points finds a
// common version whenever one exists.
func overlaps(ca, cb *semver.Constraints, a, b string) bool {
	candidates := []*semver.Version{semver.MustParse("0.0.0")}
	for _, lit := range versionLiteral.FindAllString(a+" "+b, -1) {
		v, err := semver.NewVersion(lit)
		if err != nil {
			continue
		}
		patch, minor, major := v.IncPatch(), v.IncMinor(), v.IncMajor()
		candidates = append(candidates, v, &patch, &minor, &major)
	}
	for _, v := range candidates {
		if ca.Check(v) && cb.Check(v) {
			return true
		}
	}
	return false
}

func unionFeatures(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, f := range append(append([]string{}, a...), b...) {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Disabling default features is only kept when both sides ask for it.
func combineDefaultFeatures(a, b *bool) *bool {
	if a == nil || b == nil {
		return nil
	}
	v := *a || *b
	return &v
}
