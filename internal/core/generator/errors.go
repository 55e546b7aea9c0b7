package generator

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindManifestSection    Kind = "MANIFEST_SECTION"
	KindDependencySection  Kind = "DEPENDENCY_SECTION"
	KindDependencyConflict Kind = "DEPENDENCY_CONFLICT"
	KindStarterLookup      Kind = "STARTER_LOOKUP"
	KindManifestParse      Kind = "MANIFEST_PARSE"
	KindCompression        Kind = "COMPRESSION"
	KindIO                 Kind = "IO"
	KindProjectCreation    Kind = "PROJECT_CREATION"
	KindIdentityExhausted  Kind = "IDENTITY_EXHAUSTED"
)

// Error is the single error type returned by Service. Starter and
// Dependency are set when the failure can be attributed to one.
type Error struct {
	Kind       Kind
	Starter    string
	Dependency string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.describe())
	if e.Starter != "" {
		fmt.Fprintf(&b, " (starter %q)", e.Starter)
	}
	if e.Dependency != "" {
		fmt.Fprintf(&b, " (dependency %q)", e.Dependency)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

func (k Kind) describe() string {
	switch k {
	case KindManifestSection:
		return "could not generate package section"
	case KindDependencySection:
		return "could not generate dependency section"
	case KindDependencyConflict:
		return "conflicting dependency declarations"
	case KindStarterLookup:
		return "could not get starter content"
	case KindManifestParse:
		return "could not parse starter manifest"
	case KindCompression:
		return "could not compress project"
	case KindIO:
		return "could not generate project because of an I/O error"
	case KindProjectCreation:
		return "could not create project"
	case KindIdentityExhausted:
		return "could not allocate a project identity"
	default:
		return "generation failed"
	}
}
