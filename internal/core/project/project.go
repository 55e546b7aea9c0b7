package project

import (
	"fmt"
	"strings"
)

// TargetKind selects what the generated crate builds.
type TargetKind string

const (
	// Executable produces a binary crate with src/main.rs.
	Executable TargetKind = "bin"
	// Library produces a library crate with src/lib.rs.
	Library TargetKind = "lib"
)

// ParseTargetKind accepts "bin"/"executable" and "lib"/"library".
func ParseTargetKind(s string) (TargetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bin", "executable":
		return Executable, nil
	case "lib", "library":
		return Library, nil
	default:
		return "", fmt.Errorf("unknown target kind %q (expected bin or lib)", s)
	}
}

// Valid reports whether k is one of the supported target kinds.
func (k TargetKind) Valid() bool {
	return k == Executable || k == Library
}

// EntryPoint returns the crate-relative path of the source file for the kind.
func (k TargetKind) EntryPoint() string {
	if k == Library {
		return "src/lib.rs"
	}
	return "src/main.rs"
}

// PackageInfo holds the metadata for the [package] section.
type PackageInfo struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Author      *string `json:"author,omitempty"`
}

// Description is one generation request.
// Starters are kept in request order and are not deduplicated.
type Description struct {
	Package    PackageInfo `json:"package"`
	TargetKind TargetKind  `json:"target_kind"`
	Starters   []string    `json:"starters"`
}

// NewDescription creates and returns a Description with an initialized starter list.
func NewDescription(name string, kind TargetKind) *Description {
	return &Description{
		Package:    PackageInfo{Name: name},
		TargetKind: kind,
		Starters:   make([]string, 0),
	}
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
