// Package manifest_test contains tests for the manifest package.
package manifest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/cratesmith/internal/core/deps"
	"github.com/nightconcept/cratesmith/internal/core/manifest"
)

func TestParseDependencies_Valid(t *testing.T) {
	t.Parallel()
	starter := `
[package]
name = "ignored"
version = "9.9.9"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
log = "0.4"
local = { path = "../local", optional = true }
tokio = { git = "https://github.com/tokio-rs/tokio", branch = "master", default-features = false }

[dependencies.rand]
version = "0.8"
package = "rand_core"

[dev-dependencies]
pretty_assertions = "1"
`
	set, err := manifest.ParseDependencies(starter)
	require.NoError(t, err)
	require.Len(t, set, 5)

	assert.Equal(t, deps.Spec{Version: "1.0", Features: []string{"derive"}}, set["serde"])
	assert.Equal(t, deps.Spec{Version: "0.4"}, set["log"])
	assert.Equal(t, deps.Spec{Path: "../local", Optional: true}, set["local"])
	assert.Equal(t, "https://github.com/tokio-rs/tokio", set["tokio"].Git)
	assert.Equal(t, "master", set["tokio"].Branch)
	require.NotNil(t, set["tokio"].DefaultFeatures)
	assert.False(t, *set["tokio"].DefaultFeatures)
	assert.Equal(t, deps.Spec{Version: "0.8", Package: "rand_core"}, set["rand"])
	assert.NotContains(t, set, "pretty_assertions", "dev-dependencies are not merged")
}

func TestParseDependencies_NoDependencies(t *testing.T) {
	t.Parallel()
	set, err := manifest.ParseDependencies("[package]\nname = \"x\"\n")
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Empty(t, set)

	set, err = manifest.ParseDependencies("")
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestParseDependencies_InvalidTOML(t *testing.T) {
	t.Parallel()
	_, err := manifest.ParseDependencies("[dependencies\nserde = \"1\"")
	require.Error(t, err)

	var pe *manifest.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Empty(t, pe.Dependency)
	assert.NotNil(t, pe.Err)
}

func TestParseDependencies_BadEntries(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		dep     string
	}{
		{"integer value", "[dependencies]\nserde = 1\n", "serde"},
		{"unknown key", "[dependencies]\nserde = { version = \"1\", workspace = true }\n", "serde"},
		{"features not strings", "[dependencies]\nserde = { version = \"1\", features = [1, 2] }\n", "serde"},
		{"optional not bool", "[dependencies]\nlog = { version = \"1\", optional = \"yes\" }\n", "log"},
		{"version not string", "[dependencies]\nlog = { version = 1 }\n", "log"},
	}
	for _, tt := range tests {
		_, err := manifest.ParseDependencies(tt.content)
		require.Error(t, err, tt.name)

		var pe *manifest.ParseError
		require.True(t, errors.As(err, &pe), tt.name)
		assert.Equal(t, tt.dep, pe.Dependency, tt.name)
		assert.Contains(t, err.Error(), tt.dep, tt.name)
	}
}

func TestParseDependencies_DefaultFeaturesUnderscore(t *testing.T) {
	t.Parallel()
	set, err := manifest.ParseDependencies("[dependencies]\nx = { version = \"1\", default_features = true }\n")
	require.NoError(t, err)
	require.NotNil(t, set["x"].DefaultFeatures)
	assert.True(t, *set["x"].DefaultFeatures)
}
