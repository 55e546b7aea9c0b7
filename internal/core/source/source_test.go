// Package source_test contains tests for the source package.
package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/cratesmith/internal/core/source"
)

func TestParseLocation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		owner string
		repo  string
		dir   string
		ref   string
	}{
		{"shorthand with dir", "github:owner/repo/starters@main", "owner", "repo", "starters", "main"},
		{"shorthand nested dir", "github:owner/repo/a/b@v1.0.0", "owner", "repo", "a/b", "v1.0.0"},
		{"shorthand root", "github:owner/repo@abc123", "owner", "repo", "", "abc123"},
		{"url with ref", "https://github.com/owner/repo/starters@dev", "owner", "repo", "starters", "dev"},
		{"tree url", "https://github.com/owner/repo/tree/main/starters/rust", "owner", "repo", "starters/rust", "main"},
		{"tree url root", "https://github.com/owner/repo/tree/main", "owner", "repo", "", "main"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			loc, err := source.ParseLocation(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.owner, loc.Owner)
			assert.Equal(t, tt.repo, loc.Repo)
			assert.Equal(t, tt.dir, loc.Dir)
			assert.Equal(t, tt.ref, loc.Ref)
		})
	}
}

func TestParseLocation_Errors(t *testing.T) {
	t.Parallel()
	for _, input := range []string{
		"github:owner/repo/starters",
		"github:owner/repo/starters@",
		"github:owner@main",
		"https://gitlab.com/owner/repo/starters@main",
		"https://github.com/owner/repo/blob/main/web.toml",
		"https://github.com/owner/repo/starters",
		"github:owner/repo/../etc@main",
		"://bad",
	} {
		_, err := source.ParseLocation(input)
		assert.Error(t, err, input)
	}
}

func TestLocationURLs(t *testing.T) {
	t.Parallel()
	loc, err := source.ParseLocation("github:owner/repo/starters@main")
	require.NoError(t, err)

	assert.Equal(t, "github:owner/repo/starters@main", loc.Canonical())
	assert.Equal(t, "https://raw.githubusercontent.com/owner/repo/main/starters/web.toml", loc.RawURL("web.toml"))
	assert.Equal(t, "https://api.github.com/repos/owner/repo/contents/starters?ref=main", loc.ContentsURL())

	root, err := source.ParseLocation("github:owner/repo@v1")
	require.NoError(t, err)
	assert.Equal(t, "https://raw.githubusercontent.com/owner/repo/v1/web.toml", root.RawURL("web.toml"))
	assert.Equal(t, "https://api.github.com/repos/owner/repo/contents?ref=v1", root.ContentsURL())
}
