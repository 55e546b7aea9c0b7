// Package source locates starter directories hosted on GitHub.
package source

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	// DefaultRawBaseURL serves file contents at <owner>/<repo>/<ref>/<path>.
	DefaultRawBaseURL = "https://raw.githubusercontent.com"
	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com"
)

// Location is a directory inside a GitHub repository at a fixed ref.
type Location struct {
	Owner string
	Repo  string
	Dir   string // slash separated, empty for the repository root
	Ref   string // branch, tag or commit SHA

	RawBaseURL string
	APIBaseURL string
}

// ParseLocation accepts the shorthand "github:owner/repo[/dir]@ref", the
// equivalent "https://github.com/owner/repo[/dir]@ref" and a tree URL
// "https://github.com/owner/repo/tree/<ref>[/dir]".
func ParseLocation(s string) (*Location, error) {
	s = strings.TrimSpace(s)
	if content, ok := strings.CutPrefix(s, "github:"); ok {
		return parseWithRef(s, content)
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source URL '%s': %w", s, err)
	}
	if strings.ToLower(u.Hostname()) != "github.com" {
		return nil, fmt.Errorf("unsupported source URL host: %s. Only GitHub URLs are currently supported", u.Hostname())
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 4 && parts[2] == "tree" {
		return newLocation(parts[0], parts[1], strings.Join(parts[4:], "/"), parts[3])
	}
	if len(parts) >= 3 && (parts[2] == "blob" || parts[2] == "raw") {
		return nil, fmt.Errorf("%s points at a file, expected a directory", s)
	}
	return parseWithRef(s, strings.Trim(u.Path, "/"))
}

// parseWithRef handles "owner/repo[/dir]@ref".
func parseWithRef(original, content string) (*Location, error) {
	lastAt := strings.LastIndex(content, "@")
	if lastAt == -1 {
		return nil, fmt.Errorf("ambiguous GitHub source '%s': specify a branch/tag/commit via '@' (e.g., owner/repo/starters@main)", original)
	}
	ref := content[lastAt+1:]
	if ref == "" {
		return nil, fmt.Errorf("invalid GitHub source '%s': ref part is empty after @", original)
	}
	parts := strings.Split(content[:lastAt], "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid GitHub source '%s': expected owner/repo[/dir]@ref", original)
	}
	return newLocation(parts[0], parts[1], strings.Join(parts[2:], "/"), ref)
}

func newLocation(owner, repo, dir, ref string) (*Location, error) {
	if owner == "" || repo == "" || ref == "" {
		return nil, fmt.Errorf("owner, repository and ref are required, got %q/%q@%q", owner, repo, ref)
	}
	dir = strings.Trim(dir, "/")
	if dir != "" && path.Clean(dir) != dir {
		return nil, fmt.Errorf("invalid directory %q", dir)
	}
	for _, seg := range strings.Split(dir, "/") {
		if seg == ".." {
			return nil, fmt.Errorf("invalid directory %q", dir)
		}
	}
	return &Location{
		Owner:      owner,
		Repo:       repo,
		Dir:        dir,
		Ref:        ref,
		RawBaseURL: DefaultRawBaseURL,
		APIBaseURL: DefaultAPIBaseURL,
	}, nil
}

// Canonical returns the "github:owner/repo[/dir]@ref" form.
func (l *Location) Canonical() string {
	return fmt.Sprintf("github:%s@%s", path.Join(l.Owner, l.Repo, l.Dir), l.Ref)
}

// RawURL is the download URL of file inside the directory.
func (l *Location) RawURL(file string) string {
	return strings.TrimRight(l.RawBaseURL, "/") + "/" +
		path.Join(l.Owner, l.Repo, url.PathEscape(l.Ref), l.Dir, url.PathEscape(file))
}

// ContentsURL is the GitHub API listing of the directory.
// See: https://docs.github.com/en/rest/repos/contents#get-repository-content
func (l *Location) ContentsURL() string {
	p := path.Join("repos", l.Owner, l.Repo, "contents", l.Dir)
	return strings.TrimRight(l.APIBaseURL, "/") + "/" + p + "?ref=" + url.QueryEscape(l.Ref)
}
