package starter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/nightconcept/cratesmith/internal/core/downloader"
	"github.com/nightconcept/cratesmith/internal/core/source"
)

const githubTimeout = 10 * time.Second

// GitHubStore reads starters from <dir>/<name>.toml in a GitHub repository.
type GitHubStore struct {
	location *source.Location
	client   *http.Client
}

// NewGitHubStore creates a store for loc. A nil client gets a default with a timeout.
func NewGitHubStore(loc *source.Location, client *http.Client) *GitHubStore {
	if client == nil {
		client = &http.Client{Timeout: githubTimeout}
	}
	return &GitHubStore{location: loc, client: client}
}

// Location returns the directory the store reads from.
func (s *GitHubStore) Location() *source.Location {
	return s.location
}

// Get downloads <name>.toml from the raw content host.
func (s *GitHubStore) Get(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	data, err := downloader.DownloadFile(ctx, s.client, s.location.RawURL(name+fileExt))
	if err != nil {
		var statusErr *downloader.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return "", notFound(name)
		}
		return "", fmt.Errorf("failed to fetch starter %q from %s: %w", name, s.location.Canonical(), err)
	}
	return string(data), nil
}

type contentEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// List asks the contents API for the .toml files in the directory.
func (s *GitHubStore) List(ctx context.Context) ([]string, error) {
	body, err := downloader.Fetch(ctx, s.client, s.location.ContentsURL(),
		http.Header{"Accept": []string{"application/vnd.github.v3+json"}})
	if err != nil {
		return nil, fmt.Errorf("failed to list starters in %s: %w", s.location.Canonical(), err)
	}

	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal GitHub API response for %s: %w", s.location.Canonical(), err)
	}

	var names []string
	for _, e := range entries {
		if e.Type != "file" || !strings.HasSuffix(e.Name, fileExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name, fileExt)
		if ValidateName(name) == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close releases idle connections.
func (s *GitHubStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

var _ Store = (*GitHubStore)(nil)
