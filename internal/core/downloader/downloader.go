// Package downloader provides functionality to download files from URLs.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxBodySize caps downloads; starter manifests are small.
const maxBodySize = 4 << 20

// StatusError is returned when the server answers with anything but 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to download from %s: received status code %d", e.URL, e.StatusCode)
}

// DownloadFile fetches the content from the given URL.
// It returns the content as a byte slice or an error if the download fails
// or if the HTTP status code is not 200 OK.
func DownloadFile(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	return Fetch(ctx, client, url, nil)
}

// Fetch is DownloadFile with extra request headers.
func Fetch(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", url, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform GET request to %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body from %s exceeds %d bytes", url, maxBodySize)
	}
	return body, nil
}
