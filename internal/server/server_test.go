// Package server_test contains tests for the server package.
package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/cratesmith/internal/core/config"
	"github.com/nightconcept/cratesmith/internal/core/generator"
	"github.com/nightconcept/cratesmith/internal/core/hasher"
	"github.com/nightconcept/cratesmith/internal/core/starter"
	"github.com/nightconcept/cratesmith/internal/server"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	store := starter.NewMapStore(map[string]string{
		"web":   "[dependencies]\nfoo = { version = \"1.0\", features = [\"x\"] }\n",
		"extra": "[dependencies]\nfoo = { version = \"1.0\", features = [\"y\"] }\n",
		"opt":   "[dependencies]\nfoo = { version = \"1.0\", optional = true }\n",
	})
	srv := server.New(generator.New(cfg, store))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, cfg.Workspace
}

func postProject(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/projects", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) server.ErrorResponse {
	t.Helper()
	var body server.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestCreateProject(t *testing.T) {
	t.Parallel()
	ts, workspace := newTestServer(t)

	resp := postProject(t, ts, `{"package":{"name":"demo","author":"Jane"},"target_kind":"lib","starters":["web","extra"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="demo.zip"`)
	assert.NotEmpty(t, resp.Header.Get(server.RequestIDHeader))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, hasher.CalculateSHA256(data), resp.Header.Get(server.ArchiveDigestHeader))
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	var cargo string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "demo/Cargo.toml" {
			rc, err := f.Open()
			require.NoError(t, err)
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			_ = rc.Close()
			cargo = string(b)
		}
	}
	assert.ElementsMatch(t, []string{"demo/Cargo.toml", "demo/src/lib.rs"}, names)
	assert.Contains(t, cargo, `foo = { version = "1.0", features = ["x", "y"] }`)
	assert.Contains(t, cargo, `"Jane"`)

	// The project directory is removed once the response is written.
	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(workspace)
		return err == nil && len(entries) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateProject_Errors(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"package":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown field", `{"package":{"name":"demo"},"flavour":"mint"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad target kind", `{"package":{"name":"demo"},"target_kind":"dylib"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing starter", `{"package":{"name":"demo"},"starters":["nope"]}`, http.StatusNotFound, "STARTER_LOOKUP"},
		{"conflict", `{"package":{"name":"demo"},"starters":["web","opt"]}`, http.StatusUnprocessableEntity, "DEPENDENCY_CONFLICT"},
		{"invalid name", `{"package":{"name":"../x"}}`, http.StatusUnprocessableEntity, "MANIFEST_SECTION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postProject(t, ts, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, resp.Header.Get(server.RequestIDHeader), body.RequestID)
		})
	}
}

func TestCreateProject_RejectsNonJSON(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/v1/projects", "text/plain", strings.NewReader("demo"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestListStarters(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/starters")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body server.StartersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"extra", "opt", "web"}, body.Starters)
}

func TestHealthAndNotFound(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/nowhere")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t)
	const id = "8f14e45f-ceea-467f-a0e6-3c2b1d4a5e6f"

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(server.RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(server.RequestIDHeader))

	req.Header.Set(server.RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(server.RequestIDHeader))
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, http.StatusNotFound, server.StatusFor(generator.KindStarterLookup))
	assert.Equal(t, http.StatusUnprocessableEntity, server.StatusFor(generator.KindDependencyConflict))
	assert.Equal(t, http.StatusUnprocessableEntity, server.StatusFor(generator.KindManifestParse))
	assert.Equal(t, http.StatusInternalServerError, server.StatusFor(generator.KindCompression))
	assert.Equal(t, http.StatusInternalServerError, server.StatusFor(generator.KindIdentityExhausted))
	assert.Equal(t, http.StatusInternalServerError, server.StatusFor(""))
}

func TestSweep(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	srv := server.New(generator.New(cfg, nil), server.WithSweepAfter(time.Hour))

	stale := filepath.Join(cfg.Workspace, "stale")
	fresh := filepath.Join(cfg.Workspace, "fresh")
	require.NoError(t, os.Mkdir(stale, 0755))
	require.NoError(t, os.Mkdir(fresh, 0755))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	srv.Sweep()
	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	srv := server.New(generator.New(cfg, nil))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
