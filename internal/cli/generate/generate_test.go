package generate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/cratesmith/internal/cli/setup"
)

// setupGenerateTestEnvironment points the configuration at fresh workspace
// and starter directories populated with starters.
func setupGenerateTestEnvironment(t *testing.T, starters map[string]string) (workspace, outDir string) {
	t.Helper()
	workspace = t.TempDir()
	content := t.TempDir()
	outDir = t.TempDir()
	for name, text := range starters {
		require.NoError(t, os.WriteFile(filepath.Join(content, name+".toml"), []byte(text), 0644))
	}
	t.Setenv("CRATESMITH_WORKSPACE", workspace)
	t.Setenv("CRATESMITH_CONTENT", content)
	t.Setenv("CRATESMITH_STARTER_BACKEND", "file")
	t.Setenv("NO_COLOR", "1")
	color.NoColor = true
	return workspace, outDir
}

func runGenerateCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := &cli.App{
		Name:           "cratesmith",
		Flags:          setup.GlobalFlags(),
		Commands:       []*cli.Command{GenerateCmd},
		Writer:         &out,
		ErrWriter:      &errOut,
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run(append([]string{"cratesmith", "generate"}, args...))
	return out.String(), err
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		require.NoError(t, err)
		_ = rc.Close()
		files[f.Name] = buf.String()
	}
	return files
}

func TestGenerateCommand_Success(t *testing.T) {
	workspace, outDir := setupGenerateTestEnvironment(t, map[string]string{
		"web": "[dependencies]\nfoo = { version = \"1.0\", features = [\"x\"] }\n",
		"cli": "[dependencies]\nfoo = { version = \"1.0\", features = [\"y\"] }\nclap = \"4\"\n",
	})
	output := filepath.Join(outDir, "demo.zip")

	out, err := runGenerateCommand(t, "--name", "demo", "--author", "Jane", "--lib",
		"--starter", "web", "--starter", "cli", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated demo")
	assert.Contains(t, out, "web, cli")

	files := readArchive(t, output)
	require.Contains(t, files, "demo/Cargo.toml")
	require.Contains(t, files, "demo/src/lib.rs")
	assert.Contains(t, files["demo/Cargo.toml"], `foo = { version = "1.0", features = ["x", "y"] }`)
	assert.Contains(t, files["demo/Cargo.toml"], `clap = "4"`)

	entries, err := os.ReadDir(workspace)
	require.NoError(t, err)
	assert.Empty(t, entries, "project directory should be removed after writing the archive")
}

func TestGenerateCommand_MissingStarter(t *testing.T) {
	_, outDir := setupGenerateTestEnvironment(t, nil)
	output := filepath.Join(outDir, "demo.zip")

	_, err := runGenerateCommand(t, "--name", "demo", "--starter", "nope", "--output", output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTER_LOOKUP")
	assert.NoFileExists(t, output)
}

func TestGenerateCommand_RefusesToOverwrite(t *testing.T) {
	_, outDir := setupGenerateTestEnvironment(t, nil)
	output := filepath.Join(outDir, "demo.zip")
	require.NoError(t, os.WriteFile(output, []byte("keep"), 0644))

	_, err := runGenerateCommand(t, "--name", "demo", "--output", output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	_, err = runGenerateCommand(t, "--name", "demo", "--output", output, "--force")
	require.NoError(t, err)
	assert.Contains(t, readArchive(t, output), "demo/src/main.rs")
}

func TestGenerateCommand_RequiresName(t *testing.T) {
	setupGenerateTestEnvironment(t, nil)
	_, err := runGenerateCommand(t)
	assert.Error(t, err)
}
