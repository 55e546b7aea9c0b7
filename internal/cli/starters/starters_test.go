package starters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/cratesmith/internal/cli/setup"
)

func runStartersCommand(t *testing.T, content string) (string, error) {
	t.Helper()
	t.Setenv("CRATESMITH_CONTENT", content)
	t.Setenv("CRATESMITH_STARTER_BACKEND", "file")
	t.Setenv("CRATESMITH_WORKSPACE", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	color.NoColor = true

	var out bytes.Buffer
	app := &cli.App{
		Name:           "cratesmith",
		Flags:          setup.GlobalFlags(),
		Commands:       []*cli.Command{StartersCmd},
		Writer:         &out,
		ErrWriter:      &bytes.Buffer{},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run([]string{"cratesmith", "ls"})
	return out.String(), err
}

func TestStartersCommand_ListsStarters(t *testing.T) {
	content := t.TempDir()
	files := map[string]string{
		"web.toml":    "[dependencies]\ntokio = \"1\"\naxum = \"0.7\"\n",
		"empty.toml":  "[package]\nname = \"x\"\n",
		"broken.toml": "[dependencies\n",
	}
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(content, name), []byte(text), 0644))
	}

	out, err := runStartersCommand(t, content)
	require.NoError(t, err)
	assert.Contains(t, out, "starters:")
	assert.Contains(t, out, "web axum, tokio")
	assert.Contains(t, out, "empty (no dependencies)")
	assert.Contains(t, out, "broken (invalid:")
}

func TestStartersCommand_Empty(t *testing.T) {
	out, err := runStartersCommand(t, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No starters found")
}

func TestStartersCommand_MissingDirectory(t *testing.T) {
	_, err := runStartersCommand(t, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starter store")
}
