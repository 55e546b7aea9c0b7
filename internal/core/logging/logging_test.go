// Package logging_test contains tests for the logging package.
package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/nightconcept/cratesmith/internal/core/logging"
)

func TestNew_FiltersByLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.New(&buf, log.InfoLevel)

	l.Debug("hidden")
	l.Info("shown", "id", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "abc")
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	l := logging.Discard()
	ctx := logging.WithLogger(context.Background(), l)
	assert.Same(t, l, logging.FromContext(ctx))
	assert.Same(t, log.Default(), logging.FromContext(context.Background()))
}

func TestLookup(t *testing.T) {
	t.Parallel()
	_, ok := logging.Lookup(context.Background())
	assert.False(t, ok)

	l := logging.Discard()
	got, ok := logging.Lookup(logging.WithLogger(context.Background(), l))
	assert.True(t, ok)
	assert.Same(t, l, got)
}
