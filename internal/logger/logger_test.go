package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Contains(t, buf.String(), "level=debug")
	assert.Contains(t, buf.String(), "test message arg")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")
	Warn("warn message")

	assert.Zero(t, buf.Len())
}

func TestError_AlwaysLogged(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Error("failed: %d", 42)

	assert.Contains(t, buf.String(), "failed: 42")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Resolve")

	assert.Contains(t, buf.String(), "=== Resolve ===")
}

func TestSetLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	require.NoError(t, SetLevel("info"))
	assert.False(t, IsVerbose())
	Info("visible")
	Debug("hidden")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "hidden")

	assert.Error(t, SetLevel("loud"))
}

func TestWithOperation(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	ctx, entry := WithOperation(context.Background(), "service.add")
	require.NotNil(t, entry)
	assert.Equal(t, "service.add", entry.Data["op"])
	assert.NotEmpty(t, entry.Data["operation_id"])

	again, same := WithOperation(ctx, "other")
	assert.Equal(t, ctx, again)
	assert.Same(t, entry, same)
	assert.Same(t, entry, FromContext(ctx))

	FromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "op=service.add")
}

func TestFromContext_WithoutEntry(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestSetFile(t *testing.T) {
	defer reset()

	path := filepath.Join(t.TempDir(), "restgate.log")
	closer := SetFile(path)
	Error("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
