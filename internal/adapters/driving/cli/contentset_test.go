package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// writeSite creates a small static site in a temp directory.
func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o644))
	return dir
}

func TestContentSetCmd_HasSubcommands(t *testing.T) {
	commandNames := make([]string, 0, len(contentSetCmd.Commands()))
	for _, cmd := range contentSetCmd.Commands() {
		commandNames = append(commandNames, cmd.Name())
	}

	for _, name := range []string{"add", "list", "get", "enable", "disable", "delete", "update", "files", "sync", "watch"} {
		assert.Contains(t, commandNames, name)
	}
}

func TestContentSetAddCmd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	svc := env.addService(t, "", "/api")

	out, err := executeCommand("contentset", "add", "/static", "--dir", writeSite(t), "--requires-auth", "--comments", "assets")

	require.NoError(t, err)
	assert.Contains(t, out, "Content set created with 2 files.")

	cs, err := env.sets.Get(context.Background(), domain.Scripted, domain.ContentSetSelector{
		Service: domain.ByID(svc.ID), RequestPath: "/static",
	})
	require.NoError(t, err)
	assert.True(t, cs.RequiresAuth)
	assert.Equal(t, "assets", cs.Comments)
	assert.Equal(t, "/api/static", cs.FullPath())
}

func TestContentSetAddCmd_Errors(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.addService(t, "", "/api")

	_, err := executeCommand("contentset", "add", "static")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = executeCommand("contentset", "add", "/static", "--service", "/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = executeCommand("contentset", "add", "/static", "--dir", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestContentSetListCmd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	api := env.addService(t, "", "/api")
	shop := env.addService(t, "", "/shop")

	out, err := executeCommand("contentset", "list", "--service", "/api")
	require.NoError(t, err)
	assert.Contains(t, out, "No content sets configured.")

	env.addContentSet(t, api, "/static", "")
	env.addContentSet(t, shop, "/img", "")

	out, err = executeCommand("contentset", "list", "-s", "/api")
	require.NoError(t, err)
	assert.Contains(t, out, "/api/static")
	assert.NotContains(t, out, "/shop/img")
	assert.Contains(t, out, "Total: 1 content sets")

	out, err = executeCommand("contentset", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "/api/static")
	assert.Contains(t, out, "/shop/img")
	assert.Contains(t, out, "Total: 2 content sets")
}

func TestContentSetMutationCmds(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()
	svc := env.addService(t, "", "/api")
	id := env.addContentSet(t, svc, "/static", "")

	out, err := executeCommand("contentset", "disable", "/static")
	require.NoError(t, err)
	assert.Contains(t, out, "The content set has been disabled.")

	cs, err := env.sets.Get(ctx, domain.Scripted, domain.ContentSetSelector{ID: &id})
	require.NoError(t, err)
	assert.False(t, cs.Enabled)

	out, err = executeCommand("contentset", "get", id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Content set: /api/static")
	assert.Contains(t, out, "Enabled:       false")

	_, err = executeCommand("contentset", "enable", id.String())
	require.NoError(t, err)

	_, err = executeCommand("contentset", "update", "/static", "--doc", `{"comments": "cdn", "requires_auth": true}`)
	require.NoError(t, err)
	cs, err = env.sets.Get(ctx, domain.Scripted, domain.ContentSetSelector{ID: &id})
	require.NoError(t, err)
	assert.True(t, cs.Enabled)
	assert.True(t, cs.RequiresAuth)
	assert.Equal(t, "cdn", cs.Comments)

	_, err = executeCommand("contentset", "update", "/static")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = executeCommand("contentset", "delete", "/static")
	require.NoError(t, err)
	_, err = env.sets.Get(ctx, domain.Scripted, domain.ContentSetSelector{ID: &id})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContentSetFilesAndSyncCmds(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	svc := env.addService(t, "", "/api")
	dir := writeSite(t)
	env.addContentSet(t, svc, "/static", "")

	out, err := executeCommand("contentset", "files", "/static")
	require.NoError(t, err)
	assert.Contains(t, out, "No files uploaded.")

	out, err = executeCommand("contentset", "sync", "/static", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded 2 files.")

	out, err = executeCommand("contentset", "files")
	require.NoError(t, err)
	assert.Contains(t, out, "/index.html")
	assert.Contains(t, out, "/css/site.css")
	assert.NotContains(t, out, ".DS_Store")
	assert.Contains(t, out, "Total: 2 files")
}

func TestContentSetWatchCmd(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	svc := env.addService(t, "", "/api")
	id := env.addContentSet(t, svc, "/static", "")
	dir := writeSite(t)

	origQuiet, origInterval := watchQuiet, watchInterval
	watchQuiet, watchInterval = 20*time.Millisecond, 10*time.Millisecond
	defer func() { watchQuiet, watchInterval = origQuiet, origInterval }()

	buf := &syncBuffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"contentset", "watch", id.String(), dir})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetContext(context.Background())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return containsAll(buf.String(), "uploaded 2 files to /api/static", "Watching")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("run()"), 0o644))

	require.Eventually(t, func() bool {
		return containsAll(buf.String(), "uploaded 3 files to /api/static")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	files, err := env.sets.Files(context.Background(), domain.Scripted, domain.ContentSetSelector{ID: &id})
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
