package file

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"RESTGATE_DSN", "RESTGATE_CONFIG_DIR", "RESTGATE_LOG_LEVEL", "RESTGATE_LOG_FILE"} {
		t.Setenv(name, "")
	}
}

func TestLoadEnv_Unset(t *testing.T) {
	clearEnv(t)

	env, err := LoadEnv()

	require.NoError(t, err)
	assert.Equal(t, Env{}, env)
}

func TestLoadEnv_Set(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESTGATE_DSN", "mysql://root@tcp(db:3306)/gw")
	t.Setenv("RESTGATE_LOG_LEVEL", "debug")

	env, err := LoadEnv()

	require.NoError(t, err)
	assert.Equal(t, "mysql://root@tcp(db:3306)/gw", env.DSN)
	assert.Equal(t, "debug", env.LogLevel)
	assert.Empty(t, env.ConfigDir)
}

func TestResolve_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Set(KeyDatabaseDSN, "from-file.db"))
	require.NoError(t, cfg.Set(KeyOutputFormat, "json"))

	tests := []struct {
		name  string
		flags Overrides
		env   Env
		want  string
	}{
		{"flag wins", Overrides{DSN: "flag.db", ConfigDir: dir}, Env{DSN: "env.db"}, "flag.db"},
		{"env over file", Overrides{ConfigDir: dir}, Env{DSN: "env.db"}, "env.db"},
		{"file", Overrides{}, Env{ConfigDir: dir}, "from-file.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store, err := Resolve(tt.flags, tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.DSN)
			assert.Equal(t, dir, s.ConfigDir)
			assert.Equal(t, dir, store.Dir())
			assert.Equal(t, "json", s.OutputFormat)
		})
	}
}

func TestResolve_DefaultDSN(t *testing.T) {
	dir := t.TempDir()

	s, _, err := Resolve(Overrides{ConfigDir: dir, LogFile: "flag.log"}, Env{LogFile: "env.log", LogLevel: "warn"})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "metadata.db"), s.DSN)
	assert.Equal(t, "flag.log", s.LogFile)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "text", s.OutputFormat)
}
