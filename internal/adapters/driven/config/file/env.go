package file

import (
	"errors"
	"path/filepath"

	"github.com/joeshaw/envdecode"
)

// Env holds the settings read from the environment.
type Env struct {
	DSN       string `env:"RESTGATE_DSN"`
	ConfigDir string `env:"RESTGATE_CONFIG_DIR"`
	LogLevel  string `env:"RESTGATE_LOG_LEVEL"`
	LogFile   string `env:"RESTGATE_LOG_FILE"`
}

// LoadEnv decodes the RESTGATE_* variables. Unset variables are left empty.
func LoadEnv() (Env, error) {
	var env Env
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Env{}, err
	}
	return env, nil
}

// Settings are the effective connection, logging and output settings.
type Settings struct {
	DSN          string
	ConfigDir    string
	LogLevel     string
	LogFile      string
	OutputFormat string
}

// Overrides are values given on the command line; empty means unset.
type Overrides struct {
	DSN       string
	ConfigDir string
	LogFile   string
}

// Resolve merges flags, environment, config file and defaults, in that
// order of precedence. The config file is opened from the resolved
// directory and returned for further use.
func Resolve(flags Overrides, env Env) (Settings, *ConfigStore, error) {
	s := Settings{
		ConfigDir: first(flags.ConfigDir, env.ConfigDir),
		LogLevel:  env.LogLevel,
		LogFile:   first(flags.LogFile, env.LogFile),
	}

	cfg, err := NewConfigStore(s.ConfigDir)
	if err != nil {
		return Settings{}, nil, err
	}
	s.ConfigDir = cfg.Dir()
	s.DSN = first(flags.DSN, env.DSN, cfg.GetString(KeyDatabaseDSN), DefaultDSN(cfg.Dir()))
	s.OutputFormat = first(cfg.GetString(KeyOutputFormat), "text")
	return s, cfg, nil
}

// DefaultDSN is the SQLite database below the config directory.
func DefaultDSN(configDir string) string {
	return filepath.Join(configDir, "data", "metadata.db")
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
