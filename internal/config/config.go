// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	TMDB     TMDBConfig     `toml:"tmdb"`
	Display  DisplayConfig  `toml:"display"`
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
}

type TMDBConfig struct {
	APIKey   string        `toml:"api_key"`
	BaseURL  string        `toml:"base_url"`
	Language string        `toml:"language"`
	Region   string        `toml:"region"`
	Timeout  time.Duration `toml:"timeout"`
	CacheTTL time.Duration `toml:"cache_ttl"`
}

type DisplayConfig struct {
	Orientation   string `toml:"orientation"` // "portrait" or "landscape"
	OverviewWidth int    `toml:"overview_width"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DatabaseConfig locates the SQLite event log. An empty path disables it.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// Defaults
const (
	DefaultBaseURL       = "https://api.themoviedb.org"
	DefaultTimeout       = 10 * time.Second
	DefaultCacheTTL      = 24 * time.Hour
	DefaultOrientation   = "portrait"
	DefaultOverviewWidth = 120
	DefaultLogLevel      = "info"
)

// Load reads, substitutes, parses, defaults and validates the configuration file.
// Unresolved variables and validation failures are reported together as *Error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	cfgErr := &Error{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = DefaultBaseURL
	}
	if c.TMDB.Timeout == 0 {
		c.TMDB.Timeout = DefaultTimeout
	}
	if c.TMDB.CacheTTL == 0 {
		c.TMDB.CacheTTL = DefaultCacheTTL
	}
	if c.Display.Orientation == "" {
		c.Display.Orientation = DefaultOrientation
	}
	if c.Display.OverviewWidth == 0 {
		c.Display.OverviewWidth = DefaultOverviewWidth
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unset references are left in place and reported in missing; for the :?
// form the entry carries the message. An empty value counts as unset for
// :- and :?.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case "-":
			if !ok || value == "" {
				return arg
			}
			return value
		case "?":
			if !ok || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, strings.TrimSpace(arg)))
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return out, missing
}
