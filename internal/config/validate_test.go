package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			APIKey:  "key",
			BaseURL: "https://api.themoviedb.org",
			Timeout: time.Second,
		},
		Display: DisplayConfig{Orientation: "portrait"},
		Log:     LogConfig{Level: "info"},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing api key", func(c *Config) { c.TMDB.APIKey = "" }, "tmdb.api_key: required"},
		{"relative base url", func(c *Config) { c.TMDB.BaseURL = "api.themoviedb.org" }, "tmdb.base_url"},
		{"negative timeout", func(c *Config) { c.TMDB.Timeout = -time.Second }, "tmdb.timeout"},
		{"negative cache ttl", func(c *Config) { c.TMDB.CacheTTL = -time.Hour }, "tmdb.cache_ttl"},
		{"bad orientation", func(c *Config) { c.Display.Orientation = "upside-down" }, "display.orientation"},
		{"negative width", func(c *Config) { c.Display.OverviewWidth = -1 }, "display.overview_width"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if assert.Len(t, errs, 1) {
				assert.Contains(t, errs[0], tt.want)
			}
		})
	}
}
