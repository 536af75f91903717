package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validOrientations = map[string]bool{
	"portrait": true, "landscape": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}
	if c.TMDB.BaseURL != "" {
		if u, err := url.Parse(c.TMDB.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("tmdb.base_url: must be an absolute URL, got %q", c.TMDB.BaseURL))
		}
	}
	if c.TMDB.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.timeout: must not be negative, got %s", c.TMDB.Timeout))
	}
	if c.TMDB.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.cache_ttl: must not be negative, got %s", c.TMDB.CacheTTL))
	}

	if !validOrientations[c.Display.Orientation] {
		errs = append(errs, fmt.Sprintf("display.orientation: must be portrait or landscape; got %q", c.Display.Orientation))
	}
	if c.Display.OverviewWidth < 0 {
		errs = append(errs, fmt.Sprintf("display.overview_width: must not be negative, got %d", c.Display.OverviewWidth))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	return errs
}
