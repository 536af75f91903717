// Package catalog fetches the now-playing catalog and resolves its image URLs.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Fallback size tokens used when the provider lists too few options.
const (
	DefaultPosterSize   = "w342"
	DefaultBackdropSize = "w780"

	posterSizeIndex   = 3
	backdropSizeIndex = 1
)

// Configuration describes how image URLs are built. It is immutable once parsed.
type Configuration struct {
	imageBaseURL string
	posterSize   string
	backdropSize string
}

// NewConfiguration builds a Configuration from already selected values.
func NewConfiguration(imageBaseURL, posterSize, backdropSize string) Configuration {
	return Configuration{
		imageBaseURL: imageBaseURL,
		posterSize:   posterSize,
		backdropSize: backdropSize,
	}
}

// ImageBaseURL is the secure base URL every image path is appended to.
func (c Configuration) ImageBaseURL() string { return c.imageBaseURL }

// PosterSize is the size token used for portrait posters.
func (c Configuration) PosterSize() string { return c.posterSize }

// BackdropSize is the size token used for landscape backdrops.
func (c Configuration) BackdropSize() string { return c.backdropSize }

type configurationPayload struct {
	Images *struct {
		SecureBaseURL *string  `json:"secure_base_url"`
		PosterSizes   []string `json:"poster_sizes"`
		BackdropSizes []string `json:"backdrop_sizes"`
	} `json:"images"`
}

// ParseConfiguration decodes a /configuration response.
// The poster size is the 4th listed option and the backdrop size the 2nd,
// each falling back to its default when the list is too short.
func ParseConfiguration(data []byte) (Configuration, error) {
	var p configurationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Configuration{}, fmt.Errorf("decode configuration: %w", err)
	}
	if p.Images == nil {
		return Configuration{}, errors.New("configuration: missing images object")
	}
	if p.Images.SecureBaseURL == nil {
		return Configuration{}, errors.New("configuration: missing images.secure_base_url")
	}
	if p.Images.PosterSizes == nil {
		return Configuration{}, errors.New("configuration: missing images.poster_sizes")
	}
	if p.Images.BackdropSizes == nil {
		return Configuration{}, errors.New("configuration: missing images.backdrop_sizes")
	}

	return Configuration{
		imageBaseURL: *p.Images.SecureBaseURL,
		posterSize:   optionAt(p.Images.PosterSizes, posterSizeIndex, DefaultPosterSize),
		backdropSize: optionAt(p.Images.BackdropSizes, backdropSizeIndex, DefaultBackdropSize),
	}, nil
}

func optionAt(options []string, i int, fallback string) string {
	if i < len(options) {
		return options[i]
	}
	return fallback
}

// Resolve builds an absolute image URL. The parts are concatenated as-is:
// the provider's base URL already ends with a slash and relative paths start
// with one. Callers should use a placeholder instead of resolving an empty path.
func Resolve(cfg Configuration, sizeToken, relativePath string) string {
	return cfg.imageBaseURL + sizeToken + relativePath
}
