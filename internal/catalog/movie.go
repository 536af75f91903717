package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MovieEntry is one now-playing record.
type MovieEntry struct {
	Title        string `json:"title"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

var jsonNull = []byte("null")

// decodeMovie builds an entry from one result object. Every key must be
// present. Title and overview must be strings; a null image path decodes to
// "" so the renderer shows a placeholder for it.
func decodeMovie(raw json.RawMessage) (MovieEntry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return MovieEntry{}, err
	}

	var (
		entry MovieEntry
		err   error
	)
	if entry.Title, err = stringField(fields, "title", false); err != nil {
		return MovieEntry{}, err
	}
	if entry.Overview, err = stringField(fields, "overview", false); err != nil {
		return MovieEntry{}, err
	}
	if entry.PosterPath, err = stringField(fields, "poster_path", true); err != nil {
		return MovieEntry{}, err
	}
	if entry.BackdropPath, err = stringField(fields, "backdrop_path", true); err != nil {
		return MovieEntry{}, err
	}
	return entry, nil
}

func stringField(fields map[string]json.RawMessage, key string, nullable bool) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	if bytes.Equal(bytes.TrimSpace(v), jsonNull) {
		if nullable {
			return "", nil
		}
		return "", fmt.Errorf("missing %s", key)
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

type nowPlayingPayload struct {
	Results *[]json.RawMessage `json:"results"`
}

// ParseNowPlaying decodes a /movie/now_playing response. A single malformed
// result fails the whole response; no partial list is returned.
// A key that is absent is malformed, a null image path is not.
func ParseNowPlaying(data []byte) ([]MovieEntry, error) {
	var p nowPlayingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode now playing: %w", err)
	}
	if p.Results == nil {
		return nil, fmt.Errorf("now playing: missing results array")
	}

	entries := make([]MovieEntry, 0, len(*p.Results))
	for i, raw := range *p.Results {
		entry, err := decodeMovie(raw)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
