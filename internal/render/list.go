// Package render draws the now-playing list one row at a time.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vmunix/flickster/internal/catalog"
)

// Orientation selects poster (portrait) or backdrop (landscape) imagery.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ParseOrientation validates an orientation name.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case Portrait, Landscape:
		return o, nil
	case "":
		return Portrait, nil
	default:
		return "", fmt.Errorf("unknown orientation %q (want portrait or landscape)", s)
	}
}

// Placeholder images used when an entry has no image path.
const (
	PosterPlaceholder   = "placeholder:movie"
	BackdropPlaceholder = "placeholder:backdrop"
)

// Row is one rendered list item.
type Row struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ImageURL    string `json:"image_url"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Option configures a List.
type Option func(*List)

// WithJSON renders each row as a JSON line instead of text.
func WithJSON() Option {
	return func(l *List) { l.json = true }
}

// WithFilter only renders entries for which keep returns true.
// Filtered entries are still counted and keep their index.
func WithFilter(keep func(catalog.MovieEntry) bool) Option {
	return func(l *List) { l.keep = keep }
}

// WithOverviewWidth truncates overviews to n runes in text mode (0 = no limit).
func WithOverviewWidth(n int) Option {
	return func(l *List) { l.overviewWidth = n }
}

// List implements catalog.Consumer. Every AppendEntry writes exactly one
// new row; earlier rows are never redrawn.
type List struct {
	out           io.Writer
	orientation   Orientation
	json          bool
	keep          func(catalog.MovieEntry) bool
	overviewWidth int

	mu     sync.Mutex
	config *catalog.Configuration
	rows   []Row
	err    error
}

// NewList creates a list writing to out.
func NewList(out io.Writer, orientation Orientation, opts ...Option) *List {
	l := &List{
		out:           out,
		orientation:   orientation,
		overviewWidth: 120,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetConfiguration stores the image configuration used for later rows.
func (l *List) SetConfiguration(cfg catalog.Configuration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config = &cfg
}

// AppendEntry renders the entry at index.
func (l *List) AppendEntry(index int, entry catalog.MovieEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.keep != nil && !l.keep(entry) {
		return
	}

	url, placeholder := l.imageLocked(entry)
	row := Row{
		Index:       index,
		Title:       entry.Title,
		Overview:    entry.Overview,
		ImageURL:    url,
		Placeholder: placeholder,
	}
	l.rows = append(l.rows, row)
	if l.err != nil {
		return
	}
	l.err = l.write(row)
}

// ImageURL returns the image for entry in the list's orientation, and
// whether it is a placeholder.
func (l *List) ImageURL(entry catalog.MovieEntry) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.imageLocked(entry)
}

func (l *List) imageLocked(entry catalog.MovieEntry) (string, bool) {
	size, path, placeholder := "", entry.PosterPath, PosterPlaceholder
	if l.config != nil {
		size = l.config.PosterSize()
	}
	if l.orientation == Landscape {
		path, placeholder = entry.BackdropPath, BackdropPlaceholder
		if l.config != nil {
			size = l.config.BackdropSize()
		}
	}

	if l.config == nil || path == "" {
		return placeholder, true
	}
	return catalog.Resolve(*l.config, size, path), false
}

func (l *List) write(row Row) error {
	if l.json {
		return json.NewEncoder(l.out).Encode(row)
	}

	overview := truncate(row.Overview, l.overviewWidth)
	if _, err := fmt.Fprintf(l.out, "%3d. %s\n", row.Index+1, row.Title); err != nil {
		return err
	}
	if overview != "" {
		if _, err := fmt.Fprintf(l.out, "     %s\n", overview); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(l.out, "     %s\n", row.ImageURL)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// Rows returns the rendered rows so far.
func (l *List) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Err returns the first write error, if any. Rows are still collected after
// a write failure.
func (l *List) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
