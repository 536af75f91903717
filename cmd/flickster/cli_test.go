package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/flickster/internal/catalog"
	"github.com/vmunix/flickster/internal/config"
	"github.com/vmunix/flickster/internal/events"
)

const (
	testConfiguration = `{"images":{"secure_base_url":"https://image.tmdb.org/t/p/","poster_sizes":["w92","w154","w185","w342"],"backdrop_sizes":["w300","w780"]}}`
	testNowPlaying    = `{"results":[
		{"title":"Amélie","overview":"A shy waitress.","poster_path":"/amelie.jpg","backdrop_path":"/amelie-bd.jpg"},
		{"title":"The Matrix","overview":"Neo wakes up.","poster_path":"/matrix.jpg","backdrop_path":""}
	]}`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTMDBServer(t *testing.T, configStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		switch r.URL.Path {
		case "/3/configuration":
			w.WriteHeader(configStatus)
			_, _ = w.Write([]byte(testConfiguration))
		case "/3/movie/now_playing":
			_, _ = w.Write([]byte(testNowPlaying))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		TMDB: config.TMDBConfig{
			APIKey:   "test-key",
			BaseURL:  baseURL,
			Timeout:  5 * time.Second,
			CacheTTL: time.Hour,
		},
		Display: config.DisplayConfig{Orientation: "portrait", OverviewWidth: 80},
		Log:     config.LogConfig{Level: "info"},
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "never", formatTimeAgo(time.Time{}))
	assert.Equal(t, "just now", formatTimeAgo(now.Add(-10*time.Second)))
	assert.Equal(t, "5m ago", formatTimeAgo(now.Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "3h ago", formatTimeAgo(now.Add(-3*time.Hour-time.Second)))
	assert.Equal(t, "2d ago", formatTimeAgo(now.Add(-49*time.Hour)))
}

func TestPrintConfigErrors(t *testing.T) {
	var buf bytes.Buffer
	printConfigErrors(&buf, &config.Error{
		Missing: []string{"TMDB_API_KEY"},
		Errors:  []string{"tmdb.api_key: required"},
	})

	assert.Equal(t, "Missing environment variables:\n  - TMDB_API_KEY\n\n"+
		"Validation errors:\n  - tmdb.api_key: required\n\n", buf.String())
}

func TestNowPlaying_Portrait(t *testing.T) {
	srv := newTMDBServer(t, http.StatusOK)
	var out, notices bytes.Buffer

	err := nowPlaying(context.Background(), testConfig(srv.URL), nowPlayingOptions{}, &out, &notices, discardLogger())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "  1. Amélie\n")
	assert.Contains(t, out.String(), "https://image.tmdb.org/t/p/w342/amelie.jpg")
	assert.Contains(t, out.String(), "  2. The Matrix\n")
	assert.Empty(t, notices.String())
}

func TestNowPlaying_LandscapeUsesPlaceholder(t *testing.T) {
	srv := newTMDBServer(t, http.StatusOK)
	var out bytes.Buffer

	opts := nowPlayingOptions{orientation: "landscape"}
	require.NoError(t, nowPlaying(context.Background(), testConfig(srv.URL), opts, &out, io.Discard, discardLogger()))

	assert.Contains(t, out.String(), "https://image.tmdb.org/t/p/w780/amelie-bd.jpg")
	assert.Contains(t, out.String(), "placeholder:backdrop")
}

func TestNowPlaying_MatchFilter(t *testing.T) {
	srv := newTMDBServer(t, http.StatusOK)
	var out bytes.Buffer

	opts := nowPlayingOptions{match: "amelie"}
	require.NoError(t, nowPlaying(context.Background(), testConfig(srv.URL), opts, &out, io.Discard, discardLogger()))

	assert.Contains(t, out.String(), "Amélie")
	assert.NotContains(t, out.String(), "The Matrix")
}

func TestNowPlaying_NoMatches(t *testing.T) {
	srv := newTMDBServer(t, http.StatusOK)
	var out bytes.Buffer

	opts := nowPlayingOptions{match: "zzzz qqqq"}
	require.NoError(t, nowPlaying(context.Background(), testConfig(srv.URL), opts, &out, io.Discard, discardLogger()))
	assert.Equal(t, "No movies\n", out.String())
}

func TestNowPlaying_InvalidOrientation(t *testing.T) {
	err := nowPlaying(context.Background(), testConfig("http://unused"), nowPlayingOptions{orientation: "sideways"}, io.Discard, io.Discard, discardLogger())
	assert.ErrorContains(t, err, "unknown orientation")
}

func TestNowPlaying_ConfigurationFailure(t *testing.T) {
	srv := newTMDBServer(t, http.StatusServiceUnavailable)
	var out, notices bytes.Buffer

	err := nowPlaying(context.Background(), testConfig(srv.URL), nowPlayingOptions{}, &out, &notices, discardLogger())

	var perr *catalog.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, catalog.StageConfigFetch, perr.Stage)
	assert.Empty(t, out.String())
	assert.Equal(t, "error: Failed getting configuration\n", notices.String())
}

func TestNowPlaying_RecordsEvents(t *testing.T) {
	srv := newTMDBServer(t, http.StatusOK)
	cfg := testConfig(srv.URL)
	cfg.Database.Path = filepath.Join(t.TempDir(), "data", "flickster.db")

	require.NoError(t, nowPlaying(context.Background(), cfg, nowPlayingOptions{}, io.Discard, io.Discard, discardLogger()))

	db, err := openDatabase(cfg.Database.Path)
	require.NoError(t, err)
	defer db.Close()

	var out bytes.Buffer
	require.NoError(t, listEvents(context.Background(), events.NewEventLog(db), time.Hour, 0, false, &out))

	assert.Contains(t, out.String(), "Events (5):")
	assert.Contains(t, out.String(), events.EventRunStarted)
	assert.Contains(t, out.String(), "#1 Amélie")
	assert.Contains(t, out.String(), "2 movies")
}

func TestListEvents_Empty(t *testing.T) {
	db, err := openDatabase(filepath.Join(t.TempDir(), "flickster.db"))
	require.NoError(t, err)
	defer db.Close()

	var out bytes.Buffer
	require.NoError(t, listEvents(context.Background(), events.NewEventLog(db), time.Hour, 0, false, &out))
	assert.Equal(t, "No events\n", out.String())
}

func TestConfigInitAndTest(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "config.toml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Wrote "+path)

	_, err := os.Stat(path)
	require.NoError(t, err)

	rootCmd.SetArgs([]string{"config", "init", path})
	assert.ErrorContains(t, rootCmd.Execute(), "already exists")

	out.Reset()
	rootCmd.SetArgs([]string{"config", "test", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Configuration valid!")
	assert.Contains(t, out.String(), "(disabled)")
}

func TestConfigTest_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[tmdb]\napi_key = \"${FLICKSTER_TEST_UNSET_KEY}\"\n"), 0600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"config", "test", path})
	assert.ErrorContains(t, rootCmd.Execute(), "configuration invalid")
	assert.Contains(t, out.String(), "FLICKSTER_TEST_UNSET_KEY")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "flickster dev\n", out.String())
}
