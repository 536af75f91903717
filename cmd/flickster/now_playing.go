package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vmunix/flickster/internal/catalog"
	"github.com/vmunix/flickster/internal/config"
	"github.com/vmunix/flickster/internal/events"
	"github.com/vmunix/flickster/internal/migrations"
	"github.com/vmunix/flickster/internal/render"
	"github.com/vmunix/flickster/internal/session"
	"github.com/vmunix/flickster/internal/tmdb"
	"github.com/vmunix/flickster/pkg/title"
	_ "modernc.org/sqlite"
)

var nowPlayingCmd = &cobra.Command{
	Use:     "now-playing",
	Aliases: []string{"np"},
	Short:   "List the movies now playing",
	Args:    cobra.NoArgs,
	RunE:    runNowPlayingCmd,
}

func init() {
	rootCmd.AddCommand(nowPlayingCmd)
	nowPlayingCmd.Flags().StringP("orientation", "o", "", "portrait (posters) or landscape (backdrops)")
	nowPlayingCmd.Flags().StringP("match", "m", "", "Only show titles loosely matching this text")
}

type nowPlayingOptions struct {
	orientation string
	match       string
	json        bool
}

func runNowPlayingCmd(cmd *cobra.Command, args []string) error {
	orientation, _ := cmd.Flags().GetString("orientation")
	match, _ := cmd.Flags().GetString("match")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := nowPlayingOptions{orientation: orientation, match: match, json: jsonOutput}
	return nowPlaying(ctx, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// nowPlaying runs one catalog session and renders it to out.
// Failure notices go to notices.
func nowPlaying(ctx context.Context, cfg *config.Config, opts nowPlayingOptions, out, notices io.Writer, logger *slog.Logger) error {
	if opts.orientation == "" {
		opts.orientation = cfg.Display.Orientation
	}
	orientation, err := render.ParseOrientation(opts.orientation)
	if err != nil {
		return err
	}

	var eventLog *events.EventLog
	if cfg.Database.Path != "" {
		db, err := openDatabase(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		eventLog = events.NewEventLog(db)
	}
	bus := events.NewBus(eventLog, logger.With("component", "events"))
	defer bus.Close()

	listOpts := []render.Option{render.WithOverviewWidth(cfg.Display.OverviewWidth)}
	if opts.json {
		listOpts = append(listOpts, render.WithJSON())
	}
	if opts.match != "" {
		m := title.NewMatcher(opts.match, title.DefaultThreshold)
		listOpts = append(listOpts, render.WithFilter(func(e catalog.MovieEntry) bool {
			return m.Match(e.Title)
		}))
	}
	list := render.NewList(out, orientation, listOpts...)

	s := session.New(newTMDBClient(cfg), list, bus, notices, logger,
		session.WithOrientation(string(orientation)))
	if err := s.Run(ctx); err != nil {
		return err
	}
	if err := list.Err(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if len(list.Rows()) == 0 && !opts.json {
		fmt.Fprintln(out, "No movies")
	}
	return nil
}

func newTMDBClient(cfg *config.Config) *tmdb.Client {
	return tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.TMDB.Timeout}),
		tmdb.WithCacheTTL(cfg.TMDB.CacheTTL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithRegion(cfg.TMDB.Region),
	)
}

// openDatabase opens the SQLite event log and applies the schema.
func openDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
