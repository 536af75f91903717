// Package session runs the catalog pipeline for one screen session: it
// feeds the list renderer, records run events and tells the user about
// failures.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vmunix/flickster/internal/catalog"
	"github.com/vmunix/flickster/internal/events"
	"golang.org/x/sync/errgroup"
)

// Renderer is the list collaborator a session drives.
type Renderer interface {
	catalog.Consumer
}

// Session owns one pipeline and its collaborators.
type Session struct {
	runID    int64
	bus      *events.Bus
	notices  io.Writer
	logger   *slog.Logger
	pipeline *catalog.Pipeline
	started  events.RunStarted
}

// Option configures a Session.
type Option func(*Session)

// WithRunID overrides the generated run ID.
func WithRunID(id int64) Option {
	return func(s *Session) { s.runID = id }
}

// WithOrientation records the presentation orientation on the run.started event.
func WithOrientation(orientation string) Option {
	return func(s *Session) { s.started.Orientation = orientation }
}

// New creates a session. Failures are written to notices as they are
// reported; pass io.Discard to silence them.
func New(source catalog.Source, renderer Renderer, bus *events.Bus, notices io.Writer, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		runID:   time.Now().UnixMilli(),
		bus:     bus,
		notices: notices,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("run_id", s.runID)
	pub := &publisher{renderer: renderer, bus: bus, runID: s.runID}
	s.pipeline = catalog.NewPipeline(source, pub, pub, s.logger.With("component", "pipeline"))
	return s
}

// RunID identifies this session's run in the event log.
func (s *Session) RunID() int64 { return s.runID }

// Pipeline exposes the underlying pipeline for inspection.
func (s *Session) Pipeline() *catalog.Pipeline { return s.pipeline }

// Run executes one pipeline run and blocks until it is finished.
// Cancelling ctx cancels the run and returns ctx's error.
func (s *Session) Run(ctx context.Context) error {
	notices := s.bus.Subscribe(16, events.EventRunFailed)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.notify(notices)
		return nil
	})
	g.Go(func() error {
		defer s.bus.Unsubscribe(notices)
		return s.run(ctx)
	})
	return g.Wait()
}

func (s *Session) run(ctx context.Context) error {
	started := s.started
	started.BaseEvent = events.NewRunEvent(events.EventRunStarted, s.runID)
	_ = s.bus.Publish(ctx, &started)

	// Only Cancel stops the run, so a cancelled ctx never surfaces as a fetch failure.
	if err := s.pipeline.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	select {
	case <-s.pipeline.Done():
	case <-ctx.Done():
		s.pipeline.Cancel()
		<-s.pipeline.Done()
	}

	err := s.pipeline.Wait(context.Background())
	switch {
	case err == nil:
		count := len(s.pipeline.Entries())
		_ = s.bus.Publish(context.Background(), &events.RunReady{
			BaseEvent: events.NewRunEvent(events.EventRunReady, s.runID),
			Count:     count,
		})
		return nil
	case errors.Is(err, catalog.ErrCancelled):
		_ = s.bus.Publish(context.Background(), &events.RunCancelled{
			BaseEvent: events.NewRunEvent(events.EventRunCancelled, s.runID),
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	default:
		return err
	}
}

// notify prints failure notices until the subscription closes.
func (s *Session) notify(ch <-chan events.Event) {
	for e := range ch {
		failed, ok := e.(*events.RunFailed)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(s.notices, "%s: %s\n", failed.Severity, failed.Message); err != nil {
			s.logger.Warn("failed to write notice", "error", err)
		}
	}
}

// publisher forwards pipeline output to the renderer and the event bus.
type publisher struct {
	renderer Renderer
	bus      *events.Bus
	runID    int64
}

func (p *publisher) SetConfiguration(cfg catalog.Configuration) {
	p.renderer.SetConfiguration(cfg)
	_ = p.bus.Publish(context.Background(), &events.ConfigurationLoaded{
		BaseEvent:    events.NewRunEvent(events.EventConfigurationLoaded, p.runID),
		ImageBaseURL: cfg.ImageBaseURL(),
		PosterSize:   cfg.PosterSize(),
		BackdropSize: cfg.BackdropSize(),
	})
}

func (p *publisher) AppendEntry(index int, entry catalog.MovieEntry) {
	p.renderer.AppendEntry(index, entry)
	_ = p.bus.Publish(context.Background(), &events.EntryAppended{
		BaseEvent: events.NewRunEvent(events.EventEntryAppended, p.runID),
		Index:     index,
		Title:     entry.Title,
	})
}

func (p *publisher) Notify(message string, cause error, severity catalog.Severity) {
	e := &events.RunFailed{
		BaseEvent: events.NewRunEvent(events.EventRunFailed, p.runID),
		Message:   message,
		Severity:  severity.String(),
	}
	if cause != nil {
		e.Cause = cause.Error()
	}
	_ = p.bus.Publish(context.Background(), e)
}
