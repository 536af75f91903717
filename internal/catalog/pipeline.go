package catalog

//go:generate mockgen -destination=mocks/source.go -package=mocks github.com/vmunix/flickster/internal/catalog Source

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrCancelled is returned by Wait when the run was cancelled.
var ErrCancelled = errors.New("pipeline cancelled")

// ErrNotStarted is returned by Wait on an idle pipeline.
var ErrNotStarted = errors.New("pipeline not started")

// Source fetches the raw upstream payloads.
type Source interface {
	Configuration(ctx context.Context) ([]byte, error)
	NowPlaying(ctx context.Context) ([]byte, error)
}

// Consumer receives the configuration once and then each entry in order.
// Callbacks run on the pipeline goroutine and must not call Cancel.
type Consumer interface {
	SetConfiguration(cfg Configuration)
	AppendEntry(index int, entry MovieEntry)
}

// Notifier surfaces failures to the user.
type Notifier interface {
	Notify(message string, cause error, severity Severity)
}

// State of a pipeline run.
type State int

const (
	StateIdle State = iota
	StateFetchingConfig
	StateFetchingMovies
	StateReady
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingConfig:
		return "fetching_config"
	case StateFetchingMovies:
		return "fetching_movies"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen in this run.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed || s == StateCancelled
}

// Pipeline fetches the configuration and then the now-playing movies,
// publishing results to a Consumer. The movie request is only issued after
// a configuration has been parsed.
type Pipeline struct {
	source   Source
	consumer Consumer
	notifier Notifier
	logger   *slog.Logger

	// emit serializes effects (transitions and callbacks) against Cancel.
	// Lock order: emit, then mu.
	emit sync.Mutex

	mu      sync.Mutex
	state   State
	gen     uint64
	config  *Configuration
	entries []MovieEntry
	err     *Error
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPipeline creates an idle pipeline. The notifier may be nil.
func NewPipeline(source Source, consumer Consumer, notifier Notifier, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:   source,
		consumer: consumer,
		notifier: notifier,
		logger:   logger,
	}
}

// Start begins a run. It returns immediately; use Done or Wait to observe completion.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.gen++
	p.cancel = cancel
	p.done = make(chan struct{})
	p.state = StateFetchingConfig

	go p.run(runCtx, p.gen, p.done)
	return nil
}

func (p *Pipeline) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	data, err := p.source.Configuration(ctx)
	if err != nil {
		p.fail(gen, StageConfigFetch, err)
		return
	}
	cfg, err := ParseConfiguration(data)
	if err != nil {
		p.fail(gen, StageConfigParse, err)
		return
	}

	ok := p.step(gen, func() {
		p.mu.Lock()
		p.config = &cfg
		p.state = StateFetchingMovies
		p.mu.Unlock()

		p.logger.Info("loaded configuration",
			"image_base_url", cfg.ImageBaseURL(),
			"poster_size", cfg.PosterSize(),
			"backdrop_size", cfg.BackdropSize())
		p.consumer.SetConfiguration(cfg)
	})
	if !ok {
		return
	}

	data, err = p.source.NowPlaying(ctx)
	if err != nil {
		p.fail(gen, StageMoviesFetch, err)
		return
	}
	entries, err := ParseNowPlaying(data)
	if err != nil {
		p.fail(gen, StageMoviesParse, err)
		return
	}

	for _, entry := range entries {
		ok := p.step(gen, func() {
			p.mu.Lock()
			p.entries = append(p.entries, entry)
			index := len(p.entries) - 1
			p.mu.Unlock()

			p.consumer.AppendEntry(index, entry)
		})
		if !ok {
			return
		}
	}

	p.step(gen, func() {
		p.mu.Lock()
		p.state = StateReady
		p.cancel()
		p.mu.Unlock()

		p.logger.Info("loaded now playing movies", "count", len(entries))
	})
}

// step runs fn unless the run was cancelled or superseded.
func (p *Pipeline) step(gen uint64, fn func()) bool {
	p.emit.Lock()
	defer p.emit.Unlock()

	p.mu.Lock()
	live := p.gen == gen && !p.state.Terminal()
	p.mu.Unlock()
	if !live {
		return false
	}

	fn()
	return true
}

func (p *Pipeline) fail(gen uint64, stage Stage, cause error) {
	e := newError(stage, cause)
	p.step(gen, func() {
		p.mu.Lock()
		p.state = StateFailed
		p.err = e
		p.cancel()
		p.mu.Unlock()

		p.logger.Error(e.Message, "stage", string(stage), "error", cause)
		if p.notifier != nil && userRelevant(stage) {
			p.notifier.Notify(e.Message, cause, SeverityError)
		}
	})
}

// userRelevant reports whether a failure at stage is shown to the user.
// Every stage currently is.
func userRelevant(Stage) bool {
	return true
}

// Cancel aborts an in-flight run. No transition or publication happens
// after Cancel returns. It is a no-op once the run is finished.
func (p *Pipeline) Cancel() {
	p.emit.Lock()
	defer p.emit.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateFetchingConfig && p.state != StateFetchingMovies {
		return
	}
	p.state = StateCancelled
	p.cancel()
	p.logger.Debug("pipeline cancelled")
}

// Reset returns a finished pipeline to idle so it can be started again.
// Entries, configuration and error of the previous run are discarded.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.state == StateIdle:
		return nil
	case !p.state.Terminal():
		return ErrAlreadyStarted
	}
	p.state = StateIdle
	p.config = nil
	p.entries = nil
	p.err = nil
	return nil
}

// Done returns a channel closed when the current run's goroutine exits.
// It returns nil before the first Start.
func (p *Pipeline) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Wait blocks until the current run finishes or ctx is done.
// It returns nil on Ready, the *Error on failure and ErrCancelled on cancel.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := p.Done()
	if done == nil {
		return ErrNotStarted
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateFailed:
		return p.err
	case StateCancelled:
		return ErrCancelled
	case StateIdle:
		return ErrNotStarted
	default:
		return nil
	}
}

// State returns the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Configuration returns the parsed configuration of the current run, if any.
func (p *Pipeline) Configuration() (Configuration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.config == nil {
		return Configuration{}, false
	}
	return *p.config, true
}

// Entries returns a copy of the entries published so far.
func (p *Pipeline) Entries() []MovieEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MovieEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Err returns the failure of the current run, or nil.
func (p *Pipeline) Err() *Error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
