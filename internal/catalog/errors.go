package catalog

import (
	"errors"
	"fmt"
)

// ErrAlreadyStarted is returned by Start when the pipeline is not idle.
var ErrAlreadyStarted = errors.New("pipeline already started")

// Stage identifies where a pipeline run failed.
type Stage string

const (
	StageConfigFetch Stage = "config_fetch"
	StageConfigParse Stage = "config_parse"
	StageMoviesFetch Stage = "movies_fetch"
	StageMoviesParse Stage = "movies_parse"
)

var stageMessages = map[Stage]string{
	StageConfigFetch: "Failed getting configuration",
	StageConfigParse: "Failed parsing configuration",
	StageMoviesFetch: "Failed to get data from now_playing endpoint",
	StageMoviesParse: "Failed to parse now playing movies",
}

// Severity of a reported failure.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Error is the terminal failure of a pipeline run.
type Error struct {
	Stage   Stage
	Message string
	Cause   error
}

func newError(stage Stage, cause error) *Error {
	return &Error{Stage: stage, Message: stageMessages[stage], Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// IsFetch reports whether the failure came from the transport rather than decoding.
func (e *Error) IsFetch() bool {
	return e.Stage == StageConfigFetch || e.Stage == StageMoviesFetch
}
