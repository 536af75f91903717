package tmdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrNotFound is returned when the requested resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidAPIKey is returned when TMDB rejects the API key.
	ErrInvalidAPIKey = errors.New("invalid tmdb api key")
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code    int
	Status  string
	Message string // status_message from the error body, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("TMDB API error: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("TMDB API error: %s", e.Status)
}

// Is maps well-known status codes onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrInvalidAPIKey:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

func newStatusError(resp *http.Response) *StatusError {
	e := &StatusError{Code: resp.StatusCode, Status: resp.Status}

	var body struct {
		StatusMessage string `json:"status_message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &body) == nil {
		e.Message = body.StatusMessage
	}
	return e
}
