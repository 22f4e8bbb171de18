package acquire

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an acquisition failure.
type Kind string

const (
	KindMetadataFetch    Kind = "metadata_fetch_failed"
	KindNoPlayableFormat Kind = "no_playable_format"
	KindStreamTransfer   Kind = "stream_transfer_failed"
)

// Error is a failed acquisition attempt. StatusCode is the upstream HTTP
// status when one was observed, otherwise zero.
type Error struct {
	Kind       Kind
	Strategy   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Strategy != "" {
		prefix = e.Strategy + ": " + prefix
	}
	if e.Err == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusError is a non-2xx response from the streaming platform.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d (%s)", e.StatusCode, http.StatusText(e.StatusCode))
}

// classify wraps err as kind unless it is already an *Error, in which case
// its more specific kind is kept. The status code is lifted from the chain.
func classify(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: kind, StatusCode: statusCodeOf(err), Err: err}
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.StatusCode != 0 {
		return ae.StatusCode
	}
	return statusCodeOf(err)
}

func statusCodeOf(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
