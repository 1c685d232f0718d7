package sdclient

import (
	"errors"
	"fmt"
	"time"
)

// HTTPStatusError is returned when the backend answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	// Status is the reason phrase, e.g. "Internal Server Error".
	Status string
	// Body holds at most the first few KiB of the response.
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("backend http error: %d %s", e.StatusCode, e.Status)
}

// TimeoutError is returned when the backend did not answer within the
// configured ceiling. The abandoned request has already been cancelled.
type TimeoutError struct {
	After   time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend timed out after %s", e.After)
}

// ParseError is returned by Decode when the body is not the expected JSON.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse backend response: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse backend response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsHTTPStatus reports whether err wraps an HTTPStatusError.
func IsHTTPStatus(err error) bool {
	var e *HTTPStatusError
	return errors.As(err, &e)
}

// IsTimeout reports whether err wraps a TimeoutError.
func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// IsParse reports whether err wraps a ParseError.
func IsParse(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}
