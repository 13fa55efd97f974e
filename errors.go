package hosepipe

import (
	"errors"
	"fmt"
)

// errStalled signals that the stall watchdog fired. Stalls always trigger a
// reconnect and are never surfaced to callers, so the sentinel stays private.
var errStalled = errors.New("hosepipe: stream stalled")

// TransientError is a retryable connection failure: the server answered with
// a status code present in the backoff table. The consumer handles these
// internally; callers only observe one if retries are exhausted, wrapped in
// MaxAttemptsError.
type TransientError struct {
	// StatusCode is the HTTP status that triggered the backoff.
	StatusCode int
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("hosepipe: transient failure (HTTP %d)", e.StatusCode)
}

// FatalError is a non-200 response outside the backoff table. It terminates
// consumption immediately and is never retried.
type FatalError struct {
	// StatusCode is the HTTP status returned by the server.
	StatusCode int

	// Reason is the server-supplied reason phrase, or a best-effort
	// substitute when the transport provides none.
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("hosepipe: fatal failure (HTTP %d): %s", e.StatusCode, e.Reason)
}

// MaxAttemptsError terminates consumption after too many consecutive
// transient failures without an intervening successful connection.
type MaxAttemptsError struct {
	// StatusCode is the status of the last failed attempt.
	StatusCode int

	// Attempts is the number of consecutive failed attempts.
	Attempts int
}

func (e *MaxAttemptsError) Error() string {
	return fmt.Sprintf("hosepipe: giving up after %d consecutive failed attempts (last HTTP %d)",
		e.Attempts, e.StatusCode)
}

// DecodeError is a malformed line on an otherwise healthy stream. Decoding
// failures stop consumption rather than being silently skipped; callers that
// want to tolerate them can install a forgiving Decoder.
type DecodeError struct {
	// Line is the raw line that failed to decode.
	Line []byte

	// Err is the decoder's error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hosepipe: malformed message: %v", e.Err)
}

// Unwrap returns the decoder's error for errors.Is/As support.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StreamError wraps request-level failures (building or executing the HTTP
// request) with the endpoint and URL for context.
type StreamError struct {
	// Endpoint is the endpoint name being consumed.
	Endpoint string

	// URL is the request URL.
	URL string

	// Err is the underlying error.
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("hosepipe: %s stream %s: %v", e.Endpoint, e.URL, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StreamError) Unwrap() error {
	return e.Err
}

func newStreamError(endpoint, url string, err error) *StreamError {
	return &StreamError{Endpoint: endpoint, URL: url, Err: err}
}
