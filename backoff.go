package hosepipe

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// StatusEnhanceYourCalm is the rate-limit status code used by streaming APIs
// to signal too many connections or reconnects. It predates 429 and is not
// defined in net/http.
const StatusEnhanceYourCalm = 420

// BackoffTable maps HTTP status codes to the base retry delay applied when
// that status is received while opening a connection. Status codes present in
// the table are transient failures subject to backoff and bounded retry;
// every other non-200 status is fatal. The table must not be modified after
// the client is constructed.
type BackoffTable map[int]time.Duration

// DefaultBackoffTable returns the default transient-failure delays:
// rate limiting backs off from a minute, service unavailability from five
// seconds.
func DefaultBackoffTable() BackoffTable {
	return BackoffTable{
		StatusEnhanceYourCalm:         60 * time.Second,
		http.StatusServiceUnavailable: 5 * time.Second,
	}
}

// Transient reports whether status is a retryable failure.
func (t BackoffTable) Transient(status int) bool {
	_, ok := t[status]
	return ok
}

// Delay computes the backoff delay for the given status code and retry
// attempt. Delays grow exponentially: Delay(code, n) = base * 2^n, with
// attempt 0 being the first retry after a successful connection. Returns 0
// for status codes not present in the table.
func (t BackoffTable) Delay(status int, attempt int) time.Duration {
	base, ok := t[status]
	if !ok {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	return base << uint(attempt)
}

// newDialBackoff returns the backoff schedule used for transport-level
// failures (connection refused, DNS, reset before status) while opening a
// stream: 1s initial, doubling to a 30s ceiling, with jitter.
func newDialBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 30 * time.Second
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.2
	b.Reset()
	return b
}
