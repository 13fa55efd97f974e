package hosepipe

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Streaming defaults.
const (
	// DefaultStallTimeout is how long the reader waits without receiving
	// any line (keep-alives included) before recycling the connection.
	DefaultStallTimeout = 90 * time.Second

	// DefaultReconnectDelay is the minimum time a healthy connection is
	// kept before a parameter-drift reconnect is permitted.
	DefaultReconnectDelay = 300 * time.Second

	// DefaultMaxAttempts is the maximum number of consecutive transient
	// failures tolerated before consumption stops with MaxAttemptsError.
	DefaultMaxAttempts = 10
)

// =============================================================================
// Client Options
// =============================================================================

type clientConfig struct {
	httpClient *http.Client
	baseURL    string
	auth       Authenticator
	backoff    BackoffTable
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithHTTPClient sets a custom HTTP client. If not set, a pooled transport
// with streaming-friendly timeouts is used.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) {
		cfg.httpClient = c
	}
}

// WithBaseURL sets the base URL that endpoint paths are resolved against.
func WithBaseURL(url string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.baseURL = url
	}
}

// WithAuthenticator sets the request authenticator. Every connection attempt
// passes its outgoing request through it. If not set, requests are sent
// unauthenticated.
func WithAuthenticator(a Authenticator) ClientOption {
	return func(cfg *clientConfig) {
		cfg.auth = a
	}
}

// WithBackoffTable replaces the default transient-failure delay table.
// The table is shared read-only by all consumers created from the client.
func WithBackoffTable(t BackoffTable) ClientOption {
	return func(cfg *clientConfig) {
		cfg.backoff = t
	}
}

// WithLogger sets the logger used for connection lifecycle events (retries,
// backoff, stalls, reconnects). Defaults to a no-op logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = l
	}
}

// =============================================================================
// Consume Options
// =============================================================================

type consumeConfig struct {
	source         ParamSource
	decoder        Decoder
	stallTimeout   time.Duration
	reconnectDelay time.Duration
	maxAttempts    int
}

// ConsumeOption configures a Consumer.
type ConsumeOption func(*consumeConfig)

// WithParams sets a fixed parameter set for every connection attempt.
// Shorthand for WithParamSource(StaticParams(p)).
func WithParams(p Params) ConsumeOption {
	return func(cfg *consumeConfig) {
		cfg.source = StaticParams(p)
	}
}

// WithParamSource sets the callback that produces a fresh parameter snapshot
// for each connection. Successive snapshots are compared to detect drift and
// trigger reconnection.
func WithParamSource(s ParamSource) ConsumeOption {
	return func(cfg *consumeConfig) {
		cfg.source = s
	}
}

// WithDecoder replaces the default JSON decoder applied to each non-empty
// line before the handler is invoked.
func WithDecoder(d Decoder) ConsumeOption {
	return func(cfg *consumeConfig) {
		cfg.decoder = d
	}
}

// WithStallTimeout sets how long the reader tolerates silence (no lines, no
// keep-alives) before recycling the connection. Default 90s.
func WithStallTimeout(d time.Duration) ConsumeOption {
	return func(cfg *consumeConfig) {
		cfg.stallTimeout = d
	}
}

// WithReconnectDelay sets the minimum age a healthy connection must reach
// before parameter drift may recycle it. Default 300s.
func WithReconnectDelay(d time.Duration) ConsumeOption {
	return func(cfg *consumeConfig) {
		cfg.reconnectDelay = d
	}
}

// WithMaxAttempts sets the maximum number of consecutive transient failures
// before consumption stops with MaxAttemptsError. Default 10.
func WithMaxAttempts(n int) ConsumeOption {
	return func(cfg *consumeConfig) {
		cfg.maxAttempts = n
	}
}
