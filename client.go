package hosepipe

import (
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client issues authenticated streaming requests against one base URL.
// It is safe for concurrent use; every Consumer created from it gets its own
// connection state.
//
// The default HTTP transport uses:
//   - Connection pooling (100 idle connections, 10 per host)
//   - HTTP/2 support (automatic for HTTPS)
//   - Dial and TLS handshake timeouts, but no response header timeout:
//     a healthy streaming response stays open indefinitely
type Client struct {
	httpClient *http.Client
	baseURL    string
	auth       Authenticator
	backoff    BackoffTable
	logger     *zap.Logger
}

// NewClient creates a streaming client.
//
// Example:
//
//	client := hosepipe.NewClient(
//	    hosepipe.WithBaseURL("https://stream.example.com/1.1"),
//	    hosepipe.WithAuthenticator(hosepipe.BearerToken(token)),
//	)
func NewClient(opts ...ClientOption) *Client {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		transport := &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,

			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			// No ResponseHeaderTimeout: the server may legitimately hold
			// the request open before the stream starts.
			ExpectContinueTimeout: 1 * time.Second,

			ForceAttemptHTTP2: true,
		}

		httpClient = &http.Client{
			// No global timeout: a streaming body outlives any fixed
			// deadline. Cancellation comes from the request context.
			Timeout:   0,
			Transport: transport,
		}
	}

	table := cfg.backoff
	if table == nil {
		table = DefaultBackoffTable()
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.baseURL, "/"),
		auth:       cfg.auth,
		backoff:    table,
		logger:     logger,
	}
}

// BaseURL returns the configured base URL with any trailing slash removed.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client, useful for advanced
// configuration or testing.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// endpointURL resolves an endpoint path against the base URL.
func (c *Client) endpointURL(ep Endpoint) string {
	if strings.HasPrefix(ep.Path, "http://") || strings.HasPrefix(ep.Path, "https://") {
		return ep.Path
	}
	return c.baseURL + ep.Path
}
