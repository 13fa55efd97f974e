package hosepipe

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// dialMaxTries bounds transport-level retries (errors before any status code
// arrives) within a single open attempt.
const dialMaxTries = 5

// open issues one authenticated connection attempt and classifies the
// response. On 200 it returns the response body and records the connection
// time and status on state. A status in the backoff table yields a
// TransientError, anything else a FatalError. Transport errors with no
// status are retried internally with exponential backoff before being
// surfaced as a StreamError.
func (c *Consumer) open(ctx context.Context, state *connState, params Params) (io.ReadCloser, error) {
	endpointURL := c.client.endpointURL(c.endpoint)

	makeRequest := func() (*http.Request, error) {
		encoded := params.Values().Encode()

		var req *http.Request
		var err error
		if c.endpoint.Method == http.MethodPost {
			req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpointURL,
				strings.NewReader(encoded))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		} else {
			reqURL := endpointURL
			if encoded != "" {
				reqURL += "?" + encoded
			}
			req, err = http.NewRequestWithContext(ctx, c.endpoint.Method, reqURL, nil)
			if err != nil {
				return nil, err
			}
		}

		if c.client.auth != nil {
			if err := c.client.auth.Authenticate(req); err != nil {
				return nil, err
			}
		}
		return req, nil
	}

	resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
		req, err := makeRequest()
		if err != nil {
			// Request construction and auth failures are not transient.
			return nil, backoff.Permanent(err)
		}
		resp, err := c.client.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			c.logger.Warn("connection attempt failed",
				zap.String("endpoint", c.endpoint.Name),
				zap.Error(err))
			return nil, err
		}
		return resp, nil
	}, backoff.WithBackOff(c.dialBackoff()), backoff.WithMaxTries(dialMaxTries))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newStreamError(c.endpoint.Name, endpointURL, err)
	}

	state.lastStatus = resp.StatusCode

	if resp.StatusCode == http.StatusOK {
		state.lastConnect = c.now()
		return resp.Body, nil
	}

	reason := reasonPhrase(resp)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if c.client.backoff.Transient(resp.StatusCode) {
		return nil, &TransientError{StatusCode: resp.StatusCode}
	}
	return nil, &FatalError{StatusCode: resp.StatusCode, Reason: reason}
}

// reasonPhrase extracts the server's reason phrase from the status line,
// falling back to the standard text, with a literal for the rate-limit code
// net/http has no text for.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" || reason == "status code "+strconv.Itoa(resp.StatusCode) {
		reason = http.StatusText(resp.StatusCode)
	}
	if reason == "" && resp.StatusCode == StatusEnhanceYourCalm {
		reason = "Enhance Your Calm"
	}
	return reason
}
