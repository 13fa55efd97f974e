package hosepipe

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hosepipe/hosepipe-go/hosepipetest"
)

// newTestConsumer wires a consumer to the given transport with a fast dial
// backoff so network-retry paths don't wait for real seconds.
func newTestConsumer(rt http.RoundTripper, endpoint Endpoint, clientOpts []ClientOption, opts ...ConsumeOption) *Consumer {
	base := []ClientOption{
		WithHTTPClient(&http.Client{Transport: rt}),
		WithBaseURL("https://stream.example.com/1.1"),
	}
	client := NewClient(append(base, clientOpts...)...)
	cons := client.Consumer(endpoint, opts...)
	cons.dialBackoff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	return cons
}

func TestOpenSuccess(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStream(`{"a":1}`)

	cons := newTestConsumer(mt, EndpointSample, nil)
	state := &connState{}

	body, err := cons.open(context.Background(), state, nil)
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, http.StatusOK, state.lastStatus)
	assert.False(t, state.lastConnect.IsZero())
}

func TestOpenGetParamsInQuery(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStream()

	cons := newTestConsumer(mt, EndpointSample, nil)
	body, err := cons.open(context.Background(), &connState{}, Params{
		"track": []string{"go", "golang"},
		"lang":  "en",
	})
	require.NoError(t, err)
	body.Close()

	reqs := mt.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/1.1/statuses/sample.json", reqs[0].URL.Path)
	assert.Equal(t, "go,golang", reqs[0].URL.Query().Get("track"))
	assert.Equal(t, "en", reqs[0].URL.Query().Get("lang"))
}

func TestOpenPostParamsInFormBody(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStream()

	cons := newTestConsumer(mt, EndpointFilter, nil)
	body, err := cons.open(context.Background(), &connState{}, Params{
		"track": []string{"go", "golang"},
	})
	require.NoError(t, err)
	body.Close()

	reqs := mt.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/1.1/statuses/filter.json", reqs[0].URL.Path)
	assert.Empty(t, reqs[0].URL.RawQuery)
	assert.Equal(t, "application/x-www-form-urlencoded", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, "track=go%2Cgolang", mt.Bodies()[0])
}

func TestOpenAuthenticates(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStream()

	cons := newTestConsumer(mt, EndpointSample, []ClientOption{
		WithAuthenticator(BearerToken("secret")),
	})
	body, err := cons.open(context.Background(), &connState{}, nil)
	require.NoError(t, err)
	body.Close()

	reqs := mt.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer secret", reqs[0].Header.Get("Authorization"))
}

func TestOpenAuthFailureIsNotRetried(t *testing.T) {
	mt := hosepipetest.NewMockTransport()

	authErr := errors.New("no credentials")
	cons := newTestConsumer(mt, EndpointSample, []ClientOption{
		WithAuthenticator(AuthenticatorFunc(func(*http.Request) error { return authErr })),
	})

	_, err := cons.open(context.Background(), &connState{}, nil)
	assert.ErrorIs(t, err, authErr)
	assert.Empty(t, mt.Requests(), "a failed authenticator must not send anything")
}

func TestOpenClassifiesTransient(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStatus(420)

	cons := newTestConsumer(mt, EndpointSample, nil)
	state := &connState{}

	_, err := cons.open(context.Background(), state, nil)

	var te *TransientError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 420, te.StatusCode)
	assert.Equal(t, 420, state.lastStatus)
}

func TestOpenClassifiesFatal(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStatus(http.StatusUnauthorized)

	cons := newTestConsumer(mt, EndpointSample, nil)
	state := &connState{}

	_, err := cons.open(context.Background(), state, nil)

	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusUnauthorized, fe.StatusCode)
	assert.Equal(t, "Unauthorized", fe.Reason)
	assert.Equal(t, http.StatusUnauthorized, state.lastStatus)
}

func TestOpenFatalReasonForRateLimitWithoutPhrase(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddStatus(420)

	// 420 outside the backoff table is fatal, and net/http has no text
	// for it, so the literal reason applies.
	cons := newTestConsumer(mt, EndpointSample, []ClientOption{
		WithBackoffTable(BackoffTable{503: 5 * time.Second}),
	})

	_, err := cons.open(context.Background(), &connState{}, nil)

	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 420, fe.StatusCode)
	assert.Equal(t, "Enhance Your Calm", fe.Reason)
}

func TestOpenRetriesNetworkErrors(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	mt.AddResponse(nil, errors.New("connection refused"))
	mt.AddResponse(nil, errors.New("connection refused"))
	mt.AddStream(`{"a":1}`)

	cons := newTestConsumer(mt, EndpointSample, nil)
	state := &connState{}

	body, err := cons.open(context.Background(), state, nil)
	require.NoError(t, err)
	body.Close()

	assert.Len(t, mt.Requests(), 3)
	assert.Equal(t, http.StatusOK, state.lastStatus)
}

func TestOpenNetworkErrorsExhausted(t *testing.T) {
	mt := hosepipetest.NewMockTransport()
	for i := 0; i < dialMaxTries; i++ {
		mt.AddResponse(nil, errors.New("connection refused"))
	}

	cons := newTestConsumer(mt, EndpointSample, nil)

	_, err := cons.open(context.Background(), &connState{}, nil)

	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "sample", se.Endpoint)
	assert.Len(t, mt.Requests(), dialMaxTries)
}
