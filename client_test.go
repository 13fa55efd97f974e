package hosepipe

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient()

	assert.NotNil(t, client.HTTPClient())
	assert.Zero(t, client.HTTPClient().Timeout, "a streaming client must not have a global timeout")
	assert.Equal(t, DefaultBackoffTable(), client.backoff)
}

func TestClientTrimsBaseURL(t *testing.T) {
	client := NewClient(WithBaseURL("https://stream.example.com/1.1/"))

	assert.Equal(t, "https://stream.example.com/1.1", client.BaseURL())
	assert.Equal(t, "https://stream.example.com/1.1/statuses/sample.json",
		client.endpointURL(EndpointSample))
}

func TestEndpointURLAbsolutePath(t *testing.T) {
	client := NewClient(WithBaseURL("https://stream.example.com/1.1"))
	ep := Endpoint{Name: "user", Path: "https://userstream.example.com/2/user.json", Method: http.MethodGet}

	assert.Equal(t, "https://userstream.example.com/2/user.json", client.endpointURL(ep))
}

func TestPredefinedEndpoints(t *testing.T) {
	assert.Equal(t, http.MethodPost, EndpointFilter.Method,
		"filter predicates can exceed URL length limits")

	for _, ep := range []Endpoint{EndpointSample, EndpointFirehose, EndpointUser, EndpointSite} {
		assert.Equal(t, http.MethodGet, ep.Method, "endpoint %s", ep.Name)
	}
}
