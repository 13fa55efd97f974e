package hosepipe

import "net/http"

// Endpoint identifies a streaming resource: a fixed path relative to the
// client's base URL plus the HTTP method used to open it.
//
// The predefined endpoints cover the classic streaming API surface. Custom
// endpoints can be constructed directly:
//
//	ep := hosepipe.Endpoint{Name: "events", Path: "/v2/events.json", Method: http.MethodGet}
type Endpoint struct {
	// Name is a short identifier used in logs and errors.
	Name string

	// Path is appended to the client's base URL.
	Path string

	// Method is the HTTP method used to open the stream.
	// Parameters travel in the query string for GET and in a
	// form-encoded body for POST.
	Method string
}

// Predefined streaming endpoints.
var (
	// EndpointFilter streams messages matching caller-supplied predicates.
	// Opened with POST because predicate lists can exceed URL length limits.
	EndpointFilter = Endpoint{Name: "filter", Path: "/statuses/filter.json", Method: http.MethodPost}

	// EndpointSample streams a small random sample of all public messages.
	EndpointSample = Endpoint{Name: "sample", Path: "/statuses/sample.json", Method: http.MethodGet}

	// EndpointFirehose streams all public messages.
	EndpointFirehose = Endpoint{Name: "firehose", Path: "/statuses/firehose.json", Method: http.MethodGet}

	// EndpointUser streams events scoped to the authenticated user.
	EndpointUser = Endpoint{Name: "user", Path: "/user.json", Method: http.MethodGet}

	// EndpointSite streams events for multiple users on behalf of a site.
	EndpointSite = Endpoint{Name: "site", Path: "/site.json", Method: http.MethodGet}
)
