// Package hosepipetest provides testing utilities for hosepipe clients.
//
// The package includes an in-memory mock streaming server that serves
// scripted line-delimited responses, and a scripted http.RoundTripper for
// tests that don't need a real network hop.
//
// Example:
//
//	func TestMyCode(t *testing.T) {
//	    server := hosepipetest.NewMockServer()
//	    defer server.Close()
//
//	    server.Enqueue(hosepipetest.Response{
//	        Status: 200,
//	        Lines:  []string{`{"a":1}`, ""},
//	    })
//
//	    client := hosepipe.NewClient(hosepipe.WithBaseURL(server.URL()))
//	    // ...
//	}
package hosepipetest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Response scripts one HTTP response from the mock server.
type Response struct {
	// Status is the HTTP status code to answer with.
	Status int

	// Lines are written newline-terminated and individually flushed.
	// An empty string produces a keep-alive line.
	Lines []string

	// LineDelay is an optional pause between lines.
	LineDelay time.Duration

	// HoldOpen keeps the connection open (silent) after the lines until
	// the client disconnects or the server closes. Use with a short
	// client stall timeout to exercise stall detection.
	HoldOpen bool
}

// MockServer serves scripted streaming responses in FIFO order. Requests
// beyond the script receive 500.
type MockServer struct {
	server *httptest.Server

	mu        sync.Mutex
	script    []Response
	requests  []*http.Request
	bodies    []string
	closeHold chan struct{}
}

// NewMockServer creates a mock streaming server.
func NewMockServer() *MockServer {
	ms := &MockServer{closeHold: make(chan struct{})}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handle))
	return ms
}

// URL returns the base URL of the mock server.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Enqueue appends a scripted response.
func (ms *MockServer) Enqueue(r Response) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.script = append(ms.script, r)
}

// Requests returns the requests received so far.
func (ms *MockServer) Requests() []*http.Request {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]*http.Request(nil), ms.requests...)
}

// Bodies returns the recorded request bodies, index-aligned with Requests.
func (ms *MockServer) Bodies() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.bodies...)
}

// Close releases any held-open connections and shuts the server down.
func (ms *MockServer) Close() {
	ms.mu.Lock()
	select {
	case <-ms.closeHold:
	default:
		close(ms.closeHold)
	}
	ms.mu.Unlock()
	ms.server.Close()
}

func (ms *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, r.Clone(r.Context()))
	ms.bodies = append(ms.bodies, string(body))
	if len(ms.script) == 0 {
		ms.mu.Unlock()
		http.Error(w, "no scripted response", http.StatusInternalServerError)
		return
	}
	resp := ms.script[0]
	ms.script = ms.script[1:]
	ms.mu.Unlock()

	w.WriteHeader(resp.Status)
	if resp.Status != http.StatusOK {
		return
	}

	flusher, _ := w.(http.Flusher)
	for _, line := range resp.Lines {
		fmt.Fprintf(w, "%s\n", line)
		if flusher != nil {
			flusher.Flush()
		}
		if resp.LineDelay > 0 {
			time.Sleep(resp.LineDelay)
		}
	}

	if resp.HoldOpen {
		select {
		case <-r.Context().Done():
		case <-ms.closeHold:
		}
	}
}

// MockTransport is an http.RoundTripper that records requests and returns
// scripted responses, for tests that don't need a listening server.
type MockTransport struct {
	mu        sync.Mutex
	requests  []*http.Request
	bodies    []string
	responses []*http.Response
	errors    []error
	index     int
}

// NewMockTransport creates an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// AddResponse schedules resp (or err) for the next request.
func (mt *MockTransport) AddResponse(resp *http.Response, err error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.responses = append(mt.responses, resp)
	mt.errors = append(mt.errors, err)
}

// AddStatus schedules a bare response with the given status code and an
// empty body.
func (mt *MockTransport) AddStatus(status int) {
	mt.AddResponse(&http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil)
}

// AddStream schedules a 200 response whose body is the given lines,
// newline-terminated, followed by EOF.
func (mt *MockTransport) AddStream(lines ...string) {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	mt.AddResponse(&http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(sb.String())),
	}, nil)
}

// AddStreamBody schedules a 200 response with the given body reader, useful
// with HoldOpenBody for stall scenarios.
func (mt *MockTransport) AddStreamBody(body io.ReadCloser) {
	mt.AddResponse(&http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       body,
	}, nil)
}

// Requests returns all recorded requests.
func (mt *MockTransport) Requests() []*http.Request {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]*http.Request(nil), mt.requests...)
}

// Bodies returns the recorded request bodies, index-aligned with Requests.
func (mt *MockTransport) Bodies() []string {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]string(nil), mt.bodies...)
}

// RoundTrip implements http.RoundTripper.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.requests = append(mt.requests, req)
	mt.bodies = append(mt.bodies, string(body))

	if mt.index >= len(mt.responses) {
		return nil, fmt.Errorf("no more mock responses configured")
	}

	resp := mt.responses[mt.index]
	err := mt.errors[mt.index]
	mt.index++

	if resp != nil && resp.Request == nil {
		resp.Request = req
	}
	return resp, err
}

// HoldOpenBody is an io.ReadCloser that yields its initial content and then
// blocks until closed, after which reads fail. It simulates a connection
// that goes silent, for stall-detection tests.
type HoldOpenBody struct {
	initial io.Reader
	closed  chan struct{}
	once    sync.Once
}

// NewHoldOpenBody creates a body that serves the given lines
// (newline-terminated) and then hangs.
func NewHoldOpenBody(lines ...string) *HoldOpenBody {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return &HoldOpenBody{
		initial: strings.NewReader(sb.String()),
		closed:  make(chan struct{}),
	}
}

// Read serves the initial content, then blocks until Close.
func (b *HoldOpenBody) Read(p []byte) (int, error) {
	select {
	case <-b.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	n, err := b.initial.Read(p)
	if err == io.EOF && n == 0 {
		<-b.closed
		return 0, io.ErrClosedPipe
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// Close unblocks pending and future reads.
func (b *HoldOpenBody) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}
