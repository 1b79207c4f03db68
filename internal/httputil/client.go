// Package httputil provides an HTTP client abstraction so outbound calls
// can be recorded and faked in tests.
package httputil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"
)

// Doer is the minimal client contract used by outbound API clients.
// *http.Client satisfies it; Recorder fakes it for tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultClient returns an *http.Client with a sane timeout for calls to
// the workflow scheduler.
func DefaultClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// Recorder is a Doer that records every request and replays canned
// responses in order. Once the queue is exhausted it answers 200 with an
// empty body.
type Recorder struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses []cannedResponse
	next      int
}

type recordedRequest struct {
	Request *http.Request
	Body    []byte
}

type cannedResponse struct {
	status int
	body   string
	err    error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Respond queues a response with the given status and body.
func (r *Recorder) Respond(status int, body string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, cannedResponse{status: status, body: body})
	return r
}

// Fail queues a transport-level error.
func (r *Recorder) Fail(err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, cannedResponse{err: err})
	return r
}

// Do records the request (including its body) and returns the next queued
// response.
func (r *Recorder) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	r.requests = append(r.requests, recordedRequest{Request: req, Body: body})

	if r.next < len(r.responses) {
		canned := r.responses[r.next]
		r.next++
		if canned.err != nil {
			return nil, canned.err
		}
		return &http.Response{
			StatusCode: canned.status,
			Body:       io.NopCloser(bytes.NewBufferString(canned.body)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString("")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// RequestCount returns how many requests were recorded.
func (r *Recorder) RequestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// Request returns the nth recorded request, or nil if out of range.
func (r *Recorder) Request(n int) *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 0 || n >= len(r.requests) {
		return nil
	}
	return r.requests[n].Request
}

// RequestBody returns the body of the nth recorded request.
func (r *Recorder) RequestBody(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 0 || n >= len(r.requests) {
		return nil
	}
	return r.requests[n].Body
}
