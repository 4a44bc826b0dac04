// Package httputil provides HTTP client abstractions for testability.
package httputil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// HTTPClient abstracts HTTP operations for testability.
// Use StandardClient for production; MockHTTPClient for testing.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// StandardClient wraps *http.Client to implement HTTPClient.
type StandardClient struct {
	*http.Client
}

// NewStandardClient creates a new StandardClient wrapping the given
// http.Client. A nil client selects http.DefaultClient.
func NewStandardClient(c *http.Client) *StandardClient {
	if c == nil {
		c = http.DefaultClient
	}
	return &StandardClient{Client: c}
}

// Do sends an HTTP request.
func (c *StandardClient) Do(req *http.Request) (*http.Response, error) {
	return c.Client.Do(req)
}

// MockHTTPClient provides a testable HTTP client implementation. Requests
// are recorded; responses come from DoFunc when set, otherwise from the
// canned Responses list in order.
type MockHTTPClient struct {
	mu sync.Mutex

	// DoFunc handles requests when set
	DoFunc func(req *http.Request) (*http.Response, error)

	// Requests records every request sent through the client
	Requests []*http.Request

	// Responses are returned in order when DoFunc is unset
	Responses []*MockResponse

	responseIdx int
}

// MockResponse defines a canned HTTP response for testing.
type MockResponse struct {
	StatusCode int
	Body       string
	Err        error
}

// Do records the request and returns the next configured response.
func (c *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Requests = append(c.Requests, req)

	if c.DoFunc != nil {
		return c.DoFunc(req)
	}

	if c.responseIdx >= len(c.Responses) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	}

	r := c.Responses[c.responseIdx]
	c.responseIdx++

	if r.Err != nil {
		return nil, r.Err
	}

	return &http.Response{
		StatusCode: r.StatusCode,
		Status:     http.StatusText(r.StatusCode),
		Body:       io.NopCloser(bytes.NewReader([]byte(r.Body))),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// LastRequest returns the most recent request, or nil if none.
func (c *MockHTTPClient) LastRequest() *http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.Requests) == 0 {
		return nil
	}
	return c.Requests[len(c.Requests)-1]
}
