package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStandardClient_Wraps(t *testing.T) {
	customClient := &http.Client{}
	client := NewStandardClient(customClient)
	if client.Client != customClient {
		t.Error("expected custom client to be wrapped")
	}

	defaulted := NewStandardClient(nil)
	if defaulted.Client != http.DefaultClient {
		t.Error("nil client should select http.DefaultClient")
	}
}

func TestStandardClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	client := NewStandardClient(nil)
	req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
}

func TestMockHTTPClient_CannedResponses(t *testing.T) {
	mock := &MockHTTPClient{
		Responses: []*MockResponse{
			{StatusCode: http.StatusCreated, Body: "first"},
			{Err: errors.New("network down")},
		},
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.test/a", nil)
	resp, err := mock.Do(req)
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || string(body) != "first" {
		t.Errorf("response = %d %q", resp.StatusCode, body)
	}

	if _, err := mock.Do(req); err == nil {
		t.Error("expected configured error on second call")
	}

	// exhausted responses default to 200
	resp, err = mock.Do(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("fallback response = (%v, %v)", resp, err)
	}

	if len(mock.Requests) != 3 {
		t.Errorf("recorded %d requests, want 3", len(mock.Requests))
	}
	if mock.LastRequest().URL.Path != "/a" {
		t.Errorf("LastRequest path = %q", mock.LastRequest().URL.Path)
	}
}

func TestMockHTTPClient_DoFunc(t *testing.T) {
	called := false
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			called = true
			return nil, errors.New("handled")
		},
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
	if _, err := mock.Do(req); err == nil || !called {
		t.Error("DoFunc should handle the request")
	}
}
