package whttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSendHTTPRequestPostsBody(t *testing.T) {
	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{
		Method:  "POST",
		URL:     srv.URL + "/save-mood",
		Headers: []WHTTPHeader{{Name: "Content-Type", Value: "application/json"}},
		Body:    `{"mood":4}`,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != 200 || res.BodyString != `{"success":true}` {
		t.Fatalf("unexpected response %+v", res)
	}
	if gotBody != `{"mood":4}` || gotType != "application/json" {
		t.Fatalf("server saw body=%q type=%q", gotBody, gotType)
	}
}

func TestSendHTTPRequestExtractsTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html><head><title>\n502 Bad Gateway\n</title></head><body></body></html>"))
	}))
	defer srv.Close()

	client, err := NewClient(ClientOptions{RetryMax: 0})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{Method: "GET", URL: srv.URL}, client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HTTPTitle != "502 Bad Gateway" {
		t.Fatalf("unexpected title %q", res.HTTPTitle)
	}
	if res.Summary() != "status 502 (502 Bad Gateway)" {
		t.Fatalf("unexpected summary %q", res.Summary())
	}
}

func TestRetryPolicy(t *testing.T) {
	tests := []struct {
		name     string
		retryMax int
		want     int32
	}{
		{name: "no retry", retryMax: 0, want: 1},
		{name: "two retries", retryMax: 2, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			client, err := NewClient(ClientOptions{RetryMax: tt.retryMax})
			if err != nil {
				t.Fatalf("client: %v", err)
			}
			client.RetryWaitMin = 0
			client.RetryWaitMax = 0

			res, err := SendHTTPRequest(context.Background(), &WHTTPReq{Method: "GET", URL: srv.URL}, client)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.StatusCode != http.StatusServiceUnavailable {
				t.Fatalf("expected passthrough of 503, got %d", res.StatusCode)
			}
			if got := atomic.LoadInt32(&hits); got != tt.want {
				t.Fatalf("want %d attempts, got %d", tt.want, got)
			}
		})
	}
}

func TestNewClientRejectsBadProxy(t *testing.T) {
	if _, err := NewClient(ClientOptions{Proxy: "://bad"}); err == nil {
		t.Fatalf("expected invalid proxy to fail")
	}
}
