package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetcherRun(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte("<rss/>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "CyberGuardian/1.0")
	data, err := fetcher.Run(context.Background(), &Config{
		Name:     "test",
		URL:      server.URL,
		Settings: ConfigSettings{Timeout: 5},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != "<rss/>" {
		t.Errorf("Expected body '<rss/>', got '%s'", data)
	}
	if gotAgent != "CyberGuardian/1.0" {
		t.Errorf("Expected User-Agent 'CyberGuardian/1.0', got '%s'", gotAgent)
	}
}

func TestFetcherRunHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "")
	_, err := fetcher.Run(context.Background(), &Config{URL: server.URL})
	if err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestFetcherFetchPage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expectError bool
	}{
		{name: "html", contentType: "text/html; charset=utf-8", expectError: false},
		{name: "json", contentType: "application/json", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte("<html></html>"))
			}))
			defer server.Close()

			_, err := NewFetcher(server.Client(), "").FetchPage(context.Background(), server.URL, 5)
			if tt.expectError && err == nil {
				t.Error("Expected error")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}
