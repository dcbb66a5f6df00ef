package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/webclarity/clarity-backend/internal/apperr"
)

func newTestFetcher(t *testing.T, timeout time.Duration) PageFetcher {
	t.Helper()
	return &pageFetcher{
		log:     newTestLogger(t),
		client:  &http.Client{},
		timeout: timeout,
	}
}

func TestFetchReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><h1>ok</h1></body></html>"))
	}))
	defer srv.Close()

	markup, err := newTestFetcher(t, 2*time.Second).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(markup) != "<html><body><h1>ok</h1></body></html>" {
		t.Fatalf("unexpected body: %q", markup)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 2*time.Second).Fetch(context.Background(), srv.URL)
	if !apperr.IsFetch(err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 50*time.Millisecond).Fetch(context.Background(), srv.URL)
	if !apperr.IsFetch(err) {
		t.Fatalf("expected fetch error on timeout, got %v", err)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestFetcher(t, time.Second).Fetch(context.Background(), url)
	if !apperr.IsFetch(err) {
		t.Fatalf("expected fetch error for closed server, got %v", err)
	}
}
