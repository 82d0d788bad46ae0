package harvest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const servedListing = `<html><body>
<h2>Pop</h2>
<p><strong>Alpha Song</strong></p>
<p><a href="alpha_full.zip">Full Multitrack (210MB)</a></p>
</body></html>`

func newTestHarvester(url string) *Harvester {
	return New(Config{
		ListingURL:   url,
		Timeout:      2 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		UserAgent:    "stemscan-test/1.0",
	})
}

func TestRunRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if got := r.Header.Get("User-Agent"); got != "stemscan-test/1.0" {
			t.Errorf("unexpected User-Agent %q", got)
		}
		io.WriteString(w, servedListing)
	}))
	defer srv.Close()

	links, err := newTestHarvester(srv.URL).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d: %+v", len(links), links)
	}
	if links[0].Track != "Alpha Song" || links[0].Kind != KindFullMultitrack {
		t.Errorf("unexpected link %+v", links[0])
	}
}

func TestRunGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestHarvester(srv.URL).Run(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 requests, got %d", got)
	}
}

func TestRunDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestHarvester(srv.URL).Run(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestRunEmptyListingIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><p>Down for maintenance.</p></body></html>`)
	}))
	defer srv.Close()

	_, err := newTestHarvester(srv.URL).Run(context.Background())
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestRunCanceledContext(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, servedListing)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestHarvester(srv.URL).Run(ctx)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no requests after cancel, got %d", got)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name   string
		resp   *http.Response
		err    error
		expect bool
	}{
		{"transport error", nil, errors.New("connection refused"), true},
		{"no response", nil, nil, false},
		{"ok", &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}, nil, false},
		{"not found", &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}}, nil, false},
		{"rate limited", &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}, nil, true},
		{"server error", &http.Response{StatusCode: http.StatusBadGateway, Header: http.Header{}}, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, got := shouldRetry(tc.resp, tc.err); got != tc.expect {
				t.Errorf("shouldRetry = %v, want %v", got, tc.expect)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	withHeader := func(v string) *http.Response {
		resp := &http.Response{Header: http.Header{}}
		if v != "" {
			resp.Header.Set("Retry-After", v)
		}
		return resp
	}

	if d := parseRetryAfter(withHeader("")); d != 0 {
		t.Errorf("absent header: got %v, want 0", d)
	}
	if d := parseRetryAfter(withHeader("2")); d != 2*time.Second {
		t.Errorf("seconds: got %v, want 2s", d)
	}
	if d := parseRetryAfter(withHeader("soon")); d != 0 {
		t.Errorf("garbage: got %v, want 0", d)
	}

	future := time.Now().Add(3 * time.Second).UTC().Format(http.TimeFormat)
	if d := parseRetryAfter(withHeader(future)); d <= 0 || d > 3*time.Second {
		t.Errorf("future date: got %v, want within (0, 3s]", d)
	}

	past := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	if d := parseRetryAfter(withHeader(past)); d != 0 {
		t.Errorf("past date: got %v, want 0", d)
	}
}

func TestSleepWithContext(t *testing.T) {
	if err := sleepWithContext(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("short sleep: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepWithContext(ctx, time.Hour); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
