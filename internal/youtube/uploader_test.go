package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"tunecast/internal/testsupport"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJob(t *testing.T, size int) UploadJob {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	testsupport.WriteFile(t, path, int64(size))
	return UploadJob{
		FilePath:    path,
		Title:       "Artist - Song",
		Description: "desc",
		Tags:        []string{"music"},
		CategoryID:  "10",
		Privacy:     "unlisted",
	}
}

// uploadServer simulates the resumable upload protocol. failures counts down
// a number of 503 responses injected before any request succeeds.
type uploadServer struct {
	t        *testing.T
	failures int
	requests int
	received int64
	total    int64
	videoID  string
}

func (s *uploadServer) handler(sessionURL *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.requests++
		if s.failures > 0 {
			s.failures--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		switch r.Method {
		case http.MethodPost:
			total, err := strconv.ParseInt(r.Header.Get("X-Upload-Content-Length"), 10, 64)
			if err != nil {
				s.t.Errorf("bad X-Upload-Content-Length: %v", err)
			}
			s.total = total
			w.Header().Set("Location", *sessionURL)
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			contentRange := r.Header.Get("Content-Range")
			if strings.HasPrefix(contentRange, "bytes */") {
				// Offset query.
				if s.received > 0 {
					w.Header().Set("Range", fmt.Sprintf("bytes=0-%d", s.received-1))
				}
				w.WriteHeader(http.StatusPermanentRedirect)
				return
			}
			body, err := io.ReadAll(r.Body)
			if err != nil {
				s.t.Errorf("read chunk: %v", err)
			}
			s.received += int64(len(body))
			if s.received >= s.total {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"id":%q}`, s.videoID)
				return
			}
			w.Header().Set("Range", fmt.Sprintf("bytes=0-%d", s.received-1))
			w.WriteHeader(http.StatusPermanentRedirect)
		default:
			s.t.Errorf("unexpected method %s", r.Method)
		}
	}
}

func newTestUploader(t *testing.T, server *uploadServer, opts ...Option) *Uploader {
	t.Helper()
	var sessionURL string
	ts := httptest.NewServer(server.handler(&sessionURL))
	t.Cleanup(ts.Close)
	sessionURL = ts.URL + "/session"

	base := []Option{
		WithEndpoint(ts.URL),
		WithSleeper(func(time.Duration) {}),
		WithRandom(func() float64 { return 0.5 }),
	}
	return NewUploader(ts.Client(), discardLogger(), append(base, opts...)...)
}

func TestUploadSendsFileInChunks(t *testing.T) {
	server := &uploadServer{t: t, videoID: "vid123"}
	uploader := newTestUploader(t, server, WithChunkSize(16))

	job := testJob(t, 40)
	id, err := uploader.Upload(context.Background(), job)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if id != "vid123" {
		t.Fatalf("unexpected video id %q", id)
	}
	if server.received != 40 {
		t.Fatalf("server received %d bytes, want 40", server.received)
	}
	// 1 start + 3 chunks of 16/16/8 bytes.
	if server.requests != 4 {
		t.Fatalf("expected 4 requests, got %d", server.requests)
	}
}

func TestUploadRetriesTransientFailures(t *testing.T) {
	server := &uploadServer{t: t, failures: 3, videoID: "vid123"}
	var sleeps []time.Duration
	uploader := newTestUploader(t, server,
		WithChunkSize(64),
		WithSleeper(func(d time.Duration) { sleeps = append(sleeps, d) }),
	)

	id, err := uploader.Upload(context.Background(), testJob(t, 32))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if id != "vid123" {
		t.Fatalf("unexpected video id %q", id)
	}
	if len(sleeps) != 3 {
		t.Fatalf("expected 3 backoff sleeps, got %d", len(sleeps))
	}
}

func TestBackoffSleepBoundedByExponential(t *testing.T) {
	uploader := NewUploader(nil, discardLogger())
	for attempt := 0; attempt <= maxRetries; attempt++ {
		ceiling := time.Duration(float64(uint64(1)<<uint(attempt)) * float64(time.Second))
		for trial := 0; trial < 50; trial++ {
			if delay := uploader.backoff(attempt); delay > ceiling {
				t.Fatalf("attempt %d: delay %v exceeds ceiling %v", attempt, delay, ceiling)
			}
		}
	}
}

func TestUploadAbortsAfterTooManyRetries(t *testing.T) {
	server := &uploadServer{t: t, failures: 1 << 30, videoID: "never"}
	var sleeps int
	uploader := newTestUploader(t, server,
		WithSleeper(func(time.Duration) { sleeps++ }),
	)

	_, err := uploader.Upload(context.Background(), testJob(t, 8))
	if !errors.Is(err, ErrTooManyRetries) {
		t.Fatalf("expected ErrTooManyRetries, got %v", err)
	}
	if sleeps != maxRetries {
		t.Fatalf("expected %d backoff sleeps, got %d", maxRetries, sleeps)
	}
	// Initial attempt plus exactly maxRetries retries, never a further one.
	if server.requests != maxRetries+1 {
		t.Fatalf("expected %d attempts, got %d", maxRetries+1, server.requests)
	}
}

func TestUploadPermanentErrorDoesNotRetry(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(ts.Close)

	uploader := NewUploader(ts.Client(), discardLogger(),
		WithEndpoint(ts.URL),
		WithSleeper(func(time.Duration) { t.Fatal("must not sleep on permanent error") }),
	)

	_, err := uploader.Upload(context.Background(), testJob(t, 8))
	if err == nil {
		t.Fatal("expected permanent error")
	}
	var statusErr *statusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected a single attempt, got %d", requests)
	}
}

// failingTransport fails every request at the transport layer, the way the
// oauth2 client does when the token endpoint rejects a refresh.
type failingTransport struct {
	err error
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func TestUploadInvalidGrantIsPermanent(t *testing.T) {
	refreshErr := &oauth2.RetrieveError{
		Body: []byte(`{"error":"invalid_grant"}`),
	}
	client := &http.Client{Transport: &failingTransport{err: refreshErr}}

	uploader := NewUploader(client, discardLogger(),
		WithSleeper(func(time.Duration) { t.Fatal("must not retry invalid credentials") }),
	)

	_, err := uploader.Upload(context.Background(), testJob(t, 8))
	if err == nil {
		t.Fatal("expected credential error")
	}
	if errors.Is(err, ErrTooManyRetries) {
		t.Fatalf("credential failure exhausted the retry budget: %v", err)
	}
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		t.Fatalf("expected token retrieve error, got %v", err)
	}
}

func TestUploadMissingVideoIDIsFatal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Location", "http://"+r.Host+"/session")
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(ts.Close)

	uploader := NewUploader(ts.Client(), discardLogger(),
		WithEndpoint(ts.URL),
		WithSleeper(func(time.Duration) { t.Fatal("must not retry a malformed response") }),
	)

	_, err := uploader.Upload(context.Background(), testJob(t, 8))
	if err == nil || !strings.Contains(err.Error(), "missing video id") {
		t.Fatalf("expected missing-id error, got %v", err)
	}
}

func TestUploadRejectsInvalidPrivacy(t *testing.T) {
	uploader := NewUploader(nil, discardLogger())
	job := testJob(t, 8)
	job.Privacy = "secret"
	if _, err := uploader.Upload(context.Background(), job); err == nil {
		t.Fatal("expected invalid privacy error")
	}
}

func TestUploadResumesFromCommittedOffset(t *testing.T) {
	// Fail exactly one chunk mid-upload, then verify the retry asks the
	// session for the committed offset and finishes.
	server := &uploadServer{t: t, videoID: "vid123"}
	var sessionURL string
	chunkPuts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && !strings.HasPrefix(r.Header.Get("Content-Range"), "bytes */") {
			chunkPuts++
			if chunkPuts == 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
		}
		server.handler(&sessionURL)(w, r)
	}))
	t.Cleanup(ts.Close)
	sessionURL = ts.URL + "/session"

	uploader := NewUploader(ts.Client(), discardLogger(),
		WithEndpoint(ts.URL),
		WithChunkSize(16),
		WithSleeper(func(time.Duration) {}),
		WithRandom(func() float64 { return 0 }),
	)

	id, err := uploader.Upload(context.Background(), testJob(t, 48))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if id != "vid123" {
		t.Fatalf("unexpected video id %q", id)
	}
	if server.received != 48 {
		t.Fatalf("server received %d bytes, want 48", server.received)
	}
}

func TestTransientClassification(t *testing.T) {
	for _, code := range []int{500, 502, 503, 504} {
		if !transient(&statusError{StatusCode: code}) {
			t.Fatalf("status %d should be transient", code)
		}
	}
	for _, code := range []int{400, 401, 403, 404, 409, 410} {
		if transient(&statusError{StatusCode: code}) {
			t.Fatalf("status %d should be permanent", code)
		}
	}
	if transient(context.Canceled) {
		t.Fatal("context cancellation should not be retried")
	}
	if !transient(io.ErrUnexpectedEOF) {
		t.Fatal("truncated reads should be transient")
	}
	if transient(&url.Error{Op: "Post", URL: "https://example.invalid", Err: &oauth2.RetrieveError{}}) {
		t.Fatal("token refresh failures should not be retried")
	}
	if !transient(&url.Error{Op: "Post", URL: "https://example.invalid", Err: io.ErrUnexpectedEOF}) {
		t.Fatal("wrapped transport failures should be transient")
	}
}

func TestParseRangeEnd(t *testing.T) {
	cases := []struct {
		header string
		want   int64
		ok     bool
	}{
		{"bytes=0-524287", 524287, true},
		{"bytes=0-0", 0, true},
		{"", 0, false},
		{"bytes=0-", 0, false},
		{"garbage", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseRangeEnd(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parseRangeEnd(%q) = %d,%v want %d,%v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResolveCategory(t *testing.T) {
	if id, err := ResolveCategory("10"); err != nil || id != "10" {
		t.Fatalf("ResolveCategory(10) = %q, %v", id, err)
	}
	if id, err := ResolveCategory("Music"); err != nil || id != "10" {
		t.Fatalf("ResolveCategory(Music) = %q, %v", id, err)
	}
	if _, err := ResolveCategory("Underwater Basket Weaving"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestValidPrivacy(t *testing.T) {
	for _, privacy := range []string{"public", "private", "unlisted"} {
		if !ValidPrivacy(privacy) {
			t.Fatalf("%q should be valid", privacy)
		}
	}
	if ValidPrivacy("secret") || ValidPrivacy("") {
		t.Fatal("unexpected privacy accepted")
	}
}
