package archive

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// recordingSink captures progress events for assertions.
type recordingSink struct {
	mu       sync.Mutex
	totals   map[string]int64
	advances []int64
	done     []string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{totals: make(map[string]int64)}
}

func (s *recordingSink) Start(key string, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[key] = total
}

func (s *recordingSink) Advance(key string, loaded int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advances = append(s.advances, loaded)
}

func (s *recordingSink) Done(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = append(s.done, key)
}

func newStore(t *testing.T, sink ProgressSink) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), time.Second, sink)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func TestFetchWritesArchive(t *testing.T) {
	body := []byte("tarball-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	sink := newRecordingSink()
	s := newStore(t, sink)

	if err := s.Fetch(context.Background(), "lodash", "4.17.21", server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	got, err := os.ReadFile(s.Path("lodash", "4.17.21"))
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("archive content = %q, want %q", got, body)
	}
	if total := sink.totals["lodash@4.17.21"]; total != int64(len(body)) {
		t.Errorf("reported total = %d, want %d", total, len(body))
	}
	if len(sink.done) != 1 {
		t.Errorf("Done called %d times, want 1", len(sink.done))
	}
}

func TestFetchSkipsExisting(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("data"))
	}))
	defer server.Close()

	s := newStore(t, nil)
	dest := s.Path("cached", "1.0.0")
	if err := os.WriteFile(dest, []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Fetch(context.Background(), "cached", "1.0.0", server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if requests != 0 {
		t.Errorf("server received %d requests, want 0 (skip-on-exists)", requests)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "already here" {
		t.Error("existing archive was overwritten")
	}
}

func TestFetchWithoutContentLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing before the body suppresses Content-Length.
		w.WriteHeader(http.StatusOK)
		f := w.(http.Flusher)
		f.Flush()
		w.Write([]byte("chunked-data"))
	}))
	defer server.Close()

	sink := newRecordingSink()
	s := newStore(t, sink)

	if err := s.Fetch(context.Background(), "pkg", "1.0.0", server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if total := sink.totals["pkg@1.0.0"]; total >= 0 {
		t.Errorf("total = %d, want negative (unknown length)", total)
	}
	if len(sink.advances) == 0 {
		t.Error("no byte progress reported for unknown-length download")
	}
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newStore(t, nil)
	err := s.Fetch(context.Background(), "pkg", "1.0.0", server.URL)
	if !errors.Is(err, ErrDownload) {
		t.Errorf("error = %v, want ErrDownload", err)
	}
	if _, statErr := os.Stat(s.Path("pkg", "1.0.0")); statErr == nil {
		t.Error("failed fetch left a destination file behind")
	}
}

func TestFetchTruncatedStreamLeavesNoDestination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte("short"))
		// Closing with fewer bytes than declared aborts the client read.
	}))
	defer server.Close()

	s := newStore(t, nil)
	err := s.Fetch(context.Background(), "pkg", "1.0.0", server.URL)
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("error = %v, want ErrDownload", err)
	}
	// The partial write must not be visible at the destination path, or a
	// future run would treat the truncated file as complete.
	if _, statErr := os.Stat(s.Path("pkg", "1.0.0")); statErr == nil {
		t.Error("truncated download is visible at the destination path")
	}
}

func TestPathFlattensScopedNames(t *testing.T) {
	s := newStore(t, nil)
	got := filepath.Base(s.Path("@babel/core", "7.23.0"))
	if got != "@babel-core-7.23.0.tgz" {
		t.Errorf("Path = %q, want @babel-core-7.23.0.tgz", got)
	}
}
