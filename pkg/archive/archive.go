// Package archive streams package tarballs into a flat local store.
//
// Filenames are derived from name and version, with path separators in
// scoped names flattened to hyphens ("@scope/pkg" at 1.0.0 becomes
// "@scope-pkg-1.0.0.tgz"). A file already present at the destination is
// treated as a completed download and skipped without any network
// traffic, which is what makes re-running the tool after failures cheap.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/depvault/pkg/httputil"
)

// DefaultTimeout bounds one archive stream. Artifacts can be large, so
// this is far looser than the metadata timeout.
const DefaultTimeout = 5 * time.Minute

// ErrDownload is returned for any failure while fetching or writing an
// archive.
var ErrDownload = errors.New("download failed")

// ProgressSink receives byte progress while an archive streams to disk.
//
// Start is called once per download with the declared content length, or
// -1 when the remote response carries no Content-Length; the sink then
// only sees raw byte counts instead of being able to compute a
// percentage, which is not an error. Done is called exactly once per
// started key.
//
// Implementations must be safe for concurrent use: several downloads
// report interleaved.
type ProgressSink interface {
	Start(key string, total int64)
	Advance(key string, loaded int64)
	Done(key string)
}

// NopSink discards all progress events.
type NopSink struct{}

func (NopSink) Start(string, int64)   {}
func (NopSink) Advance(string, int64) {}
func (NopSink) Done(string)           {}

// Store downloads archives into a single directory.
// It is safe for concurrent use; filenames are unique per package
// version, so concurrent fetches never contend on a file.
type Store struct {
	dir  string
	http *http.Client
	sink ProgressSink
}

// NewStore creates the storage directory if needed and returns a Store
// reporting progress to sink (nil for none).
func NewStore(dir string, timeout time.Duration, sink ProgressSink) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Store{dir: dir, http: httputil.NewClient(timeout), sink: sink}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the destination file for a package version.
func (s *Store) Path(name, version string) string {
	flat := strings.ReplaceAll(name, "/", "-")
	return filepath.Join(s.dir, flat+"-"+version+".tgz")
}

// Fetch streams the archive at url into the store.
//
// If the destination file already exists the fetch is skipped entirely:
// no request, no overwrite, no error. Otherwise the response is streamed
// to a ".partial" file and renamed into place only on success, so a
// truncated stream never masquerades as a completed download on the
// next run.
func (s *Store) Fetch(ctx context.Context, name, version, url string) error {
	dest := s.Path(name, version)
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	key := name + "@" + version
	s.sink.Start(key, resp.ContentLength)
	defer s.sink.Done(key)

	partial := dest + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	w := &progressWriter{sink: s.sink, key: key}
	if _, err := io.Copy(io.MultiWriter(f, w), resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := os.Rename(partial, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return nil
}

// Clean removes every file in the storage directory, keeping the
// directory itself.
func (s *Store) Clean() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// progressWriter forwards cumulative byte counts to the sink as the
// response body streams through it.
type progressWriter struct {
	sink   ProgressSink
	key    string
	loaded int64
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.loaded += int64(len(p))
	w.sink.Advance(w.key, w.loaded)
	return len(p), nil
}
