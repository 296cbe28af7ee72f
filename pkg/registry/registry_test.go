package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/depvault/pkg/httputil"
)

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lodash/4.17.21" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"name":    "lodash",
			"version": "4.17.21",
			"license": "MIT",
			"dependencies": map[string]string{
				"foo": "^1.0.0",
			},
			"dist": map[string]string{
				"tarball": "http://example.test/lodash-4.17.21.tgz",
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	m, err := c.Fetch(context.Background(), "lodash", "4.17.21")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if m.License != "MIT" {
		t.Errorf("License = %q, want MIT", m.License)
	}
	if m.Tarball != "http://example.test/lodash-4.17.21.tgz" {
		t.Errorf("Tarball = %q", m.Tarball)
	}
	if m.Dependencies["foo"] != "^1.0.0" {
		t.Errorf("Dependencies = %v", m.Dependencies)
	}
}

func TestClientFetchScopedName(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"dist": map[string]string{"tarball": "http://example.test/core-7.23.0.tgz"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	if _, err := c.Fetch(context.Background(), "@babel/core", "7.23.0"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	// The scoped name's slash must pass through unescaped.
	if gotPath != "/@babel/core/7.23.0" {
		t.Errorf("request path = %q, want /@babel/core/7.23.0", gotPath)
	}
}

func TestClientFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	_, err := c.Fetch(context.Background(), "missing", "1.0.0")
	if !errors.Is(err, httputil.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestClientFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	_, err := c.Fetch(context.Background(), "broken", "1.0.0")
	if !errors.Is(err, httputil.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestClientFetchMalformed(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		c := NewClient(server.URL, time.Second)
		if _, err := c.Fetch(context.Background(), "pkg", "1.0.0"); !errors.Is(err, ErrMalformed) {
			t.Errorf("error = %v, want ErrMalformed", err)
		}
	})

	t.Run("missing tarball", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"name": "pkg", "version": "1.0.0"})
		}))
		defer server.Close()

		c := NewClient(server.URL, time.Second)
		if _, err := c.Fetch(context.Background(), "pkg", "1.0.0"); !errors.Is(err, ErrMalformed) {
			t.Errorf("error = %v, want ErrMalformed", err)
		}
	})
}

func TestExtractLicense(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"MIT", "MIT"},
		{map[string]any{"type": "BSD-3-Clause", "url": "http://x"}, "BSD-3-Clause"},
		{map[string]any{"url": "http://x"}, ""},
		{nil, ""},
		{42, ""},
	}
	for _, tt := range tests {
		if got := extractLicense(tt.in); got != tt.want {
			t.Errorf("extractLicense(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
