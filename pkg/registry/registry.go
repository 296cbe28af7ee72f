// Package registry implements a client for npm-style package registries.
//
// Metadata for a name+version pair is fetched with a single
// GET {base}/{name}/{version}. Scoped names ("@scope/name") are passed
// through with their slash unescaped, which is what the npm registry
// expects for version-level lookups.
//
// The client performs no retries; callers decide whether a failed fetch
// is worth repeating. For this tool a re-run is cheap because completed
// downloads are skipped.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/depvault/pkg/httputil"
)

// DefaultURL is the public npm registry.
const DefaultURL = "https://registry.npmjs.org"

// DefaultTimeout bounds a single metadata request. Metadata payloads are
// small; a request taking longer than this is stuck, not slow.
const DefaultTimeout = 10 * time.Second

// ErrMalformed is returned when the registry responds 200 with a payload
// that can't be used (undecodable JSON, missing dist.tarball).
var ErrMalformed = errors.New("malformed registry payload")

// Metadata describes one concrete package version as the registry sees it.
type Metadata struct {
	Name         string
	Version      string
	License      string // empty when the package declares none
	Dependencies map[string]string
	Tarball      string
}

// Client fetches package metadata from a single registry.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a Client for the registry at baseURL.
// An empty baseURL selects [DefaultURL]; a zero timeout selects
// [DefaultTimeout].
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    httputil.NewClient(timeout),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Fetch retrieves metadata for the package at the given version or dist-tag.
//
// Errors wrap httputil.ErrNotFound, httputil.ErrNetwork, or ErrMalformed.
func (c *Client) Fetch(ctx context.Context, name, version string) (*Metadata, error) {
	url := c.baseURL + "/" + name + "/" + version

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httputil.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httputil.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("%s@%s: %w", name, version, err)
	}

	var payload versionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.Dist.Tarball == "" {
		return nil, fmt.Errorf("%w: %s@%s has no dist.tarball", ErrMalformed, name, version)
	}

	m := &Metadata{
		Name:         payload.Name,
		Version:      payload.Version,
		License:      extractLicense(payload.License),
		Dependencies: payload.Dependencies,
		Tarball:      payload.Dist.Tarball,
	}
	if m.Name == "" {
		m.Name = name
	}
	if m.Version == "" {
		m.Version = version
	}
	return m, nil
}

// versionPayload is the subset of a registry version document we consume.
type versionPayload struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	License      any               `json:"license"`
	Dependencies map[string]string `json:"dependencies"`
	Dist         dist              `json:"dist"`
}

type dist struct {
	Tarball string `json:"tarball"`
}

// extractLicense handles both the modern string form and the legacy
// {"type": "..."} object form still present in older npm payloads.
func extractLicense(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val["type"].(string); ok {
			return s
		}
	}
	return ""
}
