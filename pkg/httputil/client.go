// Package httputil provides the shared HTTP plumbing for registry and
// archive clients: tuned clients and response status classification.
package httputil

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

var (
	// ErrNotFound is returned when a package or archive doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
	// non-2xx responses).
	ErrNetwork = errors.New("network error")
)

// NewClient creates an HTTP client with the given overall request timeout
// and connection pooling suited to many concurrent requests against a
// single registry host.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// CheckStatus maps an HTTP status code to the package's error taxonomy.
// 200 is success, 404 is ErrNotFound, everything else is ErrNetwork.
func CheckStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
