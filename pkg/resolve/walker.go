// Package resolve implements the concurrent dependency graph walk.
//
// Starting from one or more root packages, the walker coerces each
// package's version, claims the resulting name@version key in the shared
// run state, fetches metadata and archive, audits the license, and
// recurses into the declared dependencies. Every failure is contained at
// the failing node: a package whose metadata or archive fetch fails is
// logged and dropped, and its siblings and the rest of the graph keep
// resolving.
package resolve

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depvault/pkg/license"
	"github.com/matzehuels/depvault/pkg/registry"
	"github.com/matzehuels/depvault/pkg/semver"
)

// DefaultLimit bounds how many of one node's direct dependencies resolve
// concurrently. The bound is per dependency list, not global: branches
// resolving at different levels of the tree each get their own budget,
// so total in-flight resolutions may exceed it.
const DefaultLimit = 5

// MetadataFetcher retrieves package metadata from a registry.
// Implementations must be safe for concurrent use.
type MetadataFetcher interface {
	Fetch(ctx context.Context, name, version string) (*registry.Metadata, error)
}

// ArchiveFetcher stores a package archive locally. Implementations skip
// work when the archive is already present and must be safe for
// concurrent use.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, name, version, url string) error
}

// Options configures a Walker.
type Options struct {
	// Limit is the per-dependency-list concurrency bound (default 5).
	Limit int

	// Logf receives per-node failures and skips. These are informational:
	// by the time Logf is called the failure has already been contained.
	Logf func(format string, args ...any)
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Logf == nil {
		o.Logf = func(string, ...any) {}
	}
	return o
}

// RootSpec names one root package to resolve.
type RootSpec struct {
	Name  string
	Range string
}

// Walker resolves packages and their transitive dependency graphs into a
// shared [State]. A Walker is safe for concurrent use; all mutable state
// lives in the State.
type Walker struct {
	meta     MetadataFetcher
	archives ArchiveFetcher
	audit    *license.Auditor
	state    *State
	opts     Options
}

// NewWalker creates a Walker writing into state.
func NewWalker(meta MetadataFetcher, archives ArchiveFetcher, audit *license.Auditor, state *State, opts Options) *Walker {
	return &Walker{
		meta:     meta,
		archives: archives,
		audit:    audit,
		state:    state,
		opts:     opts.withDefaults(),
	}
}

// ResolveAll launches every root concurrently and blocks until the whole
// graph has been walked. Roots are not throttled; only each node's
// direct dependency list is.
func (w *Walker) ResolveAll(ctx context.Context, roots []RootSpec) {
	var wg sync.WaitGroup
	for _, r := range roots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Resolve(ctx, r.Name, r.Range, "")
		}()
	}
	wg.Wait()
}

// Resolve resolves one package and recurses into its dependencies.
// parentKey is empty for roots.
//
// Resolve never returns an error: every failure is converted to a log
// entry at this node's boundary and the node's subtree is simply not
// expanded further. A dependency cycle terminates through the claim
// check; a key whose resolution is still in flight when revisited is
// treated the same as a completed one.
func (w *Walker) Resolve(ctx context.Context, name, rangeSpec, parentKey string) {
	version, err := semver.Coerce(rangeSpec)
	if err != nil {
		w.opts.Logf("skipping %s: %v", name, err)
		return
	}
	key := semver.Key(name, version)

	if !w.state.Claim(key, parentKey) {
		return
	}

	meta, err := w.meta.Fetch(ctx, name, version)
	if err != nil {
		w.opts.Logf("metadata fetch failed for %s: %v", key, err)
		return
	}

	if warning, ok := w.audit.Audit(key, meta.License); !ok {
		w.state.Warn(string(warning))
		w.opts.Logf("license warning: %s", warning)
	}

	if err := w.archives.Fetch(ctx, name, version, meta.Tarball); err != nil {
		// A lost archive does not stop the subtree from resolving.
		w.opts.Logf("archive fetch failed for %s: %v", key, err)
	}

	w.expand(ctx, key, meta.Dependencies)
}

// expand recurses into a node's dependency list with at most opts.Limit
// resolutions of that list in flight at once.
func (w *Walker) expand(ctx context.Context, parentKey string, deps map[string]string) {
	if len(deps) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(w.opts.Limit)
	for name, rng := range deps {
		g.Go(func() error {
			w.Resolve(ctx, name, rng, parentKey)
			return nil
		})
	}
	_ = g.Wait() // Resolve never errors
}
