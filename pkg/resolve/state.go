package resolve

import "sync"

// Edge records the parent under which a package was first scheduled.
// A package reached again later via another parent produces no second
// edge, so the recorded edges always form a forest rooted at the run's
// root packages.
type Edge struct {
	Parent string
	Child  string
}

// State accumulates the outcome of one resolution run.
//
// It is created before the root tasks launch, written by every concurrent
// resolution task, and read only after all tasks have joined. The claim
// set is the sole deduplication mechanism: once a key has been claimed it
// is never resolved or fetched again, even when reached via a different
// parent or a dependency cycle.
type State struct {
	mu       sync.Mutex
	claimed  map[string]bool
	packages []string
	edges    []Edge
	warnings []string
}

// NewState creates empty run state.
func NewState() *State {
	return &State{claimed: make(map[string]bool)}
}

// Claim atomically test-and-sets key in the claim set and, on success,
// appends it to the package list and records the parent edge (parent may
// be empty for roots). It returns false when the key was already claimed,
// whether that earlier resolution has completed or is still in flight;
// the caller must then treat the package as handled and do nothing.
func (s *State) Claim(key, parent string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed[key] {
		return false
	}
	s.claimed[key] = true
	s.packages = append(s.packages, key)
	if parent != "" {
		s.edges = append(s.edges, Edge{Parent: parent, Child: key})
	}
	return true
}

// Warn appends a license warning in discovery order.
func (s *State) Warn(w string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, w)
}

// Packages returns the claimed package keys in claim order.
func (s *State) Packages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.packages...)
}

// Edges returns the recorded dependency edges.
func (s *State) Edges() []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Edge(nil), s.edges...)
}

// Warnings returns the collected license warnings in discovery order.
func (s *State) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}
