// Package license classifies declared package licenses against an
// allow-list.
package license

import (
	"fmt"
	"strings"
)

// DefaultAllowed lists the SPDX identifiers accepted when no allow-list
// is configured.
var DefaultAllowed = []string{
	"MIT",
	"Apache-2.0",
	"BSD-2-Clause",
	"BSD-3-Clause",
	"ISC",
	"Unlicense",
	"0BSD",
}

// Warning is an immutable record describing one non-compliant package.
type Warning string

// Auditor checks declared licenses against a fixed allow-list.
// It is pure classification: no I/O, safe for concurrent use.
type Auditor struct {
	allowed map[string]struct{}
}

// NewAuditor builds an Auditor from the given allow-list, falling back to
// [DefaultAllowed] when the list is empty. Matching is case-insensitive.
func NewAuditor(allowed []string) *Auditor {
	if len(allowed) == 0 {
		allowed = DefaultAllowed
	}
	m := make(map[string]struct{}, len(allowed))
	for _, l := range allowed {
		m[strings.ToLower(l)] = struct{}{}
	}
	return &Auditor{allowed: m}
}

// Audit classifies the declared license of the package identified by key
// (name@version). ok is true when the license is allow-listed; otherwise
// a Warning is returned whose wording distinguishes a missing license
// ("Unknown") from a disallowed one.
func (a *Auditor) Audit(key, declared string) (Warning, bool) {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return Warning(fmt.Sprintf("%s: license Unknown (none declared)", key)), false
	}
	if _, ok := a.allowed[strings.ToLower(declared)]; !ok {
		return Warning(fmt.Sprintf("%s: license %q is not on the allow-list", key, declared)), false
	}
	return "", true
}
