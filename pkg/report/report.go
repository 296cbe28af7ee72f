// Package report renders the outcome of a resolution run.
//
// The text report has three sections: the flat package list in discovery
// order, a depth-indented dependency tree per root, and the collected
// license warnings. The tree is a pre-order traversal of the recorded
// edges; since only the first parent of each package ever records an
// edge, the traversal is a forest walk and needs no cycle guard.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/depvault/pkg/resolve"
)

// NoWarnings is the sentinel line written when every license passed audit.
const NoWarnings = "No license warnings."

// Builder assembles the final report from the run's accumulated state.
type Builder struct {
	RunID    string
	Roots    []string // root package keys in input order
	Packages []string // claim order
	Edges    []resolve.Edge
	Warnings []string
}

// Render produces the full text report.
func (b *Builder) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "depvault run %s\n\n", b.RunID)

	fmt.Fprintf(&sb, "Packages (%d):\n", len(b.Packages))
	for _, p := range b.Packages {
		fmt.Fprintf(&sb, "  %s\n", p)
	}

	sb.WriteString("\nDependency trees:\n")
	children := make(map[string][]string, len(b.Edges))
	for _, e := range b.Edges {
		children[e.Parent] = append(children[e.Parent], e.Child)
	}
	for _, root := range b.Roots {
		writeTree(&sb, children, root, 0)
	}

	sb.WriteString("\nLicense warnings:\n")
	if len(b.Warnings) == 0 {
		fmt.Fprintf(&sb, "  %s\n", NoWarnings)
	}
	for _, w := range b.Warnings {
		fmt.Fprintf(&sb, "  %s\n", w)
	}

	return sb.String()
}

// writeTree emits key and its subtree pre-order, two spaces per depth
// level.
func writeTree(sb *strings.Builder, children map[string][]string, key string, depth int) {
	fmt.Fprintf(sb, "%s%s\n", strings.Repeat("  ", depth), key)
	for _, child := range children[key] {
		writeTree(sb, children, child, depth+1)
	}
}

// WriteFile renders the report and overwrites path with it.
func (b *Builder) WriteFile(path string) error {
	return os.WriteFile(path, []byte(b.Render()), 0o644)
}
