// Package cli implements the depvault command-line interface.
//
// depvault downloads packages and their transitive dependency graphs
// from an npm-style registry, auditing licenses along the way and
// writing a plain-text dependency report. The CLI is built with cobra;
// commands support --verbose (-v) for debug-level logging, with loggers
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// Typically called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the depvault CLI. This is the main entry point.
//
// Per-package resolution failures never affect the exit status: the run
// completes and reports them. A non-nil error return (and non-zero exit)
// means the run could not start at all: malformed root specifier, bad
// config, or a storage directory that couldn't be created.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "depvault",
		Short:        "depvault downloads dependency graphs from package registries",
		Long:         `depvault resolves a package and its transitive dependencies from an npm-style registry, stores each version's archive locally, audits licenses against an allow-list, and writes a dependency report.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("depvault %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newFetchCmd())
	root.AddCommand(newAuditCmd())

	return root.ExecuteContext(ctx)
}
