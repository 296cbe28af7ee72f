package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depvault/pkg/report"
)

func newAuditCmd() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "audit <package>[@version]...",
		Short: "Audit licenses across a dependency graph without downloading",
		Long: `Audit resolves the full transitive dependency graph of each named
package and checks every declared license against the allow-list, but
downloads no archives and writes no files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runAudit(c.Context(), &opts, args)
		},
	}

	opts.register(cmd)
	return cmd
}

func runAudit(ctx context.Context, opts *runOpts, args []string) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	roots, rootKeys, err := parseRoots(args)
	if err != nil {
		return err
	}

	builder, state := resolveGraph(ctx, opts, cfg, roots, rootKeys, nopArchive{})

	warnings := state.Warnings()
	if len(warnings) == 0 {
		printSuccess("%s (%d packages audited)", report.NoWarnings, len(builder.Packages))
		return nil
	}
	for _, w := range warnings {
		printWarning("%s", w)
	}
	printError("%d of %d packages failed the license audit", len(warnings), len(builder.Packages))
	return nil
}

// nopArchive satisfies resolve.ArchiveFetcher for audit-only runs.
type nopArchive struct{}

func (nopArchive) Fetch(context.Context, string, string, string) error { return nil }
