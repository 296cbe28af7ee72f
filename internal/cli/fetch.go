package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depvault/pkg/archive"
	"github.com/matzehuels/depvault/pkg/license"
	"github.com/matzehuels/depvault/pkg/registry"
	"github.com/matzehuels/depvault/pkg/report"
	"github.com/matzehuels/depvault/pkg/resolve"
	"github.com/matzehuels/depvault/pkg/semver"
)

// runOpts holds the command-line flags shared by fetch and audit.
type runOpts struct {
	dir         string // storage directory
	clean       bool   // clear storage dir before starting
	concurrency int    // per-dependency-list bound
	reportPath  string // report file (default <dir>/report.txt)
	graphPath   string // optional SVG graph export
	configPath  string // explicit config file
	registryURL string // registry base URL override
}

func (o *runOpts) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.concurrency, "concurrency", "c", 0, "max concurrent resolutions per dependency list")
	cmd.Flags().StringVar(&o.configPath, "config", "", "config file (default ~/.config/depvault/config.toml)")
	cmd.Flags().StringVar(&o.registryURL, "registry", "", "registry base URL")
}

func newFetchCmd() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "fetch <package>[@version]...",
		Short: "Download packages and their transitive dependencies",
		Long: `Fetch resolves each named package and its full transitive dependency
graph, stores every resolved version's archive in the storage directory,
and writes a dependency report.

Versions are coerced, not range-solved: "lodash@^4.17" downloads 4.17.0.
Archives already present in the storage directory are skipped, so
re-running after a partial failure only fetches what is missing.

Examples:
  depvault fetch lodash
  depvault fetch lodash@4.17.21 express@^4.18
  depvault fetch @babel/core@7.23.0 --dir ./vendor --clean`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runFetch(c.Context(), &opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "storage directory (default ./packages)")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "clear the storage directory before starting")
	cmd.Flags().StringVarP(&opts.reportPath, "report", "r", "", "report file (default <dir>/report.txt)")
	cmd.Flags().StringVar(&opts.graphPath, "graph", "", "also export the dependency graph as SVG")

	return cmd
}

func runFetch(ctx context.Context, opts *runOpts, args []string) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	roots, rootKeys, err := parseRoots(args)
	if err != nil {
		return err
	}

	dir := firstOf(opts.dir, cfg.Dir, "packages")
	store, err := archive.NewStore(dir, cfg.ArchiveTimeout.Duration, newProgressSink())
	if err != nil {
		return fmt.Errorf("cannot create storage directory %s: %w", dir, err)
	}
	if opts.clean {
		if err := store.Clean(); err != nil {
			return fmt.Errorf("cannot clear storage directory: %w", err)
		}
	}

	builder, state := resolveGraph(ctx, opts, cfg, roots, rootKeys, store)

	reportPath := firstOf(opts.reportPath, filepath.Join(dir, "report.txt"))
	if err := builder.WriteFile(reportPath); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if opts.graphPath != "" {
		if err := exportGraph(builder, opts.graphPath); err != nil {
			// The run itself succeeded; a failed export is not fatal.
			printError("graph export failed: %v", err)
		}
	}

	printSuccess("Downloaded %s packages to %s",
		StyleHighlight.Render(fmt.Sprint(len(builder.Packages))), dir)
	if n := len(state.Warnings()); n > 0 {
		printWarning("%d license warning(s), see %s", n, reportPath)
	}
	logger.Info("report written", "path", reportPath)
	return nil
}

// resolveGraph walks the graph for the given roots and returns the
// report builder over the accumulated state.
func resolveGraph(ctx context.Context, opts *runOpts, cfg Config, roots []resolve.RootSpec, rootKeys []string, archives resolve.ArchiveFetcher) (*report.Builder, *resolve.State) {
	logger := loggerFromContext(ctx)
	runID := uuid.NewString()
	logger.Info("starting resolution", "run", runID, "roots", len(roots))

	client := registry.NewClient(firstOf(opts.registryURL, cfg.Registry), cfg.MetadataTimeout.Duration)
	auditor := license.NewAuditor(cfg.AllowedLicenses)
	state := resolve.NewState()

	limit := opts.concurrency
	if limit <= 0 {
		limit = cfg.Concurrency
	}
	walker := resolve.NewWalker(client, archives, auditor, state, resolve.Options{
		Limit: limit,
		Logf: func(format string, args ...any) {
			logger.Warnf(format, args...)
		},
	})

	p := newProgress(logger)
	walker.ResolveAll(ctx, roots)
	p.done(fmt.Sprintf("Resolved %d packages", len(state.Packages())))

	return &report.Builder{
		RunID:    runID,
		Roots:    rootKeys,
		Packages: state.Packages(),
		Edges:    state.Edges(),
		Warnings: state.Warnings(),
	}, state
}

// parseRoots validates the root specifiers up front. Unlike dependency
// versions, a malformed root aborts the run before any work starts.
func parseRoots(args []string) ([]resolve.RootSpec, []string, error) {
	roots := make([]resolve.RootSpec, 0, len(args))
	keys := make([]string, 0, len(args))
	for _, arg := range args {
		s, err := semver.ParseSpecifier(arg)
		if err != nil {
			return nil, nil, err
		}
		v, err := semver.Coerce(s.Range)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", arg, err)
		}
		roots = append(roots, resolve.RootSpec{Name: s.Name, Range: s.Range})
		keys = append(keys, semver.Key(s.Name, v))
	}
	return roots, keys, nil
}

func exportGraph(b *report.Builder, path string) error {
	svg, err := report.RenderSVG(b.ToDOT())
	if err != nil {
		return err
	}
	return os.WriteFile(path, svg, 0o644)
}

// firstOf returns the first non-empty string.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
