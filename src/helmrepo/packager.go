// Package helmrepo packages a chart into a distribution directory and
// regenerates the static-hosting index over everything in it. The helm
// CLI does the packaging and indexing; this package sequences it and
// reports which archive the run produced.
package helmrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/chart"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
)

// Packager runs helm against a chart and output directory.
type Packager struct {
	Runner shell.Runner
}

// NewPackager creates a Packager using the given runner.
func NewPackager(r shell.Runner) *Packager {
	return &Packager{Runner: r}
}

// PackageAndIndex lints the chart, packages it into outDir, and rebuilds
// the entire index keyed to baseURL. The index is regenerated from the
// archive set on disk every run, so stale entries from aborted runs can't
// survive. Returns the newest archive matching the chart's name, or ""
// when none is found (informational — the package step already succeeded).
func (p *Packager) PackageAndIndex(ctx context.Context, chartDir, outDir, baseURL string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", outDir, err)
	}

	if _, err := shell.RunChecked(ctx, p.Runner, shell.Cmd{
		Argv: []string{"helm", "lint", chartDir},
	}); err != nil {
		return "", fmt.Errorf("linting chart: %w", err)
	}

	meta, err := chart.ReadMetadata(chartDir)
	if err != nil {
		return "", err
	}

	if _, err := shell.RunChecked(ctx, p.Runner, shell.Cmd{
		Argv: []string{"helm", "package", chartDir, "-d", outDir},
	}); err != nil {
		return "", fmt.Errorf("packaging chart: %w", err)
	}

	if _, err := shell.RunChecked(ctx, p.Runner, shell.Cmd{
		Argv: []string{"helm", "repo", "index", outDir, "--url", baseURL},
	}); err != nil {
		return "", fmt.Errorf("indexing %s: %w", outDir, err)
	}

	return NewestArchive(outDir, meta.Name), nil
}

// NewestArchive returns the most recently modified <name>-*.tgz in dir,
// or "" when nothing matches.
func NewestArchive(dir, name string) string {
	matches, err := filepath.Glob(filepath.Join(dir, name+"-*.tgz"))
	if err != nil || len(matches) == 0 {
		return ""
	}

	newest := ""
	var newestMod int64
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			continue
		}
		if mod := fi.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = m, mod
		}
	}
	if newest == "" {
		return ""
	}
	return filepath.Base(newest)
}
