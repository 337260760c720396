/*
Package digest turns one MSA into the set of FKmer/RKmer anchors a pair
generator can join into amplicons. Each alignment column is independent, so
the engine fans columns out across a worker pool and collects results back
in column order, the same errgroup.WithContext shape poly's bio.ManyToChannel
uses to run many parsers concurrently and fail fast on the first error.
*/
package digest

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
)

// Result is the outcome of digesting one MSA: every accepted FKmer/RKmer,
// plus a report for every column attempted (accepted or not) for
// diagnostics and the plot-data artifact.
type Result struct {
	FKmers  []primer.FKmer
	RKmers  []primer.RKmer
	Reports []ColumnReport
}

// Digest walks every column of m in both directions, bounded by a worker
// pool sized to GOMAXPROCS, and returns every accepted anchor sorted by its
// anchor column.
func Digest(ctx context.Context, m *msa.MSA, cfg config.RunConfig) (Result, error) {
	if len(m.Rows) == 0 {
		return Result{}, fmt.Errorf("digest: %s: no rows", m.Name)
	}

	type fJob struct{ end int }
	type rJob struct{ start int }

	fJobs := make([]fJob, 0, m.Cols)
	for end := cfg.PrimerSizeMin; end <= m.Cols; end++ {
		fJobs = append(fJobs, fJob{end: end})
	}
	rJobs := make([]rJob, 0, m.Cols)
	for start := 0; start <= m.Cols-cfg.PrimerSizeMin; start++ {
		rJobs = append(rJobs, rJob{start: start})
	}

	fResults := make([]*primer.FKmer, len(fJobs))
	fReports := make([]ColumnReport, len(fJobs))
	rResults := make([]*primer.RKmer, len(rJobs))
	rReports := make([]ColumnReport, len(rJobs))

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, job := range fJobs {
		i, job := i, job
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fk, report := ForwardColumn(m, job.end, cfg)
			fResults[i] = fk
			fReports[i] = report
			return nil
		})
	}
	for i, job := range rJobs {
		i, job := i, job
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rk, report := ReverseColumn(m, job.start, cfg)
			rResults[i] = rk
			rReports[i] = report
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Result{}, fmt.Errorf("digest: %s: %w", m.Name, err)
	}

	var out Result
	for i, fk := range fResults {
		out.Reports = append(out.Reports, fReports[i])
		if fk != nil {
			out.FKmers = append(out.FKmers, *fk)
		}
	}
	for i, rk := range rResults {
		out.Reports = append(out.Reports, rReports[i])
		if rk != nil {
			out.RKmers = append(out.RKmers, *rk)
		}
	}

	sort.Slice(out.FKmers, func(i, j int) bool { return out.FKmers[i].End < out.FKmers[j].End })
	sort.Slice(out.RKmers, func(i, j int) bool { return out.RKmers[i].Start < out.RKmers[j].Start })
	sort.Slice(out.Reports, func(i, j int) bool {
		a, b := out.Reports[i], out.Reports[j]
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return !a.Reverse && b.Reverse
	})

	return out, nil
}
