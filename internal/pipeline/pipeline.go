// Package pipeline runs the full analysis over a batch of IR files.
// Files are independent, so they are featurized concurrently; within one
// file the analysis passes run sequentially. A file that cannot be read
// is recorded in the run summary and never aborts the batch.
package pipeline

import (
	"context"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mlgoperf/ir-feature-query/internal/scanner"
	"github.com/mlgoperf/ir-feature-query/pkg/dataset"
	"github.com/mlgoperf/ir-feature-query/pkg/features"
	"github.com/mlgoperf/ir-feature-query/pkg/ir"
)

// Options configures a pipeline run.
type Options struct {
	// Workers bounds concurrent file analyses. Values below 1 mean 1.
	Workers int
	// PerFile selects one aggregate row per file instead of one row per
	// function.
	PerFile bool
	// LoopMarker overrides the loop anchor text. Empty uses the default.
	LoopMarker string
	// Cache, when non-nil, serves unchanged files from a previous run
	// and records fresh results.
	Cache *dataset.RowCache
	// Progress, when non-nil, is called after each file completes.
	Progress func(done, total int)
}

// Failure records why one file produced no rows.
type Failure struct {
	Path   string
	Reason string
}

// Result summarizes a pipeline run.
type Result struct {
	// Rows holds all feature rows in input file order.
	Rows []features.Row
	// Attempted and Succeeded count files, not rows.
	Attempted int
	Succeeded int
	// Failures lists per-file failure reasons.
	Failures []Failure
	// CacheHits counts files served from the row cache.
	CacheHits int
}

// Run featurizes every file and collects the rows. The returned error is
// only non-nil when the context is canceled; per-file problems land in
// Result.Failures.
func Run(ctx context.Context, files []scanner.FileInfo, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	extractor := &features.Extractor{LoopMarker: opts.LoopMarker}

	perFile := make([][]features.Row, len(files))
	res := &Result{Attempted: len(files)}

	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rows, hit, err := featurizeFile(extractor, file, opts)

			mu.Lock()
			defer mu.Unlock()
			done++
			if opts.Progress != nil {
				opts.Progress(done, len(files))
			}
			if err != nil {
				res.Failures = append(res.Failures, Failure{Path: file.Path, Reason: err.Error()})
				return nil
			}
			perFile[i] = rows
			res.Succeeded++
			if hit {
				res.CacheHits++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rows := range perFile {
		res.Rows = append(res.Rows, rows...)
	}
	return res, nil
}

// featurizeFile analyzes one file, consulting the cache first. The
// returned bool reports a cache hit.
func featurizeFile(extractor *features.Extractor, file scanner.FileInfo, opts Options) ([]features.Row, bool, error) {
	data, err := os.ReadFile(file.FullPath)
	if err != nil {
		return nil, false, err
	}

	var key string
	if opts.Cache != nil {
		key = dataset.CacheKey(file.Path, data, opts.PerFile)
		if rows, ok := opts.Cache.Get(key); ok {
			return rows, true, nil
		}
	}

	m := ir.Parse(file.Path, string(data))

	var rows []features.Row
	if opts.PerFile {
		rows = []features.Row{extractor.FileRow(m)}
	} else {
		rows = extractor.FunctionRows(m)
	}

	if opts.Cache != nil {
		opts.Cache.Put(key, rows)
	}
	return rows, false, nil
}
