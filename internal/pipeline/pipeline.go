// Package pipeline wires the walker, classifier, estimator, line counter
// and hierarchy builder into one analysis run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cyclomap/cyclo/internal/analysis"
	"github.com/cyclomap/cyclo/internal/config"
	"github.com/cyclomap/cyclo/internal/debug"
	cycloerrors "github.com/cyclomap/cyclo/internal/errors"
	"github.com/cyclomap/cyclo/internal/lang"
	"github.com/cyclomap/cyclo/internal/loc"
	"github.com/cyclomap/cyclo/internal/scan"
	"github.com/cyclomap/cyclo/internal/tree"
)

// Stats summarizes one run.
type Stats struct {
	Analyzed int // files that produced a node
	Skipped  int // files dropped by a recoverable error
}

// Pipeline runs the analysis for one configuration.
type Pipeline struct {
	cfg     *config.Config
	counter loc.Service

	// Warn receives one line per skipped file. Defaults to stderr.
	Warn io.Writer
}

// New creates a pipeline. counter may be nil, in which case the built-in
// line counter is used.
func New(cfg *config.Config, counter loc.Service) *Pipeline {
	if counter == nil {
		counter = loc.NewCounter()
	}
	return &Pipeline{cfg: cfg, counter: counter, Warn: os.Stderr}
}

// Run walks the configured root, analyzes every matching file and returns
// the validated output arrays. Per-file failures (unknown extension,
// missing line statistics, unreadable file) are logged and skipped; an
// empty result or a builder defect aborts with a consistency error.
func (p *Pipeline) Run(ctx context.Context) (*tree.Arrays, Stats, error) {
	nodes := tree.NewNodeSet()
	var analyzed, skipped atomic.Int64

	walker := scan.NewWalker(p.cfg.Project.Root, p.cfg.Scan.Exclude)

	process := func(entry scan.Entry) {
		if err := p.analyzeFile(entry, nodes); err != nil {
			if cycloerrors.IsRecoverable(err) {
				skipped.Add(1)
				debug.LogAnalysis("skipping %s: %v\n", entry.Path, err)
				fmt.Fprintf(p.Warn, "cyclo: skipping %s: %v\n", entry.Path, err)
				return
			}
			// Non-recoverable per-file errors do not exist today; treat
			// anything unexpected the same way rather than losing the run.
			skipped.Add(1)
			fmt.Fprintf(p.Warn, "cyclo: skipping %s: %v\n", entry.Path, err)
			return
		}
		analyzed.Add(1)
	}

	var err error
	if p.cfg.Scan.Jobs > 1 {
		err = p.runParallel(ctx, walker, process)
	} else {
		err = p.runSequential(ctx, walker, process)
	}
	if err != nil {
		return nil, Stats{}, err
	}

	arrays, err := nodes.Finalize()
	if err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{Analyzed: int(analyzed.Load()), Skipped: int(skipped.Load())}
	debug.LogAnalysis("run complete: %d nodes, %d analyzed, %d skipped, mean cc %.2f\n",
		arrays.Len(), stats.Analyzed, stats.Skipped, arrays.MeanComplexity)
	return arrays, stats, nil
}

// runSequential is the reference behavior: one file at a time, in walk
// order.
func (p *Pipeline) runSequential(ctx context.Context, walker *scan.Walker, process func(scan.Entry)) error {
	return walker.Walk(func(entry scan.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		process(entry)
		return nil
	})
}

// runParallel fans per-file analysis out over a bounded worker group.
// Node insertion serializes inside the NodeSet, so the resulting set is
// identical to the sequential one up to ordering.
func (p *Pipeline) runParallel(ctx context.Context, walker *scan.Walker, process func(scan.Entry)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Scan.Jobs)

	walkErr := walker.Walk(func(entry scan.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			process(entry)
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return walkErr
}

// analyzeFile classifies, scores and counts a single file, then records
// its node. Every error it returns is per-file.
func (p *Pipeline) analyzeFile(entry scan.Entry, nodes *tree.NodeSet) error {
	language, err := lang.Classify(entry.Path)
	if err != nil {
		return err
	}
	profile, ok := lang.ProfileFor(language)
	if !ok {
		return cycloerrors.NewBadExtensionError(entry.Path, string(language))
	}

	f, err := os.Open(entry.Path)
	if err != nil {
		return cycloerrors.NewFileReadError("open", entry.Path, err)
	}
	result, err := analysis.Estimate(f, profile)
	f.Close()
	if err != nil {
		return cycloerrors.NewFileReadError("scan", entry.Path, err)
	}

	lines, err := p.counter.CodeLines(entry.Path, language)
	if err != nil {
		return err
	}

	debug.LogAnalysis("%s: cc=%.0f functions=%d nloc=%d\n",
		entry.Rel, result.Complexity, result.Functions, lines)
	nodes.AddFile(entry.Rel, result.Complexity, lines)
	return nil
}
