// Package engine runs a compiled predicate over a dataset in one pass.
//
// The match count is always exact. Matching rows are kept only while the count stays within the
// cap; past it the engine keeps counting but drops the rows, and the result carries the count
// alone.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/dataset"
	"github.com/datazip-inc/slicer/predicate"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Cap is the largest count that is still materialized; 0 means constants.MaxExportRows.
	Cap int64
	// Workers evaluating batches in parallel; 0 or 1 evaluates on the calling goroutine.
	Workers int
	// CountOnly skips materialization entirely; the result is never Materialized.
	CountOnly bool
	// Progress, when set, is updated after every batch.
	Progress *Progress
}

// Evaluate scans ds once and returns the exact match count, plus the matching rows in dataset
// order when the count does not exceed the cap.
func Evaluate(ctx context.Context, ds dataset.Dataset, pred *predicate.Predicate, opts Options) (*types.Result, error) {
	if pred == nil {
		return nil, &EvaluationError{Dataset: ds.Name(), Err: errors.New("no predicate to evaluate")}
	}
	if opts.Cap < 0 {
		return nil, &EvaluationError{Dataset: ds.Name(), Err: fmt.Errorf("invalid cap %d", opts.Cap)}
	}
	if opts.Cap == 0 {
		opts.Cap = constants.MaxExportRows
	}

	columns := ds.Columns()
	matcher := pred.Bind(columns)
	acc := newAccumulator(opts.Cap)
	if opts.CountOnly {
		acc.overflow = true
		acc.over.Store(true)
	}
	start := time.Now()

	logger.Debugf("evaluating %d constraints over %s with %d worker(s)", len(pred.Fields()), ds.Name(), max(opts.Workers, 1))

	var err error
	if opts.Workers <= 1 {
		err = evaluateSequential(ctx, ds, matcher, acc, opts.Progress)
	} else {
		err = evaluateParallel(ctx, ds, matcher, acc, opts)
	}
	if err == nil {
		// a source may finish without noticing a late cancellation
		err = ctx.Err()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %s", ctxErr, err)
		}
		return nil, &EvaluationError{Dataset: ds.Name(), Err: err}
	}

	logger.Infof("scanned %s rows of %s in %s: %s matches",
		humanize.Comma(acc.scanned), ds.Name(), time.Since(start).Round(time.Millisecond), humanize.Comma(acc.count))

	if opts.CountOnly {
		return types.NewCountResult(acc.count, columns, pred.Constraints()), nil
	}
	if acc.overflow {
		logger.Infof("match count %s exceeds the export cap of %s, rows are not materialized",
			humanize.Comma(acc.count), humanize.Comma(opts.Cap))
		return types.NewCountResult(acc.count, columns, pred.Constraints()), nil
	}
	return types.NewMaterializedResult(acc.count, columns, acc.rows, pred.Constraints()), nil
}

// accumulator merges batch outcomes in dataset order.
type accumulator struct {
	cap      int64
	count    int64
	scanned  int64
	rows     []types.Row
	overflow bool
	// over lets parallel workers stop materializing once the cap is known to be exceeded
	over atomic.Bool
}

func newAccumulator(limit int64) *accumulator {
	return &accumulator{cap: limit}
}

func (a *accumulator) merge(c chunk) {
	a.scanned += c.scanned
	a.count += c.matched
	if a.overflow {
		return
	}
	if a.count > a.cap {
		a.overflow = true
		a.over.Store(true)
		a.rows = nil
		return
	}
	a.rows = append(a.rows, c.rows...)
}

// chunk is the outcome of one batch. rows is nil when materialization was skipped.
type chunk struct {
	seq     int
	scanned int64
	matched int64
	rows    []types.Row
}

func evaluateBatch(ctx context.Context, matcher predicate.RowMatcher, batch []types.Row, materialize bool) (chunk, error) {
	c := chunk{scanned: int64(len(batch))}
	for _, row := range batch {
		select {
		case <-ctx.Done():
			return chunk{}, ctx.Err()
		default:
		}

		if !matcher(row) {
			continue
		}
		c.matched++
		if materialize {
			c.rows = append(c.rows, row)
		}
	}
	return c, nil
}

func evaluateSequential(ctx context.Context, ds dataset.Dataset, matcher predicate.RowMatcher, acc *accumulator, progress *Progress) error {
	return ds.Scan(ctx, func(batch []types.Row) error {
		c, err := evaluateBatch(ctx, matcher, batch, !acc.overflow)
		if err != nil {
			return err
		}
		acc.merge(c)
		progress.add(c.scanned, c.matched)
		return nil
	})
}

type job struct {
	seq   int
	batch []types.Row
}

// evaluateParallel fans batches out to workers and merges their chunks back in sequence.
func evaluateParallel(ctx context.Context, ds dataset.Dataset, matcher predicate.RowMatcher, acc *accumulator, opts Options) error {
	group, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, opts.Workers)
	results := make(chan chunk, opts.Workers)

	group.Go(func() error {
		defer close(jobs)
		seq := 0
		return ds.Scan(gctx, func(batch []types.Row) error {
			select {
			case jobs <- job{seq: seq, batch: batch}:
				seq++
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	var workers sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		workers.Add(1)
		group.Go(func() error {
			defer workers.Done()
			for j := range jobs {
				c, err := evaluateBatch(gctx, matcher, j.batch, !acc.over.Load())
				if err != nil {
					return err
				}
				c.seq = j.seq
				opts.Progress.add(c.scanned, c.matched)

				select {
				case results <- c:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		workers.Wait()
		close(results)
	}()

	pending := make(map[int]chunk)
	next := 0
	for c := range results {
		pending[c.seq] = c
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			acc.merge(ready)
			next++
		}
	}

	return group.Wait()
}
