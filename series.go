package iterator

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/simon020286/go-step-iterator/log"
	"github.com/simon020286/go-step-iterator/models"
)

const (
	pending int32 = iota
	completedInline
	detached
)

// MapSeries drives it over steps one at a time and calls final exactly
// once. Results are collected in step order; the first error stops the
// sequence and final receives the results gathered before it.
// Steps that complete inline are looped over rather than recursed into
func MapSeries(steps []*models.Step, it IteratorFunc, final func(err error, results []any)) {
	mapSeries(steps, it, nil, final)
}

// mapSeries checks stop before starting each step. A non-nil error from
// stop ends the sequence with that error and no further step is started
func mapSeries(steps []*models.Step, it IteratorFunc, stop func() error, final func(err error, results []any)) {
	results := make([]any, len(steps))

	var run func(start int)
	run = func(start int) {
		for i := start; i < len(steps); i++ {
			if stop != nil {
				if err := stop(); err != nil {
					final(err, results[:i])
					return
				}
			}

			idx := i
			var state atomic.Int32
			var stepErr error

			it(steps[idx], func(err error, result any) {
				stepErr = err
				if err == nil {
					results[idx] = result
				}
				if state.CompareAndSwap(pending, completedInline) {
					return
				}
				if err != nil {
					final(err, results[:idx])
					return
				}
				run(idx + 1)
			})

			if state.CompareAndSwap(pending, detached) {
				return
			}
			if stepErr != nil {
				final(stepErr, results[:idx])
				return
			}
		}
		final(nil, results)
	}
	run(0)
}

// RunSeries is the blocking form of MapSeries. Cancelling ctx stops the
// wait and keeps any further step from starting; the step in flight is
// left to finish on its own
func RunSeries(ctx context.Context, steps []*models.Step, it IteratorFunc) ([]any, error) {
	type outcome struct {
		results []any
		err     error
	}
	ch := make(chan outcome, 1)

	mapSeries(steps, it, ctx.Err, func(err error, results []any) {
		ch <- outcome{results: results, err: err}
	})

	select {
	case out := <-ch:
		return out.results, out.err
	default:
	}

	select {
	case out := <-ch:
		return out.results, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run makes an iterator from opts and runs steps through it
func (b *Base) Run(ctx context.Context, steps []*models.Step, opts *Options) ([]any, error) {
	b.init()
	settle := opts != nil && opts.Settle
	logger := b.logger.With(log.InstanceID(b.id), log.RunID(uuid.NewString()))

	logger.Info("sequence started", "steps", len(steps), log.Settled(settle))
	results, err := RunSeries(ctx, steps, b.MakeIterator(opts))
	if err != nil {
		logger.Error("sequence failed", log.Error(err), "completed", len(results))
		return results, err
	}
	logger.Info("sequence completed", "results", len(results))
	return results, nil
}
