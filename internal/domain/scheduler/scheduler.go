// Package scheduler runs resumable work as a sequence of discrete units.
//
// A Task exposes one unit per Step call. Run drives a task either back to back
// (synchronous mode) or in time-boxed slices that hand control back to a host
// Yielder between slices (cooperative mode). Both modes execute the same units
// in the same order; only the interleaving with other host work differs.
// Cooperative mode never adds parallelism: units of one task always run on
// the goroutine that drives it.
package scheduler

import (
	"context"
	"runtime"
	"time"
)

// DefaultBudget is the per-slice time budget used when cooperative mode is
// requested without an explicit budget.
const DefaultBudget = 3 * time.Millisecond

// Task is a resumable unit-of-work sequence.
// Step executes exactly one unit and reports whether the sequence is exhausted.
// A non-nil error aborts the run; Step is not called again after done or error.
type Task interface {
	Step() (done bool, err error)
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func() (bool, error)

// Step calls f.
func (f TaskFunc) Step() (bool, error) { return f() }

// Yielder is the host's cooperative scheduler. Yield is called between slices
// and returns once the host is ready for the next slice. A non-nil error
// (typically ctx.Err()) stops the run.
type Yielder interface {
	Yield(ctx context.Context) error
}

// YieldFunc adapts a plain function to Yielder.
type YieldFunc func(ctx context.Context) error

// Yield calls f.
func (f YieldFunc) Yield(ctx context.Context) error { return f(ctx) }

// goschedYielder hands the processor to other goroutines.
type goschedYielder struct{}

func (goschedYielder) Yield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// Stats records how a run was sliced.
type Stats struct {
	Slices  int
	Units   int
	Elapsed time.Duration
}

// Options controls how a task is driven.
type Options struct {
	Cooperative bool
	Budget      time.Duration
	Yielder     Yielder
	Now         func() time.Time
	Stats       *Stats
}

// Option mutates Options.
type Option func(*Options)

// WithCooperative selects time-sliced execution with the given per-slice
// budget. A non-positive budget selects DefaultBudget.
func WithCooperative(budget time.Duration) Option {
	return func(o *Options) {
		o.Cooperative = true
		if budget > 0 {
			o.Budget = budget
		}
	}
}

// WithYielder replaces the default Gosched-based yielder.
func WithYielder(y Yielder) Option {
	return func(o *Options) { o.Yielder = y }
}

// WithClock replaces time.Now as the slice clock.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithStats records run statistics into s once the run ends.
func WithStats(s *Stats) Option {
	return func(o *Options) { o.Stats = s }
}

func newOptions(opts []Option) Options {
	o := Options{
		Budget:  DefaultBudget,
		Yielder: goschedYielder{},
		Now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Run drives task to completion on the calling goroutine.
//
// In synchronous mode units run back to back; ctx is only consulted between
// units. In cooperative mode each slice runs at least one unit and keeps
// going until the budget is spent, then Run yields to the host. A cancelled
// context stops the run at the next unit or yield boundary and its error is
// returned unchanged.
func Run(ctx context.Context, task Task, opts ...Option) error {
	o := newOptions(opts)
	var st Stats
	began := o.Now()
	defer func() {
		if o.Stats != nil {
			st.Elapsed = o.Now().Sub(began)
			*o.Stats = st
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !o.Cooperative {
		st.Slices = 1
		for {
			done, err := task.Step()
			st.Units++
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	for {
		st.Slices++
		sliceStart := o.Now()
		for {
			done, err := task.Step()
			st.Units++
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			if o.Now().Sub(sliceStart) >= o.Budget {
				break
			}
		}
		if err := o.Yielder.Yield(ctx); err != nil {
			return err
		}
	}
}
