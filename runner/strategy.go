package runner

// This file contains the execution strategies that schedule a flat batch of
// runnable specs and return results in declaration order.

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specgo/specgo/model"
	"github.com/specgo/specgo/spec"
)

// Unit is one schedulable spec together with its composed per-spec hook
// chains. Before runs outer contexts first; After runs innermost first.
type Unit struct {
	Index       int
	Description string
	ContextPath []string
	Action      spec.Action
	Before      []spec.Entry
	After       []spec.Entry
}

// Strategy schedules a batch of units and returns one result per unit, in
// declaration order regardless of completion order. Cancellation and the bail
// latch are checked at spec boundaries only, never mid-hook, so a setup hook
// that started always pairs with its teardown.
type Strategy interface {
	Execute(ctx context.Context, units []Unit, bail *BailController) []model.SpecResult
}

// Sequential processes units strictly in declaration order, one at a time.
// An asynchronous action is awaited before the next spec starts.
type Sequential struct {
	// BailOnFailure trips the bail latch after the first failed spec.
	BailOnFailure bool
}

// Execute runs each unit in order. Once the bail latch trips or the context
// is done, remaining units are still enumerated as Skipped rather than
// omitted, without invoking their hooks.
func (s Sequential) Execute(ctx context.Context, units []Unit, bail *BailController) []model.SpecResult {
	results := make([]model.SpecResult, len(units))
	for i, u := range units {
		if ctx.Err() != nil || bail.Triggered() {
			results[i] = skippedResult(u)
			continue
		}
		results[i] = runUnit(ctx, u)
		if results[i].Status == model.StatusFailed && s.BailOnFailure {
			bail.Signal()
		}
	}
	return results
}

// BoundedParallel fans units out to a fixed-size worker pool. Workers claim
// the next unclaimed unit by original index; each writes only its own result
// slot, so the returned list is always in declaration order.
//
// Bail is best-effort: the latch is checked before a worker runs a claimed
// unit, but units already in flight run to completion.
type BoundedParallel struct {
	// Workers is the pool size. Zero or negative selects the available
	// hardware concurrency.
	Workers int
	// BailOnFailure trips the bail latch after the first failed spec.
	BailOnFailure bool
}

func (p BoundedParallel) Execute(ctx context.Context, units []Unit, bail *BailController) []model.SpecResult {
	results := make([]model.SpecResult, len(units))
	if len(units) == 0 {
		return results
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(units) {
		workers = len(units)
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(units) {
					return
				}
				u := units[i]
				if ctx.Err() != nil || bail.Triggered() {
					results[i] = skippedResult(u)
					continue
				}
				res := runUnit(ctx, u)
				if res.Status == model.StatusFailed && p.BailOnFailure {
					bail.Signal()
				}
				results[i] = res
			}
		}()
	}
	wg.Wait()
	return results
}

// runUnit executes one spec with its hook chains.
//
// If a setup hook fails, the action never runs and teardown hooks are still
// attempted for every context level whose setup boundary was reached,
// including the failing level. The first error wins: a teardown failure never
// masks a setup or spec failure.
func runUnit(ctx context.Context, u Unit) model.SpecResult {
	start := time.Now()
	res := model.SpecResult{
		Description: u.Description,
		ContextPath: u.ContextPath,
		Index:       u.Index,
	}

	failedDepth := -1
	var primary error
	for _, e := range u.Before {
		if err := safeCall(ctx, e.Hook); err != nil {
			primary = err
			failedDepth = e.Depth
			break
		}
	}
	if primary == nil {
		primary = safeCall(ctx, spec.Hook(u.Action))
	}

	var secondary error
	for _, e := range u.After {
		if failedDepth >= 0 && e.Depth > failedDepth {
			continue
		}
		if err := safeCall(ctx, e.Hook); err != nil && secondary == nil {
			secondary = err
		}
	}

	err := primary
	if err == nil {
		err = secondary
	}

	res.Duration = time.Since(start)
	if err != nil {
		res.Status = model.StatusFailed
		res.Failure = failureFrom(err)
	} else {
		res.Status = model.StatusPassed
	}
	return res
}

func skippedResult(u Unit) model.SpecResult {
	return model.SpecResult{
		Description: u.Description,
		ContextPath: u.ContextPath,
		Index:       u.Index,
		Status:      model.StatusSkipped,
	}
}

// panicError carries the stack captured when an action panicked.
type panicError struct {
	value any
	stack string
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// safeCall invokes h, converting a panic into an error so one spec cannot
// take down the run.
func safeCall(ctx context.Context, h spec.Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: string(debug.Stack())}
		}
	}()
	return h(ctx)
}

func failureFrom(err error) *model.Failure {
	f := &model.Failure{Message: err.Error()}
	if pe, ok := err.(*panicError); ok {
		f.Stack = pe.stack
	}
	return f
}
