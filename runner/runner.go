// Package runner walks a spec tree depth-first, composes hook chains at every
// nesting level, executes each spec exactly once through a pluggable strategy
// and aggregates a final report.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/specgo/specgo/model"
	"github.com/specgo/specgo/spec"
)

// Runner orchestrates one or more runs over immutable spec trees. A Runner is
// reusable; all per-run state lives in a fresh runState per invocation.
type Runner struct {
	logger    zerolog.Logger
	strategy  Strategy
	reporters []Reporter
	timeout   time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithStrategy selects the execution strategy. The default is Sequential.
func WithStrategy(s Strategy) Option {
	return func(r *Runner) { r.strategy = s }
}

// WithReporter registers a progress observer.
func WithReporter(rep Reporter) Option {
	return func(r *Runner) { r.reporters = append(r.reporters, rep) }
}

// WithTimeout bounds a run. Specs not started when the timeout fires are
// reported Skipped; a spec already executing is allowed to finish.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// New creates a Runner.
func New(logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:   logger,
		strategy: Sequential{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// runState is the mutable state of a single run.
type runState struct {
	composer  *spec.Composer
	bail      *BailController
	focused   bool
	nextIndex int
	setupErr  map[*spec.Context]error
	firstIdx  map[*spec.Context]int
	results   []model.SpecResult
}

// Run executes the tree and returns its report.
func (r *Runner) Run(tree *spec.Tree) (*model.SpecReport, error) {
	return r.RunContext(context.Background(), tree)
}

// RunContext executes the tree under an externally cancellable context.
// Cancellation is observed at spec boundaries only; the report still
// enumerates every declared spec.
func (r *Runner) RunContext(ctx context.Context, tree *spec.Tree) (*model.SpecReport, error) {
	if tree == nil || tree.Root == nil {
		return nil, errors.New("spec tree has no root")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	run := &runState{
		composer: spec.NewComposer(),
		bail:     NewBailController(),
		focused:  tree.HasFocused(),
		setupErr: make(map[*spec.Context]error),
		firstIdx: make(map[*spec.Context]int),
	}

	total := tree.CountSpecs()
	r.logger.Debug().Int("specs", total).Bool("focused", run.focused).Msg("Starting run")
	r.notify(func(rep Reporter) { rep.RunStarting(total) })

	start := time.Now()
	r.visit(ctx, tree.Root, run)

	report := &model.SpecReport{
		Results:  run.results,
		Summary:  model.Summarize(run.results),
		Duration: time.Since(start),
	}
	r.notify(func(rep Reporter) { rep.RunCompleted(report) })
	return report, nil
}

// visit processes a context depth-first: its own specs, then its children,
// then its one-shot teardown. This ordering makes AfterAll hooks fire
// innermost first, after the last spec under each context.
func (r *Runner) visit(ctx context.Context, c *spec.Context, run *runState) {
	r.runBatch(ctx, c, run)
	for _, ch := range c.Children {
		r.visit(ctx, ch, run)
	}
	r.teardown(ctx, c, run)
}

// runBatch executes the specs declared directly in c as one flat batch.
func (r *Runner) runBatch(ctx context.Context, c *spec.Context, run *runState) {
	if len(c.Specs) == 0 {
		return
	}

	path := c.Path()
	batch := make([]model.SpecResult, len(c.Specs))
	var units []Unit
	var unitSlots []int

	for i, s := range c.Specs {
		idx := run.nextIndex
		run.nextIndex++
		switch {
		case s.Skipped:
			batch[i] = predecided(s, path, idx, model.StatusSkipped)
		case run.focused && !s.Focused:
			batch[i] = predecided(s, path, idx, model.StatusSkipped)
		case s.Pending():
			batch[i] = predecided(s, path, idx, model.StatusPending)
		default:
			units = append(units, Unit{
				Index:       idx,
				Description: s.Description,
				ContextPath: path,
				Action:      s.Action,
			})
			unitSlots = append(unitSlots, i)
		}
	}

	if len(units) > 0 {
		var unitResults []model.SpecResult
		if ctx.Err() != nil || run.bail.Triggered() {
			unitResults = make([]model.SpecResult, len(units))
			for i, u := range units {
				unitResults[i] = skippedResult(u)
			}
		} else if err := r.setup(ctx, c, run); err != nil {
			// Every spec that required the failed one-shot chain fails with
			// the hook's error; their own actions never run.
			unitResults = make([]model.SpecResult, len(units))
			for i, u := range units {
				unitResults[i] = failedResult(u, err)
			}
		} else {
			before := run.composer.BeforeChain(c)
			after := run.composer.AfterChain(c)
			for i := range units {
				units[i].Before = before
				units[i].After = after
			}
			unitResults = r.strategy.Execute(ctx, units, run.bail)
		}
		for i, res := range unitResults {
			batch[unitSlots[i]] = res
		}
	}

	run.append(c, batch)
	r.notifyBatch(batch)
}

// setup fires the one-shot setup hooks for c's ancestor chain that have not
// fired yet, outermost context first. A failure marks the owning context so
// every later batch under it fails with the same cause.
func (r *Runner) setup(ctx context.Context, c *spec.Context, run *runState) error {
	for n := c; n != nil; n = n.Parent() {
		if err := run.setupErr[n]; err != nil {
			return err
		}
	}
	for _, level := range run.composer.Setup(c) {
		run.composer.Attempted(level.Owner)
		for _, h := range level.Hooks {
			if err := safeCall(ctx, h); err != nil {
				run.setupErr[level.Owner] = err
				r.logger.Debug().Err(err).Strs("context", level.Owner.Path()).Msg("One-shot setup hook failed")
				return err
			}
		}
	}
	return nil
}

// teardown fires c's one-shot teardown hooks once its setup boundary was
// reached. A teardown failure becomes a secondary error on the first executed
// spec under c, and never overwrites a spec's own failure.
func (r *Runner) teardown(ctx context.Context, c *spec.Context, run *runState) {
	hooks := run.composer.Teardown(c)
	if len(hooks) == 0 {
		return
	}

	var first error
	for _, h := range hooks {
		if err := safeCall(ctx, h); err != nil && first == nil {
			first = err
		}
	}
	if first == nil {
		return
	}

	if idx, ok := run.firstIdx[c]; ok {
		res := &run.results[idx]
		if res.Failure == nil {
			res.Status = model.StatusFailed
			res.Failure = failureFrom(first)
			return
		}
	}
	r.logger.Warn().Err(first).Strs("context", c.Path()).Msg("One-shot teardown hook failed")
}

// append records a finished batch and remembers, per context chain, the first
// executed result for secondary-error attribution.
func (run *runState) append(c *spec.Context, batch []model.SpecResult) {
	base := len(run.results)
	run.results = append(run.results, batch...)
	for i, res := range batch {
		if res.Status != model.StatusPassed && res.Status != model.StatusFailed {
			continue
		}
		for n := c; n != nil; n = n.Parent() {
			if _, ok := run.firstIdx[n]; !ok {
				run.firstIdx[n] = base + i
			}
		}
		break
	}
}

func predecided(s *spec.Spec, path []string, idx int, status model.Status) model.SpecResult {
	return model.SpecResult{
		Description: s.Description,
		ContextPath: path,
		Index:       idx,
		Status:      status,
	}
}

func failedResult(u Unit, err error) model.SpecResult {
	return model.SpecResult{
		Description: u.Description,
		ContextPath: u.ContextPath,
		Index:       u.Index,
		Status:      model.StatusFailed,
		Failure:     failureFrom(err),
	}
}

// notify invokes fn once per registered reporter, isolating panics so a
// broken observer cannot abort the run.
func (r *Runner) notify(fn func(Reporter)) {
	for _, rep := range r.reporters {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Warn().Interface("panic", rec).Msg("Reporter panicked")
				}
			}()
			fn(rep)
		}()
	}
}

func (r *Runner) notifyBatch(results []model.SpecResult) {
	if len(results) == 0 {
		return
	}
	switch r.strategy.(type) {
	case Sequential, *Sequential:
		for _, res := range results {
			res := res
			r.notify(func(rep Reporter) { rep.SpecCompleted(res) })
		}
	default:
		r.notify(func(rep Reporter) { rep.BatchCompleted(results) })
	}
}
