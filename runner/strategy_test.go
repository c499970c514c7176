package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specgo/specgo/model"
	"github.com/specgo/specgo/spec"
)

// eventLog records hook and spec invocations across goroutines.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(name string) {
	l.mu.Lock()
	l.events = append(l.events, name)
	l.mu.Unlock()
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) hook(name string) spec.Hook {
	return func(ctx context.Context) error {
		l.add(name)
		return nil
	}
}

func passingUnit(idx int, log *eventLog) Unit {
	return Unit{
		Index:       idx,
		Description: fmt.Sprintf("spec-%d", idx),
		Action: func(ctx context.Context) error {
			if log != nil {
				log.add(fmt.Sprintf("spec-%d", idx))
			}
			return nil
		},
	}
}

func failingUnit(idx int) Unit {
	return Unit{
		Index:       idx,
		Description: fmt.Sprintf("spec-%d", idx),
		Action: func(ctx context.Context) error {
			return errors.New("boom")
		},
	}
}

func TestSequentialRunsInDeclarationOrder(t *testing.T) {
	log := &eventLog{}
	units := []Unit{passingUnit(0, log), passingUnit(1, log), passingUnit(2, log)}

	results := Sequential{}.Execute(context.Background(), units, NewBailController())

	require.Len(t, results, 3)
	assert.Equal(t, []string{"spec-0", "spec-1", "spec-2"}, log.list())
	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, model.StatusPassed, res.Status)
	}
}

func TestSequentialBailSkipsRemaining(t *testing.T) {
	log := &eventLog{}
	before := []spec.Entry{{Hook: log.hook("before"), Depth: 1}}
	units := []Unit{failingUnit(0), passingUnit(1, log), passingUnit(2, log)}
	for i := range units {
		units[i].Before = before
	}

	bail := NewBailController()
	results := Sequential{BailOnFailure: true}.Execute(context.Background(), units, bail)

	require.Len(t, results, 3)
	assert.Equal(t, model.StatusFailed, results[0].Status)
	assert.Equal(t, model.StatusSkipped, results[1].Status)
	assert.Equal(t, model.StatusSkipped, results[2].Status)
	assert.True(t, bail.Triggered())

	// hooks ran only for the failed spec, never for the skipped ones
	assert.Equal(t, []string{"before"}, log.list())
}

func TestSequentialWithoutBailContinues(t *testing.T) {
	units := []Unit{failingUnit(0), passingUnit(1, nil)}

	bail := NewBailController()
	results := Sequential{}.Execute(context.Background(), units, bail)

	assert.Equal(t, model.StatusFailed, results[0].Status)
	assert.Equal(t, model.StatusPassed, results[1].Status)
	assert.False(t, bail.Triggered())
}

func TestSequentialCancellationSkipsUnstarted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	units := []Unit{
		{
			Index: 0,
			Action: func(ctx context.Context) error {
				cancel() // cancellation observed only at the next spec boundary
				return nil
			},
		},
		passingUnit(1, nil),
		passingUnit(2, nil),
	}

	results := Sequential{}.Execute(ctx, units, NewBailController())

	require.Len(t, results, 3)
	assert.Equal(t, model.StatusPassed, results[0].Status)
	assert.Equal(t, model.StatusSkipped, results[1].Status)
	assert.Equal(t, model.StatusSkipped, results[2].Status)
}

func TestParallelResultsInDeclarationOrder(t *testing.T) {
	const n = 16
	units := make([]Unit, n)
	for i := 0; i < n; i++ {
		i := i
		units[i] = Unit{
			Index:       i,
			Description: fmt.Sprintf("spec-%d", i),
			Action: func(ctx context.Context) error {
				// reverse the natural completion order
				time.Sleep(time.Duration(n-i) * time.Millisecond)
				return nil
			},
		}
	}

	results := BoundedParallel{Workers: 4}.Execute(context.Background(), units, NewBailController())

	require.Len(t, results, n)
	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, fmt.Sprintf("spec-%d", i), res.Description)
		assert.Equal(t, model.StatusPassed, res.Status)
	}
}

func TestParallelBailSkipsUnclaimed(t *testing.T) {
	// single worker makes claim order deterministic
	units := []Unit{failingUnit(0), passingUnit(1, nil), passingUnit(2, nil)}

	bail := NewBailController()
	results := BoundedParallel{Workers: 1, BailOnFailure: true}.Execute(context.Background(), units, bail)

	require.Len(t, results, 3)
	assert.Equal(t, model.StatusFailed, results[0].Status)
	assert.Equal(t, model.StatusSkipped, results[1].Status)
	assert.Equal(t, model.StatusSkipped, results[2].Status)
}

func TestRunUnitHookPairingOnSetupFailure(t *testing.T) {
	log := &eventLog{}
	u := Unit{
		Action: func(ctx context.Context) error {
			log.add("action")
			return nil
		},
		Before: []spec.Entry{
			{Hook: log.hook("A.before"), Depth: 1},
			{Hook: func(ctx context.Context) error {
				log.add("B.before")
				return errors.New("setup failed")
			}, Depth: 2},
			{Hook: log.hook("C.before"), Depth: 3},
		},
		After: []spec.Entry{
			{Hook: log.hook("C.after"), Depth: 3},
			{Hook: log.hook("B.after"), Depth: 2},
			{Hook: log.hook("A.after"), Depth: 1},
		},
	}

	res := runUnit(context.Background(), u)

	require.Equal(t, model.StatusFailed, res.Status)
	require.NotNil(t, res.Failure)
	assert.Equal(t, "setup failed", res.Failure.Message)

	// the action never ran; teardown ran for reached levels only
	assert.Equal(t, []string{"A.before", "B.before", "B.after", "A.after"}, log.list())
}

func TestRunUnitTeardownFailureDoesNotMaskPrimary(t *testing.T) {
	u := Unit{
		Action: func(ctx context.Context) error { return errors.New("primary") },
		After: []spec.Entry{
			{Hook: func(ctx context.Context) error { return errors.New("secondary") }, Depth: 1},
		},
	}

	res := runUnit(context.Background(), u)

	require.NotNil(t, res.Failure)
	assert.Equal(t, "primary", res.Failure.Message)
}

func TestRunUnitTeardownFailureReportedWhenNoPrimary(t *testing.T) {
	u := Unit{
		Action: func(ctx context.Context) error { return nil },
		After: []spec.Entry{
			{Hook: func(ctx context.Context) error { return errors.New("teardown failed") }, Depth: 1},
		},
	}

	res := runUnit(context.Background(), u)

	require.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, "teardown failed", res.Failure.Message)
}

func TestRunUnitRecoversPanics(t *testing.T) {
	u := Unit{
		Action: func(ctx context.Context) error { panic("kaboom") },
	}

	res := runUnit(context.Background(), u)

	require.Equal(t, model.StatusFailed, res.Status)
	require.NotNil(t, res.Failure)
	assert.Contains(t, res.Failure.Message, "kaboom")
	assert.NotEmpty(t, res.Failure.Stack)
}

func TestBailControllerIdempotentUnderConcurrency(t *testing.T) {
	bail := NewBailController()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bail.Signal()
		}()
	}
	wg.Wait()
	assert.True(t, bail.Triggered())
}
