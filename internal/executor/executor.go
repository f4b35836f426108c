package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/codectx/fastcontext/pkg/types"
)

// ToolFunc executes one tool call. Implementations must be pure with
// respect to the workspace: read-only, no retained state.
type ToolFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Executor runs batches of heterogeneous tool calls under a bounded
// concurrency ceiling. Every failure mode (unknown tool, timeout, bad
// arguments, panic) is contained to its own slot in the result slice; no
// error escapes Execute and no task can cancel its siblings.
type Executor struct {
	mu             sync.RWMutex
	registry       map[types.ToolName]ToolFunc
	sem            *semaphore.Weighted
	maxParallel    int
	defaultTimeout time.Duration
}

// New creates an executor. A non-positive maxParallel is a configuration
// error and is the one condition that raises instead of degrading.
func New(maxParallel int, defaultTimeout time.Duration) (*Executor, error) {
	if maxParallel < 1 {
		return nil, fmt.Errorf("max parallel must be >= 1, got %d", maxParallel)
	}
	if defaultTimeout <= 0 {
		defaultTimeout = 10 * time.Second
	}
	return &Executor{
		registry:       make(map[types.ToolName]ToolFunc),
		sem:            semaphore.NewWeighted(int64(maxParallel)),
		maxParallel:    maxParallel,
		defaultTimeout: defaultTimeout,
	}, nil
}

// MaxParallel returns the concurrency ceiling
func (e *Executor) MaxParallel() int { return e.maxParallel }

// Register binds a tool name to its implementation, replacing any previous
// binding.
func (e *Executor) Register(name types.ToolName, fn ToolFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry[name] = fn
}

// Registered reports whether a tool name has an implementation
func (e *Executor) Registered(name types.ToolName) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.registry[name]
	return ok
}

// Execute runs the calls with at most maxParallel in flight and returns one
// result per call, in input order regardless of completion order. An empty
// batch returns an empty slice.
func (e *Executor) Execute(ctx context.Context, calls []types.ToolCall) []types.ToolResult {
	results := make([]types.ToolResult, len(calls))
	if len(calls) == 0 {
		return results
	}

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := e.sem.Acquire(ctx, 1); err != nil {
				results[i] = failure(call.Tool, fmt.Sprintf("cancelled before dispatch: %v", err))
				return
			}
			defer e.sem.Release(1)

			results[i] = e.runOne(ctx, call)
		}()
	}
	wg.Wait()

	return results
}

// ExecuteSync offers the Execute contract to callers without a context by
// driving the batch to completion before returning. It must not be invoked
// from inside a running tool function (non-reentrant): the nested batch
// would compete for the same concurrency slots and can deadlock.
func (e *Executor) ExecuteSync(calls []types.ToolCall) []types.ToolResult {
	return e.Execute(context.Background(), calls)
}

// runOne dispatches a single call with its own timeout and panic isolation
func (e *Executor) runOne(ctx context.Context, call types.ToolCall) (result types.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(call.Tool, fmt.Sprintf("tool panicked: %v", r))
		}
	}()

	e.mu.RLock()
	fn, ok := e.registry[call.Tool]
	e.mu.RUnlock()
	if !ok {
		return failure(call.Tool, fmt.Sprintf("%v: %s", types.ErrUnknownTool, call.Tool))
	}

	timeout := call.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		output interface{}
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		output, err := fn(callCtx, call.Args)
		done <- outcome{output: output, err: err}
	}()

	select {
	case <-callCtx.Done():
		return failure(call.Tool, fmt.Sprintf("task timed out after %s", timeout))
	case o := <-done:
		if o.err != nil {
			return failure(call.Tool, o.err.Error())
		}
		return types.ToolResult{Tool: call.Tool, Success: true, Output: o.output}
	}
}

func failure(tool types.ToolName, msg string) types.ToolResult {
	return types.ToolResult{Tool: tool, Success: false, Error: msg}
}
