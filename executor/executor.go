// Package executor runs batches of independent tool calls concurrently on a
// bounded worker pool and hands the results back in submission order.
package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/edgetalker/smart-agents/internal/tracing"
	"github.com/edgetalker/smart-agents/logging"
	"github.com/edgetalker/smart-agents/metrics"
	"github.com/edgetalker/smart-agents/tool"
)

// DefaultWorkers is the pool width used when Options.Workers is not positive.
const DefaultWorkers = 4

// Status is the outcome of one task.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Request is one unit of work: a tool name and its raw parameter text.
type Request struct {
	ToolName string
	Input    string
}

// Result is the outcome of one Request. TaskIndex is the request's position
// in the batch.
type Result struct {
	TaskIndex int
	ToolName  string
	Input     string
	Output    string
	Status    Status
	Duration  time.Duration
}

// OK reports whether the task succeeded.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// ToolInvoker is the part of tool.Registry the executor depends on.
type ToolInvoker interface {
	Invoke(ctx context.Context, name, input string) tool.Result
}

// Options configures an Executor.
type Options struct {
	// Workers bounds the number of tasks in flight (defaults to DefaultWorkers).
	Workers int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Executor fans a batch of tool calls out over a worker pool.
//
// Each batch gets its own pool sized min(Workers, len(batch)); the pool is
// released before RunBatch returns. Executors hold no per-batch state and may
// be shared.
type Executor struct {
	tools   ToolInvoker
	workers int
	logger  *logging.AgentLogger
}

// New creates an Executor dispatching through tools.
func New(tools ToolInvoker, optFns ...func(o *Options)) *Executor {
	opts := Options{Workers: DefaultWorkers}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	return &Executor{
		tools:   tools,
		workers: opts.Workers,
		logger:  logging.NewAgentLogger(opts.Logger).WithComponent("executor"),
	}
}

// Workers returns the configured pool width.
func (e *Executor) Workers() int { return e.workers }

// RunBatch executes every request and returns exactly len(reqs) results, the
// i-th describing reqs[i]. A failing or panicking task affects only its own
// slot. RunBatch blocks until every task has finished.
func (e *Executor) RunBatch(ctx context.Context, reqs []Request) []Result {
	n := len(reqs)
	if n == 0 {
		return []Result{}
	}

	ctx, span := tracing.StartSpan(ctx, "executor.batch", attribute.Int("batch.size", n))
	defer span.End()

	metrics.RecordBatch(n)

	start := time.Now()
	results := make([]Result, n)

	size := min(e.workers, n)

	pool, err := ants.NewPool(size)
	if err != nil {
		e.logger.Error("executor.pool.error", "error", err.Error())

		for i, req := range reqs {
			results[i] = failed(i, req, fmt.Sprintf("worker pool unavailable: %v", err), 0)
		}

		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)

		idx, r := i, req
		if err := pool.Submit(func() {
			defer wg.Done()
			results[idx] = e.runTask(ctx, idx, r)
		}); err != nil {
			wg.Done()
			e.logger.Warn("executor.task.submit_failed", "task", idx, "tool", r.ToolName, "error", err.Error())
			results[idx] = failed(idx, r, fmt.Sprintf("task submission failed: %v", err), 0)
		}
	}

	wg.Wait()

	succeeded := 0
	for _, res := range results {
		if res.OK() {
			succeeded++
		}
	}

	span.SetAttributes(attribute.Int("batch.succeeded", succeeded))
	e.logger.Info(
		"executor.batch.complete",
		"success", fmt.Sprintf("%d/%d", succeeded, n),
		"workers", size,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return results
}

// RunSame runs one tool against every input, e.g. several search queries.
func (e *Executor) RunSame(ctx context.Context, toolName string, inputs []string) []Result {
	reqs := make([]Request, len(inputs))
	for i, in := range inputs {
		reqs[i] = Request{ToolName: toolName, Input: in}
	}

	return e.RunBatch(ctx, reqs)
}

func (e *Executor) runTask(ctx context.Context, idx int, req Request) (res Result) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("executor.task.panic", "task", idx, "tool", req.ToolName, "recover", rec, "stack", string(debug.Stack()))
			res = failed(idx, req, fmt.Sprintf("tool execution failed: panic: %v", rec), time.Since(start))
		}
	}()

	if req.ToolName == "" {
		return failed(idx, req, "tool name is empty", 0)
	}

	out := e.tools.Invoke(ctx, req.ToolName, req.Input)

	res = Result{
		TaskIndex: idx,
		ToolName:  req.ToolName,
		Input:     req.Input,
		Output:    out.Text(),
		Status:    StatusSuccess,
		Duration:  time.Since(start),
	}

	if !out.OK() {
		res.Status = StatusError
	}

	return res
}

func failed(idx int, req Request, msg string, dur time.Duration) Result {
	return Result{
		TaskIndex: idx,
		ToolName:  req.ToolName,
		Input:     req.Input,
		Output:    msg,
		Status:    StatusError,
		Duration:  dur,
	}
}
