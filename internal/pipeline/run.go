package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aitomatic/orchestra/internal/engine"
	"github.com/aitomatic/orchestra/internal/sig"
	"github.com/aitomatic/orchestra/internal/value"
)

// TraceEvent records one orchestrated call within a run.
type TraceEvent struct {
	// Seq is the logical clock stamp. Strictly increasing within a run.
	Seq int64

	// Stage is the zero-based stage index in the pipeline.
	Stage int

	// Branch is the zero-based branch index within a parallel group,
	// or -1 for sequential stages.
	Branch int

	// Function is the target callable identity.
	Function string

	// Shape is the upstream value's shape tag. Empty on the degraded path.
	Shape string

	// Strategy is the dominant matching strategy for the call.
	Strategy engine.Strategy

	// CacheHit is true when a recorded strategy short-circuited matching.
	CacheHit bool

	// Degraded is true when the call fell back to positional passing.
	Degraded bool

	// Args is the final argument set. Nil on the degraded path.
	Args value.Map

	// Result is the target's return value.
	Result value.Value
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunToken string
	Output   value.Value
	Trace    []TraceEvent
}

// Snapshot converts the result into a Value suitable for canonical JSON
// serialization, used for golden trace comparison and trace output.
func (r *Result) Snapshot(pipelineName string) value.Map {
	trace := make(value.List, len(r.Trace))
	for i, ev := range r.Trace {
		m := value.Map{
			"seq":      value.Int(ev.Seq),
			"stage":    value.Int(ev.Stage),
			"function": value.String(ev.Function),
			"result":   ev.Result,
		}
		if ev.Branch >= 0 {
			m["branch"] = value.Int(ev.Branch)
		}
		if ev.Shape != "" {
			m["shape"] = value.String(ev.Shape)
		}
		if ev.Strategy != "" {
			m["strategy"] = value.String(ev.Strategy)
		}
		if ev.CacheHit {
			m["cache_hit"] = value.Bool(true)
		}
		if ev.Degraded {
			m["degraded"] = value.Bool(true)
		}
		if ev.Args != nil {
			m["args"] = ev.Args
		}
		trace[i] = m
	}
	return value.Map{
		"pipeline":  value.String(pipelineName),
		"run_token": value.String(r.RunToken),
		"output":    r.Output,
		"trace":     trace,
	}
}

// Runner drives pipelines through an Orchestrator, producing a run token
// and a trace per execution.
type Runner struct {
	orch      *engine.Orchestrator
	tokens    TokenGenerator
	maxStages int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTokenGenerator overrides the run token source. Tests use
// FixedGenerator for deterministic traces.
func WithTokenGenerator(g TokenGenerator) RunnerOption {
	return func(r *Runner) {
		r.tokens = g
	}
}

// WithMaxStages caps how many stages a pipeline may have. Zero means
// unlimited.
func WithMaxStages(n int) RunnerOption {
	return func(r *Runner) {
		r.maxStages = n
	}
}

// NewRunner creates a Runner. Run tokens default to UUIDv7.
func NewRunner(orch *engine.Orchestrator, opts ...RunnerOption) *Runner {
	r := &Runner{orch: orch, tokens: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline: each stage's output becomes the next stage's
// upstream value. A parallel group runs its branches concurrently against
// the same upstream value and context store, and its output is the list
// of branch results in declaration order.
//
// The run fails on the first stage error; a failing parallel branch does
// not cancel its siblings, and the first error in branch order surfaces
// once all have settled.
func (r *Runner) Run(ctx context.Context, p *Pipeline, input value.Value, store engine.ContextStore) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if r.maxStages > 0 && len(p.Stages) > r.maxStages {
		return nil, fmt.Errorf("pipeline %s: %d stages exceeds limit %d", p.Name, len(p.Stages), r.maxStages)
	}

	result := &Result{RunToken: r.tokens.Generate()}
	clock := NewClock()

	slog.Debug("pipeline run starting",
		"pipeline", p.Name,
		"run_token", result.RunToken,
		"stages", len(p.Stages),
	)

	current := input
	for i, stage := range p.Stages {
		var err error
		if stage.Parallel() {
			current, err = r.runParallel(ctx, p, i, stage, current, store, clock, result)
		} else {
			current, err = r.runSingle(ctx, p, i, stage.Targets[0], current, store, clock, result)
		}
		if err != nil {
			return nil, err
		}
	}

	result.Output = current
	slog.Debug("pipeline run complete",
		"pipeline", p.Name,
		"run_token", result.RunToken,
		"events", len(result.Trace),
	)
	return result, nil
}

func (r *Runner) runSingle(ctx context.Context, p *Pipeline, stage int, target *sig.Callable, upstream value.Value, store engine.ContextStore, clock *Clock, result *Result) (value.Value, error) {
	out, info, err := r.orch.CallDetailed(ctx, target, upstream, store)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s stage %d (%s): %w", p.Name, stage, target.Identity(), err)
	}
	result.Trace = append(result.Trace, traceEvent(clock, stage, -1, info, out))
	return out, nil
}

// runParallel fans the upstream value out to every branch concurrently.
// Trace events are stamped after the group joins, in declaration order,
// so the trace is deterministic regardless of completion order.
func (r *Runner) runParallel(ctx context.Context, p *Pipeline, stage int, s Stage, upstream value.Value, store engine.ContextStore, clock *Clock, result *Result) (value.Value, error) {
	n := len(s.Targets)
	outs := make([]value.Value, n)
	infos := make([]*engine.CallInfo, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, target := range s.Targets {
		wg.Add(1)
		go func(i int, target *sig.Callable) {
			defer wg.Done()
			outs[i], infos[i], errs[i] = r.orch.CallDetailed(ctx, target, upstream, store)
		}(i, target)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("pipeline %s stage %d branch %d (%s): %w",
				p.Name, stage, i, s.Targets[i].Identity(), err)
		}
	}

	merged := make(value.List, n)
	for i := range s.Targets {
		result.Trace = append(result.Trace, traceEvent(clock, stage, i, infos[i], outs[i]))
		merged[i] = outs[i]
	}
	return merged, nil
}

func traceEvent(clock *Clock, stage, branch int, info *engine.CallInfo, out value.Value) TraceEvent {
	ev := TraceEvent{
		Seq:      clock.Next(),
		Stage:    stage,
		Branch:   branch,
		Function: info.Function,
		Shape:    info.Shape,
		Strategy: info.Strategy,
		CacheHit: info.CacheHit,
		Degraded: info.Degraded,
		Result:   out,
	}
	if info.Bound != nil {
		ev.Args = value.Map(info.Bound.Args)
	}
	return ev
}
