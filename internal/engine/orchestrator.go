package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aitomatic/orchestra/internal/sig"
	"github.com/aitomatic/orchestra/internal/value"
)

// Orchestrator coordinates signature analysis, value extraction, parameter
// matching, and context injection for pipeline stage calls. It is the sole
// entry point external callers use and owns error translation between the
// stages.
//
// Thread-safety model:
//   - Call() and CallParallel(): safe from any goroutine
//   - The signature cache supports concurrent population
//   - The context store is only ever read
type Orchestrator struct {
	sigs       *sig.Cache
	strategies StrategyCache // nil disables adaptive caching
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStrategyCache enables the adaptive strategy cache. The cache is a
// pure optimization - orchestration behaves identically without it.
func WithStrategyCache(c StrategyCache) Option {
	return func(o *Orchestrator) {
		o.strategies = c
	}
}

// New creates an Orchestrator with a fresh signature cache.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{sigs: sig.NewCache()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CallInfo describes how one orchestrated call was resolved, for traces
// and diagnostics.
type CallInfo struct {
	// Function is the target callable identity.
	Function string

	// Shape is the upstream value's shape tag.
	Shape string

	// Strategy is the dominant matching strategy, empty when nothing was
	// bound from extraction.
	Strategy Strategy

	// CacheHit is true when a recorded strategy short-circuited matching.
	CacheHit bool

	// Degraded is true when signature analysis failed and the call fell
	// back to simple positional passing.
	Degraded bool

	// Bound is the final argument set. Nil on the degraded path.
	Bound *BoundArgs

	recordable bool // binding was uniform enough to cache
}

// Call orchestrates a single invocation: analyze (memoized) -> extract ->
// match -> inject -> invoke, returning the target's result.
//
// If analysis fails, matching and injection are skipped and the upstream
// value is passed positionally as the sole argument - the baseline
// behavior orchestration must never regress below. Errors from the target
// function itself propagate unchanged.
func (o *Orchestrator) Call(ctx context.Context, c *sig.Callable, upstream value.Value, store ContextStore) (value.Value, error) {
	result, _, err := o.CallDetailed(ctx, c, upstream, store)
	return result, err
}

// CallDetailed is Call plus a CallInfo describing how the arguments were
// resolved. Used by the pipeline driver to build traces.
func (o *Orchestrator) CallDetailed(ctx context.Context, c *sig.Callable, upstream value.Value, store ContextStore) (value.Value, *CallInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("orchestration cancelled: %w", err)
	}

	info := &CallInfo{Function: c.Identity()}

	signature, err := o.sigs.Analyze(c)
	if err != nil {
		if !sig.IsAnalysisError(err) {
			return nil, nil, err
		}
		// Recovered locally: degrade to simple positional passing
		slog.Debug("signature analysis failed, degrading to positional call",
			"function", c.Identity(),
			"reason", err,
		)
		info.Degraded = true
		result, callErr := c.CallPositional(ctx, upstream)
		return result, info, callErr
	}

	extracted := Extract(upstream)
	info.Shape = extracted.Tag

	bound, err := o.resolve(signature, extracted, store, c.Identity(), info)
	if err != nil {
		return nil, nil, err
	}
	info.Bound = bound

	if c.Fn == nil {
		return nil, nil, fmt.Errorf("callable %s has no invoker", c.Identity())
	}
	result, err := c.Fn(ctx, bound.Args)
	if err != nil {
		// The target's own error propagates unchanged
		return nil, nil, err
	}

	o.recordStrategy(c.Identity(), extracted.Tag, info)

	slog.Debug("orchestrated call complete",
		"function", c.Identity(),
		"shape", extracted.Tag,
		"strategy", info.Strategy,
		"cache_hit", info.CacheHit,
	)
	return result, info, nil
}

// resolve produces the full argument set, consulting the strategy cache
// first. A recorded strategy short-circuits matching to the name pass plus
// the recorded pass; if injection then fails, the full pipeline is retried
// before surfacing an error, so a stale hint can never fail a call the
// full pipeline would satisfy.
func (o *Orchestrator) resolve(signature *sig.Signature, extracted *Extracted, store ContextStore, function string, info *CallInfo) (*BoundArgs, error) {
	if o.strategies != nil {
		if hint, ok := o.strategies.Lookup(function, extracted.Tag); ok && ValidStrategy(hint) {
			binding, err := matchWithHint(signature, extracted, function, hint)
			if err == nil {
				if bound, injErr := Inject(signature, binding, store, function); injErr == nil {
					info.CacheHit = true
					info.Strategy = hint
					return bound, nil
				}
			}
			// Hint did not pan out - fall through to the full pipeline
		}
	}

	binding, err := Match(signature, extracted, function)
	if err != nil {
		return nil, err
	}
	if s, ok := binding.Dominant(); ok {
		info.Strategy = s
		info.recordable = uniformBinding(binding)
	}
	return Inject(signature, binding, store, function)
}

// uniformBinding reports whether all extraction-bound parameters used a
// single strategy, ignoring name matches (the name pass always runs, so
// replaying any hint reproduces them).
func uniformBinding(b *Binding) bool {
	seen := Strategy("")
	for _, s := range b.Strategies {
		if s == StrategyNameMatch {
			continue
		}
		if seen == "" {
			seen = s
		} else if seen != s {
			return false
		}
	}
	return true
}

// matchWithHint runs the name pass (always - it doubles as the declared-
// type check) plus only the hinted strategy's pass.
func matchWithHint(s *sig.Signature, extracted *Extracted, function string, hint Strategy) (*Binding, error) {
	b := newBinding()
	if err := matchNames(b, s, extracted, function); err != nil {
		return nil, err
	}
	switch hint {
	case StrategyTypeMatch:
		matchTypes(b, s, extracted)
	case StrategyTupleUnpack:
		matchPositional(b, s, extracted)
	case StrategySingleScalar:
		matchSingleScalar(b, s, extracted)
	}
	return b, nil
}

// recordStrategy updates the adaptive cache after a successful call.
//
// Only uniform bindings are recorded: if a call mixed strategies (beyond
// name matches, which always run), replaying a single recorded strategy
// could not reproduce it, so nothing is recorded for that shape.
func (o *Orchestrator) recordStrategy(function, shapeTag string, info *CallInfo) {
	if o.strategies == nil || info.CacheHit || !info.recordable || info.Strategy == "" {
		return
	}
	o.strategies.Record(function, shapeTag, info.Strategy)
}

// CallParallel orchestrates every target independently against the same
// upstream value and context store, concurrently, and returns results in
// input order.
//
// One target's failure does not cancel siblings still in flight; once all
// have settled, the first error in input order is returned. Callers
// needing partial-success semantics must wrap individual calls themselves.
func (o *Orchestrator) CallParallel(ctx context.Context, targets []*sig.Callable, upstream value.Value, store ContextStore) ([]value.Value, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	results := make([]value.Value, len(targets))
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target *sig.Callable) {
			defer wg.Done()
			results[i], errs[i] = o.Call(ctx, target, upstream, store)
		}(i, target)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("parallel target %d (%s): %w", i, targets[i].Identity(), err)
		}
	}
	return results, nil
}
