package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitomatic/orchestra/internal/engine"
	"github.com/aitomatic/orchestra/internal/sig"
	"github.com/aitomatic/orchestra/internal/testutil"
	"github.com/aitomatic/orchestra/internal/value"
)

func sigOf(params ...sig.Parameter) *sig.Signature {
	return &sig.Signature{Params: params}
}

func req(name string, t value.Type) sig.Parameter {
	return sig.Parameter{Name: name, Type: t, Required: true}
}

// fixed returns a callable that ignores its arguments and returns a fixed
// result.
func fixed(module, name string, s *sig.Signature, result value.Value) *sig.Callable {
	return sig.New(module, name, s, func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
		return result, nil
	})
}

func TestPipeline_Validate(t *testing.T) {
	ok := fixed("m", "f", sigOf(req("x", value.TypeAny)), value.Null{})

	assert.Error(t, New("empty").Validate())
	assert.Error(t, New("p", Stage{}).Validate())
	assert.Error(t, New("p", Stage{Targets: []*sig.Callable{nil}}).Validate())
	assert.Error(t, New("p", Seq(&sig.Callable{Name: "hollow"})).Validate())
	assert.NoError(t, New("p", Seq(ok), Par(ok, ok)).Validate())
}

func TestStage_Parallel(t *testing.T) {
	c := fixed("m", "f", sigOf(req("x", value.TypeAny)), value.Null{})
	assert.False(t, Seq(c).Parallel())
	assert.False(t, Par(c).Parallel())
	assert.True(t, Par(c, c).Parallel())
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("run-1", "run-2")
	assert.Equal(t, "run-1", g.Generate())
	assert.Equal(t, "run-2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

// Each stage's output becomes the next stage's upstream value.
func TestRun_SequentialThreading(t *testing.T) {
	fetch := fixed("orders", "fetch", sigOf(req("order_id", value.TypeAny)),
		value.Map{"price": value.Float(999.99), "customer": value.String("Alice")})

	calcTax := sig.New("orders", "calculate_tax",
		sigOf(req("price", value.TypeFloat), req("tax_rate", value.TypeFloat)),
		func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
			assert.Equal(t, value.Float(999.99), args["price"])
			assert.Equal(t, value.Float(0.08), args["tax_rate"])
			return value.Float(79.99), nil
		})

	store := engine.NewStore().Set(engine.ScopePublic, "tax_rate", value.Float(0.08))
	runner := NewRunner(engine.New(), WithTokenGenerator(NewFixedGenerator("run-1")))

	res, err := runner.Run(context.Background(), New("order_flow", Seq(fetch), Seq(calcTax)),
		value.Int(7), store)
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunToken)
	assert.Equal(t, value.Float(79.99), res.Output)

	require.Len(t, res.Trace, 2)
	assert.Equal(t, int64(1), res.Trace[0].Seq)
	assert.Equal(t, 0, res.Trace[0].Stage)
	assert.Equal(t, -1, res.Trace[0].Branch)
	assert.Equal(t, "orders.fetch", res.Trace[0].Function)
	assert.Equal(t, engine.StrategySingleScalar, res.Trace[0].Strategy)
	assert.Equal(t, int64(2), res.Trace[1].Seq)
	assert.Equal(t, engine.StrategyNameMatch, res.Trace[1].Strategy)
}

// A parallel group's output is the list of branch results in declaration
// order, regardless of completion order.
func TestRun_ParallelOrder(t *testing.T) {
	delays := []time.Duration{25 * time.Millisecond, 1 * time.Millisecond, 10 * time.Millisecond}
	targets := make([]*sig.Callable, len(delays))
	for i, d := range delays {
		d := d
		idx := int64(i)
		targets[i] = sig.New("m", "branch"+string(rune('a'+i)), sigOf(req("x", value.TypeAny)),
			func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
				time.Sleep(d)
				return value.Int(idx), nil
			})
	}

	runner := NewRunner(engine.New(), WithTokenGenerator(NewFixedGenerator("run-1")))
	res, err := runner.Run(context.Background(), New("fanout", Par(targets...)), value.Int(0), nil)
	require.NoError(t, err)

	assert.Equal(t, value.List{value.Int(0), value.Int(1), value.Int(2)}, res.Output)

	require.Len(t, res.Trace, 3)
	for i, ev := range res.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
		assert.Equal(t, 0, ev.Stage)
		assert.Equal(t, i, ev.Branch)
	}
}

// One branch failing does not cancel siblings; the error names the stage,
// branch, and function once all have settled.
func TestRun_ParallelBranchFailure(t *testing.T) {
	var completed int32
	ok := sig.New("m", "ok", sigOf(req("x", value.TypeAny)),
		func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return value.Null{}, nil
		})
	bad := sig.New("m", "bad", sigOf(req("x", value.TypeAny)),
		func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
			return nil, errors.New("branch failed")
		})

	runner := NewRunner(engine.New(), WithTokenGenerator(NewFixedGenerator("run-1")))
	_, err := runner.Run(context.Background(), New("fanout", Par(ok, bad, ok)), value.Int(1), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fanout")
	assert.Contains(t, err.Error(), "branch 1")
	assert.Contains(t, err.Error(), "m.bad")
	assert.Equal(t, int32(2), atomic.LoadInt32(&completed))
}

// Orchestration errors keep their type through the pipeline wrapping.
func TestRun_StageErrorWrapped(t *testing.T) {
	needy := fixed("m", "needy", sigOf(req("missing", value.TypeAny)), value.Null{})

	runner := NewRunner(engine.New(), WithTokenGenerator(NewFixedGenerator("run-1")))
	_, err := runner.Run(context.Background(), New("p", Seq(needy)), value.Map{"other": value.Int(1)}, nil)
	require.Error(t, err)
	assert.True(t, engine.IsUnresolvedParameterError(err))
	assert.Contains(t, err.Error(), "p stage 0")
}

// A non-introspectable stage degrades to positional passing and is marked
// in the trace.
func TestRun_DegradedStage(t *testing.T) {
	opaque := sig.NewOpaque("m", "dynamic", func(ctx context.Context, arg value.Value) (value.Value, error) {
		return arg, nil
	})

	runner := NewRunner(engine.New(), WithTokenGenerator(NewFixedGenerator("run-1")))
	res, err := runner.Run(context.Background(), New("p", Seq(opaque)), value.Int(7), nil)
	require.NoError(t, err)

	assert.Equal(t, value.Int(7), res.Output)
	require.Len(t, res.Trace, 1)
	assert.True(t, res.Trace[0].Degraded)
	assert.Nil(t, res.Trace[0].Args)
}

func TestRun_MaxStages(t *testing.T) {
	c := fixed("m", "f", sigOf(req("x", value.TypeAny)), value.Int(1))
	runner := NewRunner(engine.New(),
		WithTokenGenerator(NewFixedGenerator("run-1", "run-2")),
		WithMaxStages(2))

	_, err := runner.Run(context.Background(), New("p", Seq(c), Seq(c), Seq(c)), value.Int(0), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")

	_, err = runner.Run(context.Background(), New("p", Seq(c), Seq(c)), value.Int(0), nil)
	assert.NoError(t, err)
}

// Reruns of the same pipeline produce byte-identical trace snapshots,
// parallel group included.
func TestRun_Deterministic(t *testing.T) {
	fetch := fixed("orders", "fetch", sigOf(req("order_id", value.TypeAny)), value.Int(5))
	branch := func(name string, result value.Value) *sig.Callable {
		return fixed("m", name, sigOf(req("x", value.TypeAny)), result)
	}

	p := New("det",
		Seq(fetch),
		Par(branch("a", value.Int(1)), branch("b", value.Int(2)), branch("c", value.Int(3))),
	)

	run := func() []byte {
		runner := NewRunner(engine.New(),
			WithTokenGenerator(testutil.NewRepeatingGenerator("run-fixed")))
		res, err := runner.Run(context.Background(), p, value.Int(7), nil)
		require.NoError(t, err)
		data, err := value.MarshalCanonical(res.Snapshot("det"))
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, string(run()), string(run()))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := fixed("m", "f", sigOf(req("x", value.TypeAny)), value.Int(1))
	runner := NewRunner(engine.New(), WithTokenGenerator(NewFixedGenerator("run-1")))
	_, err := runner.Run(ctx, New("p", Seq(c)), value.Int(0), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
