package pipeline

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/aitomatic/orchestra/internal/engine"
	"github.com/aitomatic/orchestra/internal/sig"
	"github.com/aitomatic/orchestra/internal/value"
)

// assertGolden compares the run's canonical trace snapshot against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/pipeline -update
func assertGolden(t *testing.T, name string, res *Result) {
	t.Helper()

	data, err := value.MarshalCanonical(res.Snapshot(name))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

func TestRun_GoldenOrderFlow(t *testing.T) {
	fetch := fixed("orders", "fetch", sigOf(req("order_id", value.TypeAny)),
		value.Map{"price": value.Float(999.99), "customer": value.String("Alice")})
	calcTax := fixed("orders", "calculate_tax",
		sigOf(req("price", value.TypeFloat), req("tax_rate", value.TypeFloat)),
		value.Float(79.99))

	store := engine.NewStore().Set(engine.ScopePublic, "tax_rate", value.Float(0.08))
	runner := NewRunner(engine.New(),
		WithTokenGenerator(NewFixedGenerator("run-00000000-0000-0000-0000-000000000001")))

	res, err := runner.Run(context.Background(),
		New("order_flow", Seq(fetch), Seq(calcTax)), value.Int(7), store)
	require.NoError(t, err)

	assertGolden(t, "order_flow", res)
}

func TestRun_GoldenFanout(t *testing.T) {
	branch := func(name string, result value.Value) *sig.Callable {
		return fixed("math", name, sigOf(req("n", value.TypeAny)), result)
	}

	runner := NewRunner(engine.New(),
		WithTokenGenerator(NewFixedGenerator("run-fanout-1")))

	res, err := runner.Run(context.Background(),
		New("fanout", Par(
			branch("double", value.Int(10)),
			branch("square", value.Int(25)),
			branch("negate", value.Int(-5)),
		)),
		value.Int(5), nil)
	require.NoError(t, err)

	assertGolden(t, "fanout", res)
}
