// Package testutil holds small helpers shared by tests across packages.
package testutil

// RepeatingGenerator returns the same run token every time.
//
// Unlike pipeline.FixedGenerator, which returns a finite sequence and
// panics when exhausted, this generator never runs out. Use it when a
// test reruns the same pipeline and the traces must be byte-identical,
// token included.
//
// Thread-safety: stateless after construction, safe for concurrent use.
type RepeatingGenerator struct {
	token string
}

// NewRepeatingGenerator creates a generator that always returns token.
// An empty token defaults to "test-run-token".
func NewRepeatingGenerator(token string) *RepeatingGenerator {
	if token == "" {
		token = "test-run-token"
	}
	return &RepeatingGenerator{token: token}
}

// Generate returns the fixed run token.
//
// Implements pipeline.TokenGenerator.
func (g *RepeatingGenerator) Generate() string {
	return g.token
}
