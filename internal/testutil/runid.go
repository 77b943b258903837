package testutil

// FixedRunIDGenerator returns the same run ID every time.
//
// This enables deterministic test execution: the same scenario with the
// same generator produces byte-identical checkpoint rows and logs.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent
// use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a fixed run ID generator. An empty id
// falls back to "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
