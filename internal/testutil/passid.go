package testutil

// ConstantPassID returns the same pass ID every time.
//
// Golden files record the pass ID of every rewrite, so scenario runs use a
// constant one to stay byte-identical across runs. Unlike
// rewrite.FixedGenerator, which hands out a list of IDs once each, this
// generator never runs out.
//
// Thread-safety: ConstantPassID is stateless and safe for concurrent use.
type ConstantPassID struct {
	id string
}

// NewConstantPassID creates a constant pass ID generator.
//
// If id is empty, Generate() returns "test-pass-default".
func NewConstantPassID(id string) *ConstantPassID {
	if id == "" {
		id = "test-pass-default"
	}
	return &ConstantPassID{id: id}
}

// Generate returns the constant pass ID.
//
// Implements rewrite.PassIDGenerator.
func (g *ConstantPassID) Generate() string {
	return g.id
}
