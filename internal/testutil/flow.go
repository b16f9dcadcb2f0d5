package testutil

// DefaultFlowToken is used when a scenario does not set flow_token.
const DefaultFlowToken = "calculator-test-flow"

// FixedFlowGenerator returns the same flow token on every call, so every
// invocation in a scenario shares one token and golden traces stay stable.
//
// It satisfies engine.FlowTokenGenerator and is safe for concurrent use.
type FixedFlowGenerator struct {
	token string
}

// NewFixedFlowGenerator returns a generator for token, or for
// DefaultFlowToken if token is empty.
func NewFixedFlowGenerator(token string) *FixedFlowGenerator {
	if token == "" {
		token = DefaultFlowToken
	}
	return &FixedFlowGenerator{token: token}
}

// Generate returns the fixed flow token.
func (g *FixedFlowGenerator) Generate() string {
	return g.token
}
