package harness

// TraceEvent is one invocation as it appears in a trace.
// Accounts and callers are reported by scenario name; byte fields are hex.
type TraceEvent struct {
	Seq         int64  `json:"seq"`
	Account     string `json:"account"`
	Caller      string `json:"caller"`
	Instruction string `json:"instruction"`
	Before      string `json:"before"`
	After       string `json:"after"`
	Outcome     string `json:"outcome"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace lists invocations in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Values holds the final decoded value per account name.
	Values map[string]uint32 `json:"values"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Values: make(map[string]uint32),
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an invocation to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
