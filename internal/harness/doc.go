// Package harness runs calculator conformance scenarios.
//
// A scenario declares account slots, a sequence of invocations against them
// with expected outcomes, and assertions on the final state. The harness runs
// it against the real engine and program on an isolated in-memory store and
// compares the resulting trace with a golden file.
//
// # Scenario Format
//
//	name: end_to_end
//	description: "Owner adds to a fresh counter"
//	flow_token: "flow-e2e"
//	accounts:
//	  - name: ledger
//	    owner: alice
//	    value: 10
//	steps:
//	  - account: ledger
//	    caller: alice
//	    op: add
//	    operand: 5
//	    expect: { value: 15 }
//	  - account: ledger
//	    caller: bob
//	    raw: "0105000000"
//	    expect: { error: authorization }
//	assertions:
//	  - type: final_value
//	    account: ledger
//	    value: 15
//
// Identities are named: "alice" stands for ir.NamedIdentity("alice"). A step
// gives either op/operand, which the harness encodes, or raw instruction
// bytes in hex for malformed input.
//
// # Assertion Types
//
//   - final_value: the slot decodes to value
//   - outcome_count: exactly count invocations ended with outcome
//   - replay_deterministic: replaying the account's log reproduces it
//
// # Deterministic Testing
//
// Every run uses a fresh ":memory:" store, a clock starting at zero and a
// fixed flow token, so traces are byte-identical across runs.
//
// Scenario documents are checked against an embedded CUE schema before they
// are decoded.
package harness
