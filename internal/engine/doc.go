// Package engine hosts the calculator program against durable storage.
//
// The engine is the single writer in front of the store. For each request
// it reads the account slot, hands the slot's bytes to the injected
// program.Handler, and commits the outcome.
//
// ARCHITECTURE:
//
// Single-Writer:
// Execute holds the engine mutex for the whole read → handle → commit
// sequence, and the store runs on one SQLite connection. Invocations against
// the same slot are therefore serialized; the handler never sees concurrent
// access to the bytes it is given.
//
// Copy-on-Success:
// The handler returns a fresh buffer. The engine commits it together with
// the log record in one transaction, conditional on the slot still holding
// the bytes that were read. A rejected invocation is logged with
// before == after and the slot is not written.
//
// Logical Clock:
// Every account creation and invocation is stamped with a monotonic seq
// from the engine clock. Wall-clock time is never recorded. A new engine
// resumes its clock from the highest seq already in the store.
//
// Replay:
// Replay re-executes an account's log from its initial bytes through the
// same handler and reports any divergence from what was recorded.
package engine
