// Package program composes the calculator pipeline.
//
// One invocation runs, in order:
//
//	guard.Authorize → codec.DecodeState → codec.DecodeOperation → calc.Apply → codec.EncodeState
//
// Handle never mutates its inputs. On success it returns a fresh state
// buffer for the host to commit; on failure it returns no bytes and an
// *Error naming the failed stage, so the host leaves the slot untouched.
//
// There is no implicit registration: hosts receive the pipeline as a
// Handler value (usually Handle itself, optionally wrapped by Traced).
package program
