// Package store provides SQLite-backed durable storage for calculator accounts.
//
// The store holds two tables:
//   - Accounts: one fixed-width state slot per key, paired with its owner
//   - Invocations: an append-only log of every invocation and its outcome
//
// # Critical Patterns
//
// Copy-on-success commits:
//   - CommitInvocation updates the slot and appends the log row in one transaction
//   - The update is conditional on the slot still holding the logged "before" bytes
//   - Failed invocations are logged with WriteInvocation and never touch the slot
//
// Logical time:
//   - All ordering uses seq INTEGER (logical clock), never timestamps
//   - Queries order by seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Log rows must reference an existing account
//
// Identities are stored in their base58 text form so the database stays
// readable from the sqlite3 shell.
package store
