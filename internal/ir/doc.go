// Package ir provides the canonical domain types for the calculator program.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// domain model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - StateRecord has exactly one field and a fixed 4-byte storage form
//   - Operation kinds form a closed set; unknown tags are never coerced
//   - Identity is an opaque 32-byte token, compared for equality only
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
