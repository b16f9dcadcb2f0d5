package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/store"
)

// Named identities shared across package tests.
var (
	Alice   = ir.NamedIdentity("alice")
	Bob     = ir.NamedIdentity("bob")
	Mallory = ir.NamedIdentity("mallory")
)

// NewStore opens an in-memory store that is closed when t finishes.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
