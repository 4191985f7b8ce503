package storage

import (
	"testing"

	"github.com/rs/zerolog"
)

// newTestEngine opens a fresh in-memory engine for a single test.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(":memory:", false, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}
