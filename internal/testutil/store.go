package testutil

import (
	"testing"

	"github.com/kolmo-labs/buildledger/internal/state"
)

// NewTestStore returns a migrated in-memory SQLite store that closes with
// the test.
func NewTestStore(t testing.TB) *state.SQLiteStore {
	t.Helper()

	store := state.NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate test store: %v", err)
	}
	return store
}
