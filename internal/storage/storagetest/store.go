package storagetest

import (
	"testing"

	"github.com/Tiliavir/paywindow-tracker/internal/storage"
)

// New creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func New(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	s, err := storage.Open(storage.MemoryPath)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
