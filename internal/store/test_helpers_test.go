package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/coursesync/internal/record"
)

// createTestStore creates a new file-backed store with deterministic ids.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{WithIDGenerator(record.NewSequenceGenerator())}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
