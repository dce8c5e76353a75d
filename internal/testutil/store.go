package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// OpenStore opens a fresh SQLite store in a temporary directory with
// deterministic ids ("courses-0001", "progress-0001", ...). The store is
// closed when the test ends. opts are applied after the defaults.
func OpenStore(tb testing.TB, opts ...store.Option) *store.Store {
	tb.Helper()
	opts = append([]store.Option{store.WithIDGenerator(record.NewSequenceGenerator())}, opts...)
	s, err := store.Open(filepath.Join(tb.TempDir(), "test.db"), opts...)
	require.NoError(tb, err)
	tb.Cleanup(func() { s.Close() })
	return s
}

// SeedUsers creates users directly on records, without dispatching events.
func SeedUsers(tb testing.TB, records store.Records, ids ...string) {
	tb.Helper()
	for _, id := range ids {
		_, err := records.CreateUser(context.Background(), record.User{ID: id})
		require.NoError(tb, err)
	}
}
