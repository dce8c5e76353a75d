package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursesync/internal/record"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"users", "courses", "progress"}
	for _, table := range tables {
		var name string
		err := s.sqlDB.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := createTestStore(t)

	version, err := s.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)

	var name string
	err = s.sqlDB.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_progress_assignee'",
	).Scan(&name)
	require.NoError(t, err)
}

func TestOpen_ModerncDriver(t *testing.T) {
	s := createTestStore(t, WithDriver(DriverModernc))
	ctx := context.Background()

	_, err := s.CreateUser(ctx, record.User{ID: "u1"})
	require.NoError(t, err)

	c, err := s.CreateCourse(ctx, record.Course{ID: "c1", Assignees: []string{"u1"}, AssignToEveryone: true})
	require.NoError(t, err)

	got, err := s.FindCourses(ctx, CourseFilter{Assignee: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []record.Course{c}, got)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "test.db"), WithDriver("postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.CreateUser(ctx, record.User{ID: "u1"})
	require.NoError(t, err)

	ids, err := s.UserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestRunInTransaction_Commits(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateCourse(ctx, record.Course{ID: "c1", Assignees: []string{"u1", "u2"}})
	require.NoError(t, err)

	err = s.RunInTransaction(ctx, func(tx Records) error {
		c, err := tx.FindCourse(ctx, "c1")
		if err != nil {
			return err
		}
		c.Assignees = record.Without(c.Assignees, "u1")
		return tx.SaveCourse(ctx, c)
	})
	require.NoError(t, err)

	c, err := s.FindCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, c.Assignees)
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTransaction(ctx, func(tx Records) error {
		if _, err := tx.CreateUser(ctx, record.User{ID: "u1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.FindUser(ctx, "u1")
	assert.True(t, IsNotFound(err), "user should have been rolled back")
}

func TestRunInTransaction_NestedJoinsOuter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTransaction(ctx, func(tx Records) error {
		err := tx.RunInTransaction(ctx, func(inner Records) error {
			_, err := inner.CreateUser(ctx, record.User{ID: "u1"})
			return err
		})
		if err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	users, err := s.FindUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
