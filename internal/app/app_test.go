package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursesync/internal/hook"
	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

func setupTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"),
		store.WithIDGenerator(record.NewSequenceGenerator()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func TestCreateCourse_NormalizesAndDispatches(t *testing.T) {
	a, s := setupTestApp(t)
	ctx := context.Background()

	var seen []hook.Event[record.Course]
	a.OnCourse(record.KindCreated).BindAfter("spy", func(_ context.Context, e *hook.Event[record.Course]) error {
		seen = append(seen, *e)
		return nil
	})

	c, err := a.CreateCourse(ctx, record.Course{ID: " c1 ", Assignees: []string{"u1", "u1", " u2"}})
	require.NoError(t, err)
	assert.Equal(t, record.Course{ID: "c1", Assignees: []string{"u1", "u2"}}, c)

	require.Len(t, seen, 1)
	assert.Equal(t, record.KindCreated, seen[0].Kind)
	assert.Equal(t, "c1", seen[0].Record.ID)
	assert.Equal(t, "", seen[0].Original.ID)

	stored, err := s.FindCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c, stored)
}

func TestCreateCourse_GeneratedIDVisibleToHandlers(t *testing.T) {
	a, _ := setupTestApp(t)

	var id string
	a.OnCourse(record.KindCreated).BindAfter("spy", func(_ context.Context, e *hook.Event[record.Course]) error {
		id = e.Record.ID
		return nil
	})

	c, err := a.CreateCourse(context.Background(), record.Course{})
	require.NoError(t, err)
	assert.Equal(t, "courses-0001", c.ID)
	assert.Equal(t, c.ID, id)
}

func TestUpdateCourse_PassesOriginal(t *testing.T) {
	a, _ := setupTestApp(t)
	ctx := context.Background()

	_, err := a.CreateCourse(ctx, record.Course{ID: "c1", Assignees: []string{"u1"}})
	require.NoError(t, err)

	var original, updated record.Course
	a.OnCourse(record.KindUpdated).BindAfter("spy", func(_ context.Context, e *hook.Event[record.Course]) error {
		original, updated = e.Original, e.Record
		return nil
	})

	_, err = a.UpdateCourse(ctx, record.Course{ID: "c1", Assignees: []string{"u2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, original.Assignees)
	assert.Equal(t, []string{"u2"}, updated.Assignees)
}

func TestUpdateCourse_Missing(t *testing.T) {
	a, _ := setupTestApp(t)

	_, err := a.UpdateCourse(context.Background(), record.Course{ID: "ghost"})
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
	assert.Contains(t, err.Error(), `update courses "ghost"`)
}

func TestDeleteProgress_RecordReadableAfterDeletion(t *testing.T) {
	a, s := setupTestApp(t)
	ctx := context.Background()

	p, err := a.CreateProgress(ctx, record.Progress{Course: "c1", Assignee: "u1"})
	require.NoError(t, err)
	assert.Equal(t, record.StatusNotStarted, p.Status)

	var deleted record.Progress
	var existedDuringAfter bool
	a.OnProgress(record.KindDeleted).BindAfter("spy", func(ctx context.Context, e *hook.Event[record.Progress]) error {
		deleted = e.Record
		_, err := s.FindProgress(ctx, e.Record.ID)
		existedDuringAfter = err == nil
		return nil
	})

	require.NoError(t, a.DeleteProgress(ctx, p.ID))
	assert.Equal(t, p, deleted)
	assert.False(t, existedDuringAfter, "After runs once the delete has committed")
}

func TestBeforeHandlerVetoesWrite(t *testing.T) {
	a, s := setupTestApp(t)
	ctx := context.Background()
	veto := errors.New("read-only")

	a.OnUser(record.KindCreated).Bind(hook.Handler[record.User]{
		ID:     "guard",
		Before: func(context.Context, *hook.Event[record.User]) error { return veto },
	})

	_, err := a.CreateUser(ctx, record.User{ID: "u1"})
	require.ErrorIs(t, err, veto)

	users, err := s.FindUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestAfterErrorSurfacesButWriteStays(t *testing.T) {
	a, s := setupTestApp(t)
	ctx := context.Background()
	fail := errors.New("cascade failed")

	a.OnUser(record.KindCreated).BindAfter("broken", func(context.Context, *hook.Event[record.User]) error { return fail })

	_, err := a.CreateUser(ctx, record.User{ID: "u1"})
	require.ErrorIs(t, err, fail)

	_, err = s.FindUser(ctx, "u1")
	assert.NoError(t, err)
}

func TestDirectStoreWritesDoNotDispatch(t *testing.T) {
	a, s := setupTestApp(t)
	ctx := context.Background()

	calls := 0
	a.OnProgress(record.KindCreated).BindAfter("spy", func(context.Context, *hook.Event[record.Progress]) error {
		calls++
		return nil
	})

	_, err := s.CreateProgress(ctx, record.NewProgress("c1", "u1"))
	require.NoError(t, err)
	assert.Zero(t, calls)

	_, err = a.CreateProgress(ctx, record.Progress{Course: "c1", Assignee: "u2"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestUserLifecycle(t *testing.T) {
	a, _ := setupTestApp(t)
	ctx := context.Background()

	u, err := a.CreateUser(ctx, record.User{ID: "u1", Name: "Ada"})
	require.NoError(t, err)

	u.Name = "Ada L."
	_, err = a.UpdateUser(ctx, u)
	require.NoError(t, err)

	users, err := a.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []record.User{{ID: "u1", Name: "Ada L."}}, users)

	require.NoError(t, a.DeleteUser(ctx, "u1"))
	assert.True(t, store.IsNotFound(a.DeleteUser(ctx, "u1")))
}

func TestProgressRecords_NormalizesFilter(t *testing.T) {
	a, _ := setupTestApp(t)
	ctx := context.Background()

	_, err := a.CreateProgress(ctx, record.Progress{Course: "c1", Assignee: "u1"})
	require.NoError(t, err)

	got, err := a.ProgressRecords(ctx, store.ProgressFilter{Course: " c1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
