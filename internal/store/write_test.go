package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/schema"
)

func TestCreate_AssignsIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCourse(ctx, record.Course{})
	require.NoError(t, err)
	assert.Equal(t, "courses-0001", c.ID)
	assert.Equal(t, []string{}, c.Assignees)

	u, err := s.CreateUser(ctx, record.User{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "users-0001", u.ID)

	p, err := s.CreateProgress(ctx, record.NewProgress(c.ID, u.ID))
	require.NoError(t, err)
	assert.Equal(t, "progress-0001", p.ID)
}

func TestCreate_DuplicateIDFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, record.User{ID: "u1"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, record.User{ID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create user "u1"`)
}

func TestCreate_ValidationError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateProgress(ctx, record.Progress{Course: "c1", Assignee: "u1"})
	require.Error(t, err)
	assert.True(t, schema.IsValidationError(err))

	records, err := s.FindProgressRecords(ctx, ProgressFilter{})
	require.NoError(t, err)
	assert.Empty(t, records, "rejected record must not be written")
}

func TestCreateCourse_DoesNotAliasInput(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	in := record.Course{ID: "c1", Assignees: []string{"u1"}}
	out, err := s.CreateCourse(ctx, in)
	require.NoError(t, err)

	out.Assignees[0] = "changed"
	assert.Equal(t, "u1", in.Assignees[0])
}

func TestSaveCourse(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateCourse(ctx, record.Course{ID: "c1", Assignees: []string{"u1"}})
	require.NoError(t, err)

	err = s.SaveCourse(ctx, record.Course{ID: "c1", Assignees: []string{"u2", "u3"}, AssignToEveryone: true})
	require.NoError(t, err)

	c, err := s.FindCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, record.Course{ID: "c1", Assignees: []string{"u2", "u3"}, AssignToEveryone: true}, c)

	// Saving unchanged values still counts as a hit.
	require.NoError(t, s.SaveCourse(ctx, c))

	err = s.SaveCourse(ctx, record.Course{ID: "missing"})
	assert.True(t, IsNotFound(err))
}

func TestSaveProgress_WritesEveryField(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProgress(ctx, record.NewProgress("c1", "u1"))
	require.NoError(t, err)

	p.Status = "Completed"
	p.Course = "c2"
	require.NoError(t, s.SaveProgress(ctx, p))

	got, err := s.FindProgress(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSaveUser(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, record.User{ID: "u1"})
	require.NoError(t, err)
	require.NoError(t, s.SaveUser(ctx, record.User{ID: "u1", Name: "Grace"}))

	u, err := s.FindUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.Name)
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, record.User{ID: "u1"})
	require.NoError(t, err)
	_, err = s.CreateCourse(ctx, record.Course{ID: "c1"})
	require.NoError(t, err)
	p, err := s.CreateProgress(ctx, record.NewProgress("c1", "u1"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteProgress(ctx, p.ID))
	require.NoError(t, s.DeleteCourse(ctx, "c1"))
	require.NoError(t, s.DeleteUser(ctx, "u1"))

	assert.True(t, IsNotFound(s.DeleteProgress(ctx, p.ID)))
	assert.True(t, IsNotFound(s.DeleteCourse(ctx, "c1")))
	assert.True(t, IsNotFound(s.DeleteUser(ctx, "u1")))
}
