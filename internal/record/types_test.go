package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourse_Clone(t *testing.T) {
	c := Course{ID: "c1", Assignees: []string{"u1"}}
	clone := c.Clone()
	clone.Assignees[0] = "u9"

	assert.Equal(t, "u1", c.Assignees[0])
	assert.Equal(t, []string{}, Course{ID: "c2"}.Clone().Assignees)
}

func TestCourse_HasAssignee(t *testing.T) {
	c := Course{ID: "c1", Assignees: []string{"u1", "u2"}}
	assert.True(t, c.HasAssignee("u2"))
	assert.False(t, c.HasAssignee("u3"))
}

func TestNewProgress(t *testing.T) {
	p := NewProgress("c1", "u1")
	assert.Equal(t, Progress{Course: "c1", Assignee: "u1", Status: StatusNotStarted}, p)
	assert.True(t, p.SameIdentity(Progress{ID: "x", Course: "c1", Assignee: "u1", Status: "Done"}))
	assert.False(t, p.SameIdentity(Progress{Course: "c2", Assignee: "u1"}))
}
