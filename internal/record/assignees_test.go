package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"no duplicates", []string{"u1", "u2"}, []string{"u1", "u2"}},
		{"keeps first occurrence", []string{"u2", "u1", "u2", "u1"}, []string{"u2", "u1"}},
		{"drops empty", []string{"", "u1", ""}, []string{"u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedupe(tt.in))
		})
	}
}

func TestDifference(t *testing.T) {
	original := []string{"u1", "u2"}
	updated := []string{"u2", "u3"}

	assert.Equal(t, []string{"u3"}, Difference(updated, original), "added")
	assert.Equal(t, []string{"u1"}, Difference(original, updated), "removed")
	assert.Empty(t, Difference(original, original))
	assert.Equal(t, []string{"u1"}, Difference([]string{"u1", "u1"}, nil))
}

func TestUnion(t *testing.T) {
	assert.Equal(t, []string{"u1", "u2", "u3"}, Union([]string{"u1", "u2"}, []string{"u3", "u1"}))
	assert.Equal(t, []string{}, Union(nil, nil))
}

func TestWithout(t *testing.T) {
	assert.Equal(t, []string{"u1", "u3"}, Without([]string{"u1", "u2", "u3", "u2"}, "u2"))
	assert.Equal(t, []string{"u1"}, Without([]string{"u1"}, "absent"))
	assert.NotNil(t, Without(nil, "u1"))
}

func TestSameSet(t *testing.T) {
	assert.True(t, SameSet([]string{"u1", "u2"}, []string{"u2", "u1"}))
	assert.True(t, SameSet([]string{"u1", "u1"}, []string{"u1"}))
	assert.True(t, SameSet(nil, []string{}))
	assert.False(t, SameSet([]string{"u1"}, []string{"u1", "u2"}))
}
