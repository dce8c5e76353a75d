package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/coursesync/internal/audit"
	"github.com/roach88/coursesync/internal/engine"
	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/schema"
	"github.com/roach88/coursesync/internal/store"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(record.Course{ID: "c1", Assignees: []string{"u1"}})
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   record.Course `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "c1", resp.Data.ID)
	assert.Equal(t, []string{"u1"}, resp.Data.Assignees)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error(CodeNotFound, "course missing", map[string]string{"id": "c1"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
	assert.Equal(t, "course missing", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut, Verbose: true}

	require.NoError(t, formatter.Error(CodeInvalid, "bad input", map[string]string{"field": "status"}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error [E002]: bad input")
	assert.Contains(t, errOut.String(), "Details:")
}

func TestOutputFormatter_TextErrorFallsBackToWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error(CodeInternal, "boom", nil))
	assert.Contains(t, buf.String(), "Error [E004]: boom")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Fail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{
			name:     "not found",
			err:      fmt.Errorf("course %q: %w", "c1", store.ErrNotFound),
			wantCode: CodeNotFound,
			wantExit: ExitCommandError,
		},
		{
			name:     "validation",
			err:      &schema.ValidationError{Family: record.FamilyProgress, Field: "status", Message: "empty"},
			wantCode: CodeInvalid,
			wantExit: ExitCommandError,
		},
		{
			name: "cascade wrapping not found",
			err: &engine.CascadeError{
				Handler: engine.HandlerCourseCreated, Family: record.FamilyCourses, RecordID: "c1",
				Err: store.ErrNotFound,
			},
			wantCode: CodeCascade,
			wantExit: ExitFailure,
		},
		{
			name:     "other",
			err:      errors.New("disk full"),
			wantCode: CodeInternal,
			wantExit: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Fail("op", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad"))))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
	assert.Equal(t, "load: boom", WrapExitError(ExitFailure, "load", errors.New("boom")).Error())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			formatter.VerboseLog("Reconciling %s", "c1")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Reconciling c1")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		name string
		data any
		want []string
	}{
		{
			name: "courses",
			data: []record.Course{{ID: "c1", Assignees: []string{"u1", "u2"}, AssignToEveryone: true}},
			want: []string{"ID", "EVERYONE", "c1", "true", "u1,u2"},
		},
		{
			name: "users",
			data: []record.User{{ID: "u1", Name: "Ada"}},
			want: []string{"NAME", "u1", "Ada"},
		},
		{
			name: "progress",
			data: record.Progress{ID: "p1", Course: "c1", Assignee: "u1", Status: record.StatusNotStarted},
			want: []string{"STATUS", "p1", "c1", "u1", "Not Started"},
		},
		{
			name: "clean report",
			data: audit.Report{Courses: 2, Progress: 4},
			want: []string{"✓ 2 courses, 4 progress records consistent"},
		},
		{
			name: "dirty report",
			data: audit.Report{Courses: 1, Violations: []audit.Violation{{Kind: audit.KindBroadcastDrift, Course: "c1"}}},
			want: []string{"✗ 1 violations", "broadcast_drift course=c1"},
		},
		{
			name: "summary",
			data: audit.Summary{ProgressCreated: 3},
			want: []string{"progress created: 3"},
		},
		{
			name: "fallback",
			data: map[string]string{"deleted": "c1"},
			want: []string{"deleted:c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, writeText(buf, tt.data))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}
