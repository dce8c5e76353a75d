package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/coursesync/internal/audit"
	"github.com/roach88/coursesync/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s", event.Seq, event.Op, event.ID)
		if event.Error != "" {
			fmt.Fprintf(&buf, " (error: %s)", event.Error)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the store and returns
// one message per failure.
func EvaluateAssertions(ctx context.Context, records store.Records, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(ctx, records, a); err != nil {
			err.Trace = result.Trace
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return errs
}

func evaluate(ctx context.Context, records store.Records, a Assertion) *AssertionError {
	switch a.Type {
	case AssertCourseAssignees:
		return assertCourseAssignees(ctx, records, a)
	case AssertProgressCount:
		return assertProgressCount(ctx, records, a)
	case AssertProgress:
		return assertProgress(ctx, records, a)
	case AssertAuditClean:
		return assertAuditClean(ctx, records)
	}
	return &AssertionError{Type: a.Type, Expected: "known assertion type", Actual: a.Type}
}

// assertCourseAssignees compares the course's assignees, order included.
func assertCourseAssignees(ctx context.Context, records store.Records, a Assertion) *AssertionError {
	c, err := records.FindCourse(ctx, a.Course)
	if err != nil {
		return &AssertionError{
			Type:     AssertCourseAssignees,
			Expected: fmt.Sprintf("course %s with assignees %v", a.Course, a.Assignees),
			Actual:   err.Error(),
		}
	}
	if !slices.Equal(c.Assignees, a.Assignees) {
		return &AssertionError{
			Type:     AssertCourseAssignees,
			Expected: fmt.Sprintf("course %s assignees %v", a.Course, a.Assignees),
			Actual:   fmt.Sprintf("%v", c.Assignees),
		}
	}
	return nil
}

// assertProgressCount counts progress records matching course and/or assignee.
func assertProgressCount(ctx context.Context, records store.Records, a Assertion) *AssertionError {
	want := *a.Count
	matches, err := records.FindProgressRecords(ctx, store.ProgressFilter{Course: a.Course, Assignee: a.Assignee})
	if err != nil {
		return &AssertionError{Type: AssertProgressCount, Expected: fmt.Sprintf("%d records", want), Actual: err.Error()}
	}
	if len(matches) != want {
		return &AssertionError{
			Type:     AssertProgressCount,
			Expected: fmt.Sprintf("%d progress records for course=%q assignee=%q", want, a.Course, a.Assignee),
			Actual:   fmt.Sprintf("%d records", len(matches)),
		}
	}
	return nil
}

// assertProgress checks the fields of one selected progress record.
func assertProgress(ctx context.Context, records store.Records, a Assertion) *AssertionError {
	p, err := findProgress(ctx, records, a.ID, a.Match)
	if err != nil {
		return &AssertionError{Type: AssertProgress, Expected: "progress record exists", Actual: err.Error()}
	}

	var mismatches []string
	if a.Course != "" && p.Course != a.Course {
		mismatches = append(mismatches, fmt.Sprintf("course=%q (want %q)", p.Course, a.Course))
	}
	if a.Assignee != "" && p.Assignee != a.Assignee {
		mismatches = append(mismatches, fmt.Sprintf("assignee=%q (want %q)", p.Assignee, a.Assignee))
	}
	if a.Status != "" && p.Status != a.Status {
		mismatches = append(mismatches, fmt.Sprintf("status=%q (want %q)", p.Status, a.Status))
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertProgress,
			Expected: fmt.Sprintf("progress %s to match", p.ID),
			Actual:   strings.Join(mismatches, ", "),
		}
	}
	return nil
}

// assertAuditClean runs the audit checker serially over the store.
func assertAuditClean(ctx context.Context, records store.Records) *AssertionError {
	report, err := audit.NewChecker(records, audit.WithConcurrency(1)).Check(ctx)
	if err != nil {
		return &AssertionError{Type: AssertAuditClean, Expected: "audit to run", Actual: err.Error()}
	}
	if !report.Clean() {
		violations := make([]string, 0, len(report.Violations))
		for _, v := range report.Violations {
			violations = append(violations, v.String())
		}
		return &AssertionError{
			Type:     AssertAuditClean,
			Expected: "no violations",
			Actual:   strings.Join(violations, "; "),
		}
	}
	return nil
}
