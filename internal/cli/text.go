package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/roach88/coursesync/internal/audit"
	"github.com/roach88/coursesync/internal/record"
)

// CourseDetail is a course with its progress records.
type CourseDetail struct {
	Course   record.Course     `json:"course"`
	Progress []record.Progress `json:"progress"`
}

// writeText renders command results for humans.
func writeText(w io.Writer, data any) error {
	switch v := data.(type) {
	case record.Course:
		return writeCourses(w, []record.Course{v})
	case []record.Course:
		return writeCourses(w, v)
	case record.User:
		return writeUsers(w, []record.User{v})
	case []record.User:
		return writeUsers(w, v)
	case record.Progress:
		return writeProgress(w, []record.Progress{v})
	case []record.Progress:
		return writeProgress(w, v)
	case CourseDetail:
		if err := writeCourses(w, []record.Course{v.Course}); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return writeProgress(w, v.Progress)
	case audit.Report:
		return writeReport(w, v)
	case audit.Summary:
		_, err := fmt.Fprintf(w, "courses saved: %d\nprogress created: %d\nprogress deleted: %d\n",
			v.CoursesSaved, v.ProgressCreated, v.ProgressDeleted)
		return err
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

func writeCourses(w io.Writer, courses []record.Course) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVERYONE\tASSIGNEES")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%t\t%s\n", c.ID, c.AssignToEveryone, strings.Join(c.Assignees, ","))
	}
	return tw.Flush()
}

func writeUsers(w io.Writer, users []record.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\n", u.ID, u.Name)
	}
	return tw.Flush()
}

func writeProgress(w io.Writer, progress []record.Progress) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOURSE\tASSIGNEE\tSTATUS")
	for _, p := range progress {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Course, p.Assignee, p.Status)
	}
	return tw.Flush()
}

func writeReport(w io.Writer, r audit.Report) error {
	if r.Clean() {
		_, err := fmt.Fprintf(w, "✓ %d courses, %d progress records consistent\n", r.Courses, r.Progress)
		return err
	}
	fmt.Fprintf(w, "✗ %d violations in %d courses, %d progress records\n", len(r.Violations), r.Courses, r.Progress)
	for _, v := range r.Violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
	return nil
}
