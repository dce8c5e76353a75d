// Package audit verifies that courses and progress records agree, and repairs
// them when they do not.
//
// The engine keeps the two views consistent as events arrive, but writes
// made behind its back (direct store access, lost updates between concurrent
// events, data imported from elsewhere) can leave drift. Checker reports it;
// Reconciler fixes it.
package audit

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// DefaultConcurrency is the default number of courses checked in parallel.
const DefaultConcurrency = 4

// ViolationKind categorises a consistency violation.
type ViolationKind string

const (
	// KindMissingProgress: an assignee has no progress record for the course.
	KindMissingProgress ViolationKind = "missing_progress"

	// KindUnlistedProgress: a progress record's assignee is not in the course's assignees.
	KindUnlistedProgress ViolationKind = "unlisted_progress"

	// KindDuplicateAssignee: an id appears more than once in a course's assignees.
	KindDuplicateAssignee ViolationKind = "duplicate_assignee"

	// KindDuplicateProgress: more than one progress record for one (course, assignee) pair.
	KindDuplicateProgress ViolationKind = "duplicate_progress"

	// KindBroadcastDrift: a broadcast course's assignees differ from the user population.
	KindBroadcastDrift ViolationKind = "broadcast_drift"

	// KindOrphanProgress: a progress record references a course that does not exist.
	KindOrphanProgress ViolationKind = "orphan_progress"
)

// Violation is one detected inconsistency.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	Course   string        `json:"course"`
	Assignee string        `json:"assignee,omitempty"`
	Progress []string      `json:"progress,omitempty"`
}

func (v Violation) String() string {
	s := fmt.Sprintf("%s course=%s", v.Kind, v.Course)
	if v.Assignee != "" {
		s += " assignee=" + v.Assignee
	}
	if len(v.Progress) > 0 {
		s += fmt.Sprintf(" progress=%v", v.Progress)
	}
	return s
}

// Report is the result of a Check.
type Report struct {
	Courses    int         `json:"courses"`
	Progress   int         `json:"progress"`
	Violations []Violation `json:"violations"`
}

// Clean reports whether no violations were found.
func (r Report) Clean() bool {
	return len(r.Violations) == 0
}

type options struct {
	concurrency int
	logger      *zap.Logger
}

// Option configures a Checker or Reconciler.
type Option func(*options)

// WithConcurrency sets how many courses are checked in parallel. Values
// below 1 fall back to DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{concurrency: DefaultConcurrency, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = DefaultConcurrency
	}
	return o
}

// Checker detects consistency violations. It never writes.
type Checker struct {
	records store.Records
	opts    options
}

// NewChecker creates a Checker reading from records.
func NewChecker(records store.Records, opts ...Option) *Checker {
	return &Checker{records: records, opts: buildOptions(opts)}
}

// Check inspects every course and progress record. Violations are ordered
// by course creation order, then by kind of check, so reports are stable.
func (c *Checker) Check(ctx context.Context) (Report, error) {
	userIDs, err := c.records.UserIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("audit: %w", err)
	}
	courses, err := c.records.FindCourses(ctx, store.CourseFilter{})
	if err != nil {
		return Report{}, fmt.Errorf("audit: %w", err)
	}
	allProgress, err := c.records.FindProgressRecords(ctx, store.ProgressFilter{})
	if err != nil {
		return Report{}, fmt.Errorf("audit: %w", err)
	}

	perCourse := make([][]Violation, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.concurrency)
	for i, course := range courses {
		g.Go(func() error {
			progress, err := c.records.FindProgressRecords(gctx, store.ProgressFilter{Course: course.ID})
			if err != nil {
				return fmt.Errorf("audit course %q: %w", course.ID, err)
			}
			perCourse[i] = checkCourse(course, progress, userIDs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Courses: len(courses), Progress: len(allProgress), Violations: []Violation{}}
	for _, vs := range perCourse {
		report.Violations = append(report.Violations, vs...)
	}
	report.Violations = append(report.Violations, orphans(courses, allProgress)...)

	c.opts.logger.Info("audit complete",
		zap.Int("courses", report.Courses),
		zap.Int("progress", report.Progress),
		zap.Int("violations", len(report.Violations)))
	return report, nil
}

// checkCourse returns the violations of one course given its progress records.
func checkCourse(c record.Course, progress []record.Progress, userIDs []string) []Violation {
	var out []Violation

	seen := make(map[string]bool, len(c.Assignees))
	for _, id := range c.Assignees {
		if seen[id] {
			out = append(out, Violation{Kind: KindDuplicateAssignee, Course: c.ID, Assignee: id})
		}
		seen[id] = true
	}

	byAssignee := groupByAssignee(progress)
	for _, id := range record.Dedupe(c.Assignees) {
		if len(byAssignee[id]) == 0 {
			out = append(out, Violation{Kind: KindMissingProgress, Course: c.ID, Assignee: id})
		}
	}

	for _, id := range assigneeOrder(progress) {
		ids := byAssignee[id]
		if !seen[id] {
			out = append(out, Violation{Kind: KindUnlistedProgress, Course: c.ID, Assignee: id, Progress: ids})
		}
		if len(ids) > 1 {
			out = append(out, Violation{Kind: KindDuplicateProgress, Course: c.ID, Assignee: id, Progress: ids})
		}
	}

	if c.AssignToEveryone && !record.SameSet(c.Assignees, userIDs) {
		out = append(out, Violation{Kind: KindBroadcastDrift, Course: c.ID})
	}
	return out
}

// orphans reports progress records whose course does not exist.
func orphans(courses []record.Course, progress []record.Progress) []Violation {
	known := make(map[string]bool, len(courses))
	for _, c := range courses {
		known[c.ID] = true
	}

	var out []Violation
	for _, p := range progress {
		if !known[p.Course] {
			out = append(out, Violation{Kind: KindOrphanProgress, Course: p.Course, Assignee: p.Assignee, Progress: []string{p.ID}})
		}
	}
	return out
}

// groupByAssignee maps each assignee to its progress record ids in order.
func groupByAssignee(progress []record.Progress) map[string][]string {
	out := make(map[string][]string)
	for _, p := range progress {
		out[p.Assignee] = append(out[p.Assignee], p.ID)
	}
	return out
}

// assigneeOrder returns the distinct assignees of progress in first-seen order.
func assigneeOrder(progress []record.Progress) []string {
	var out []string
	for _, p := range progress {
		if !slices.Contains(out, p.Assignee) {
			out = append(out, p.Assignee)
		}
	}
	return out
}
