package audit

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// Summary counts the writes made by a Reconcile.
type Summary struct {
	CoursesSaved    int `json:"courses_saved"`
	ProgressCreated int `json:"progress_created"`
	ProgressDeleted int `json:"progress_deleted"`
}

// Changed reports whether any write was made.
func (s Summary) Changed() bool {
	return s.CoursesSaved+s.ProgressCreated+s.ProgressDeleted > 0
}

// Reconciler repairs drift between courses and progress records.
//
// For a broadcast course the target assignee set is every user. For any
// other course it is the union of the listed assignees and the assignees of
// existing progress records: both are valid sources of assignment, so
// nothing either side asserts is dropped.
type Reconciler struct {
	records store.Records
	opts    options
}

// NewReconciler creates a Reconciler writing to records.
func NewReconciler(records store.Records, opts ...Option) *Reconciler {
	return &Reconciler{records: records, opts: buildOptions(opts)}
}

// Reconcile repairs every course, one transaction per course, then deletes
// progress records whose course no longer exists.
func (r *Reconciler) Reconcile(ctx context.Context) (Summary, error) {
	var total Summary

	courses, err := r.records.FindCourses(ctx, store.CourseFilter{})
	if err != nil {
		return total, fmt.Errorf("reconcile: %w", err)
	}

	for _, c := range courses {
		err := r.records.RunInTransaction(ctx, func(tx store.Records) error {
			s, err := r.reconcileCourse(ctx, tx, c.ID)
			if err != nil {
				return err
			}
			total.CoursesSaved += s.CoursesSaved
			total.ProgressCreated += s.ProgressCreated
			total.ProgressDeleted += s.ProgressDeleted
			return nil
		})
		if err != nil {
			return total, fmt.Errorf("reconcile course %q: %w", c.ID, err)
		}
	}

	removed, err := r.removeOrphans(ctx)
	if err != nil {
		return total, fmt.Errorf("reconcile: %w", err)
	}
	total.ProgressDeleted += removed

	r.opts.logger.Info("reconcile complete",
		zap.Int("courses_saved", total.CoursesSaved),
		zap.Int("progress_created", total.ProgressCreated),
		zap.Int("progress_deleted", total.ProgressDeleted))
	return total, nil
}

func (r *Reconciler) reconcileCourse(ctx context.Context, tx store.Records, courseID string) (Summary, error) {
	var s Summary

	c, err := tx.FindCourse(ctx, courseID)
	if store.IsNotFound(err) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	progress, err := tx.FindProgressRecords(ctx, store.ProgressFilter{Course: c.ID})
	if err != nil {
		return s, err
	}

	var target []string
	if c.AssignToEveryone {
		if target, err = tx.UserIDs(ctx); err != nil {
			return s, err
		}
	} else {
		target = record.Union(c.Assignees, assigneeOrder(progress))
	}

	if !slices.Equal(c.Assignees, target) {
		c.Assignees = target
		if err := tx.SaveCourse(ctx, c); err != nil {
			return s, err
		}
		s.CoursesSaved++
	}

	kept := make(map[string]bool, len(target))
	for _, p := range progress {
		if slices.Contains(target, p.Assignee) && !kept[p.Assignee] {
			kept[p.Assignee] = true
			continue
		}
		if err := tx.DeleteProgress(ctx, p.ID); err != nil {
			return s, err
		}
		s.ProgressDeleted++
	}

	for _, id := range target {
		if kept[id] {
			continue
		}
		if _, err := tx.CreateProgress(ctx, record.NewProgress(c.ID, id)); err != nil {
			return s, err
		}
		s.ProgressCreated++
	}

	if s.Changed() {
		r.opts.logger.Debug("course reconciled",
			zap.String("course", c.ID),
			zap.Int("progress_created", s.ProgressCreated),
			zap.Int("progress_deleted", s.ProgressDeleted))
	}
	return s, nil
}

// removeOrphans deletes progress whose course does not exist, judged against
// the courses present when it runs.
func (r *Reconciler) removeOrphans(ctx context.Context) (int, error) {
	var removed int
	err := r.records.RunInTransaction(ctx, func(tx store.Records) error {
		removed = 0
		courses, err := tx.FindCourses(ctx, store.CourseFilter{})
		if err != nil {
			return err
		}
		all, err := tx.FindProgressRecords(ctx, store.ProgressFilter{})
		if err != nil {
			return err
		}
		for _, v := range orphans(courses, all) {
			for _, id := range v.Progress {
				if err := tx.DeleteProgress(ctx, id); err != nil && !store.IsNotFound(err) {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}
