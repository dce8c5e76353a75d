package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/hook"
	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// userCreated joins a new user to every broadcast course they are not yet
// assigned to, creating the matching progress record for each.
func (e *Engine) userCreated(ctx context.Context, ev *hook.Event[record.User]) error {
	userID := ev.Record.ID

	return e.maybeTx(ctx, func(rs store.Records) error {
		courses, err := rs.FindCourses(ctx, store.Broadcast())
		if err != nil {
			return err
		}

		for _, c := range courses {
			if c.HasAssignee(userID) {
				continue
			}
			c.Assignees = append(c.Assignees, userID)
			if err := rs.SaveCourse(ctx, c); err != nil {
				if store.IsNotFound(err) {
					continue
				}
				return err
			}
			if err := e.createProgress(ctx, rs, c.ID, userID); err != nil {
				return err
			}
			e.logger.Debug("user onboarded", zap.String("course", c.ID), zap.String("user", userID))
		}
		return nil
	})
}

// userDeleted removes a deleted user from every course and deletes the
// user's progress records, so no course keeps an assignee that no longer
// exists and broadcast courses keep matching the user population.
func (e *Engine) userDeleted(ctx context.Context, ev *hook.Event[record.User]) error {
	userID := ev.Record.ID
	if userID == "" {
		return nil
	}

	courses, err := e.records.FindCourses(ctx, store.CourseFilter{Assignee: userID})
	if err != nil {
		return err
	}
	for _, c := range courses {
		if err := e.removeAssignee(ctx, c.ID, userID); err != nil {
			return err
		}
	}

	progress, err := e.records.FindProgressRecords(ctx, store.ProgressFilter{Assignee: userID})
	if err != nil {
		return err
	}
	for _, p := range progress {
		if err := e.records.DeleteProgress(ctx, p.ID); err != nil && !store.IsNotFound(err) {
			return err
		}
	}

	e.logger.Debug("user offboarded",
		zap.String("user", userID),
		zap.Int("courses", len(courses)),
		zap.Int("progress", len(progress)))
	return nil
}
