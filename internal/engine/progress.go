package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/hook"
	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// progressCreated back-fills the course's assignee set. A progress record
// created directly is as valid a source of assignment as the course itself.
func (e *Engine) progressCreated(ctx context.Context, ev *hook.Event[record.Progress]) error {
	p := ev.Record
	if p.Course == "" || p.Assignee == "" {
		return nil
	}
	return e.addAssignee(ctx, p.Course, p.Assignee)
}

// progressUpdated forces course and assignee back to their values at
// creation. The update itself is not rejected: other fields keep their new
// values and the correction is a second write.
func (e *Engine) progressUpdated(ctx context.Context, ev *hook.Event[record.Progress]) error {
	if ev.Record.SameIdentity(ev.Original) {
		return nil
	}

	e.logger.Debug("progress identity reverted",
		zap.String("progress", ev.Record.ID),
		zap.String("course", ev.Original.Course),
		zap.String("attempted_course", ev.Record.Course),
		zap.String("assignee", ev.Original.Assignee),
		zap.String("attempted_assignee", ev.Record.Assignee))

	ev.Record.Course = ev.Original.Course
	ev.Record.Assignee = ev.Original.Assignee
	if err := e.records.SaveProgress(ctx, ev.Record); err != nil && !store.IsNotFound(err) {
		return err
	}
	return nil
}

// progressDeleted removes the deleted record's assignee from its course. The
// course and assignee are read from the deleted record itself.
func (e *Engine) progressDeleted(ctx context.Context, ev *hook.Event[record.Progress]) error {
	p := ev.Record
	if p.Course == "" {
		return nil
	}
	return e.removeAssignee(ctx, p.Course, p.Assignee)
}
