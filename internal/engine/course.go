package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/hook"
	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// courseCreated derives one progress record per assignee of a new course.
// In broadcast mode the assignee set is first overwritten with every user.
func (e *Engine) courseCreated(ctx context.Context, ev *hook.Event[record.Course]) error {
	assignees, err := e.resolveBroadcast(ctx, &ev.Record)
	if err != nil {
		return err
	}

	for _, assignee := range assignees {
		if err := e.createProgress(ctx, e.records, ev.Record.ID, assignee); err != nil {
			return err
		}
	}
	return nil
}

// courseUpdated reconciles progress records with the assignee delta between
// the pre-update snapshot and the post-broadcast assignee set. Both sides of
// the delta come from those two snapshots only.
func (e *Engine) courseUpdated(ctx context.Context, ev *hook.Event[record.Course]) error {
	original := ev.Original.Assignees

	updated, err := e.resolveBroadcast(ctx, &ev.Record)
	if err != nil {
		return err
	}

	return e.applyAssigneeDelta(ctx, ev.Record.ID, original, updated)
}

// courseDeleted removes every progress record that referenced the course.
func (e *Engine) courseDeleted(ctx context.Context, ev *hook.Event[record.Course]) error {
	if ev.Record.ID == "" {
		return nil
	}
	orphans, err := e.records.FindProgressRecords(ctx, store.ProgressFilter{Course: ev.Record.ID})
	if err != nil {
		return err
	}
	for _, p := range orphans {
		if err := e.records.DeleteProgress(ctx, p.ID); err != nil && !store.IsNotFound(err) {
			return err
		}
	}
	e.logger.Debug("course progress cleared", zap.String("course", ev.Record.ID), zap.Int("removed", len(orphans)))
	return nil
}

// resolveBroadcast returns the course's effective assignee set. When
// assign_to_everyone is set the set becomes every current user id and is
// persisted; broadcast mode wins over any explicitly supplied list. c is
// updated in place so the requester sees the recomputed set.
func (e *Engine) resolveBroadcast(ctx context.Context, c *record.Course) ([]string, error) {
	if !c.AssignToEveryone {
		return c.Assignees, nil
	}

	err := e.maybeTx(ctx, func(rs store.Records) error {
		userIDs, err := rs.UserIDs(ctx)
		if err != nil {
			return err
		}
		c.Assignees = userIDs
		return rs.SaveCourse(ctx, *c)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("broadcast resolved", zap.String("course", c.ID), zap.Int("assignees", len(c.Assignees)))
	return c.Assignees, nil
}

// applyAssigneeDelta creates progress for added assignees, then deletes
// progress for removed ones. The two sets are disjoint by construction.
func (e *Engine) applyAssigneeDelta(ctx context.Context, courseID string, original, updated []string) error {
	added := record.Difference(updated, original)
	removed := record.Difference(original, updated)

	for _, assignee := range added {
		if err := e.createProgress(ctx, e.records, courseID, assignee); err != nil {
			return err
		}
	}
	for _, assignee := range removed {
		if err := e.deleteProgress(ctx, e.records, courseID, assignee); err != nil {
			return err
		}
	}

	if len(added) > 0 || len(removed) > 0 {
		e.logger.Debug("assignee delta applied",
			zap.String("course", courseID),
			zap.Strings("added", added),
			zap.Strings("removed", removed))
	}
	return nil
}
