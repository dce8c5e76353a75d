package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/hook"
	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// Handler ids, as bound on the dispatcher and reported in CascadeError.
const (
	HandlerCourseCreated   = "course-created"
	HandlerCourseUpdated   = "course-updated"
	HandlerCourseDeleted   = "course-deleted"
	HandlerProgressCreated = "progress-created"
	HandlerProgressUpdated = "progress-updated"
	HandlerProgressDeleted = "progress-deleted"
	HandlerUserCreated     = "user-created"
	HandlerUserDeleted     = "user-deleted"
)

// Dispatcher exposes the lifecycle hooks the engine binds to.
// Implemented by *app.App.
type Dispatcher interface {
	OnCourse(kind record.Kind) *hook.Hook[record.Course]
	OnUser(kind record.Kind) *hook.Hook[record.User]
	OnProgress(kind record.Kind) *hook.Hook[record.Progress]
}

// Engine reacts to committed record events with compensating writes.
//
// The engine holds no mutable state of its own: the store is the only shared
// resource, so one Engine may serve concurrent requests.
type Engine struct {
	records store.Records
	logger  *zap.Logger
	strict  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithStrictTransactions runs every course read-modify-write inside a store
// transaction, not only the progress-deleted cascade.
func WithStrictTransactions(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// New creates an Engine that issues its writes against records.
func New(records store.Records, opts ...Option) *Engine {
	e := &Engine{
		records: records,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register binds every engine handler on d. Call once per dispatcher.
func (e *Engine) Register(d Dispatcher) {
	courseID := func(c record.Course) string { return c.ID }
	userID := func(u record.User) string { return u.ID }
	progressID := func(p record.Progress) string { return p.ID }

	d.OnCourse(record.KindCreated).BindAfter(HandlerCourseCreated,
		guard(e, HandlerCourseCreated, record.FamilyCourses, courseID, e.courseCreated))
	d.OnCourse(record.KindUpdated).BindAfter(HandlerCourseUpdated,
		guard(e, HandlerCourseUpdated, record.FamilyCourses, courseID, e.courseUpdated))
	d.OnCourse(record.KindDeleted).BindAfter(HandlerCourseDeleted,
		guard(e, HandlerCourseDeleted, record.FamilyCourses, courseID, e.courseDeleted))

	d.OnProgress(record.KindCreated).BindAfter(HandlerProgressCreated,
		guard(e, HandlerProgressCreated, record.FamilyProgress, progressID, e.progressCreated))
	d.OnProgress(record.KindUpdated).BindAfter(HandlerProgressUpdated,
		guard(e, HandlerProgressUpdated, record.FamilyProgress, progressID, e.progressUpdated))
	d.OnProgress(record.KindDeleted).BindAfter(HandlerProgressDeleted,
		guard(e, HandlerProgressDeleted, record.FamilyProgress, progressID, e.progressDeleted))

	d.OnUser(record.KindCreated).BindAfter(HandlerUserCreated,
		guard(e, HandlerUserCreated, record.FamilyUsers, userID, e.userCreated))
	d.OnUser(record.KindDeleted).BindAfter(HandlerUserDeleted,
		guard(e, HandlerUserDeleted, record.FamilyUsers, userID, e.userDeleted))
}

// guard wraps a handler so failures are logged and returned as *CascadeError.
func guard[T any](e *Engine, handler string, family record.Family, key func(T) string, fn hook.Func[T]) hook.Func[T] {
	return func(ctx context.Context, ev *hook.Event[T]) error {
		err := fn(ctx, ev)
		if err == nil {
			return nil
		}
		id := key(ev.Record)
		e.logger.Error("cascade failed",
			zap.String("handler", handler),
			zap.String("family", string(family)),
			zap.String("id", id),
			zap.Error(err))
		return &CascadeError{Handler: handler, Family: family, RecordID: id, Err: err}
	}
}

// maybeTx runs fn in a transaction when strict mode is on, otherwise
// directly against the engine's store.
func (e *Engine) maybeTx(ctx context.Context, fn func(store.Records) error) error {
	if e.strict {
		return e.records.RunInTransaction(ctx, fn)
	}
	return fn(e.records)
}

// createProgress creates the progress record for one (course, assignee) pair.
func (e *Engine) createProgress(ctx context.Context, rs store.Records, courseID, assigneeID string) error {
	p, err := rs.CreateProgress(ctx, record.NewProgress(courseID, assigneeID))
	if err != nil {
		return err
	}
	e.logger.Debug("progress derived",
		zap.String("progress", p.ID),
		zap.String("course", courseID),
		zap.String("assignee", assigneeID))
	return nil
}

// deleteProgress deletes every progress record matching (course, assignee).
// Normally there is exactly one; all matches go so earlier duplication heals.
func (e *Engine) deleteProgress(ctx context.Context, rs store.Records, courseID, assigneeID string) error {
	if courseID == "" || assigneeID == "" {
		return nil
	}
	matches, err := rs.FindProgressRecords(ctx, store.ProgressFilter{Course: courseID, Assignee: assigneeID})
	if err != nil {
		return err
	}
	for _, p := range matches {
		if err := rs.DeleteProgress(ctx, p.ID); err != nil && !store.IsNotFound(err) {
			return err
		}
		e.logger.Debug("progress removed",
			zap.String("progress", p.ID),
			zap.String("course", courseID),
			zap.String("assignee", assigneeID))
	}
	return nil
}

// addAssignee appends assigneeID to the course if absent.
// A missing course is skipped.
func (e *Engine) addAssignee(ctx context.Context, courseID, assigneeID string) error {
	return e.maybeTx(ctx, func(rs store.Records) error {
		c, err := rs.FindCourse(ctx, courseID)
		if store.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if c.HasAssignee(assigneeID) {
			return nil
		}
		c.Assignees = append(c.Assignees, assigneeID)
		if err := rs.SaveCourse(ctx, c); err != nil && !store.IsNotFound(err) {
			return err
		}
		e.logger.Debug("assignee added", zap.String("course", courseID), zap.String("assignee", assigneeID))
		return nil
	})
}

// removeAssignee drops assigneeID from the course inside one transaction.
// The course is looked up through the transaction handle, never reused from
// an earlier read, because this path races with concurrent course updates.
func (e *Engine) removeAssignee(ctx context.Context, courseID, assigneeID string) error {
	return e.records.RunInTransaction(ctx, func(tx store.Records) error {
		c, err := tx.FindCourse(ctx, courseID)
		if store.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if !c.HasAssignee(assigneeID) {
			return nil
		}
		c.Assignees = record.Without(c.Assignees, assigneeID)
		if err := tx.SaveCourse(ctx, c); err != nil {
			return err
		}
		e.logger.Debug("assignee removed", zap.String("course", courseID), zap.String("assignee", assigneeID))
		return nil
	})
}
