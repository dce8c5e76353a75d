// Package app is the request surface over the record store. Every create,
// update and delete made through App is dispatched as a lifecycle event to
// the handlers bound on the corresponding hook, around the default
// persistence step.
//
// Writes made directly on the store do not dispatch events. The consistency
// engine relies on this: its compensating writes go straight to the store,
// so a cascade never re-enters the dispatcher.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/hook"
	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// App dispatches lifecycle events for requests against a record store.
type App struct {
	records  store.Records
	logger   *zap.Logger
	courses  hook.Set[record.Course]
	users    hook.Set[record.User]
	progress hook.Set[record.Progress]
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the app logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// New creates an App over records with no handlers bound.
func New(records store.Records, opts ...Option) *App {
	a := &App{
		records: records,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Records returns the underlying store. Writes made on it bypass dispatch.
func (a *App) Records() store.Records {
	return a.records
}

// OnCourse returns the course hook for kind.
func (a *App) OnCourse(kind record.Kind) *hook.Hook[record.Course] {
	return a.courses.On(kind)
}

// OnUser returns the user hook for kind.
func (a *App) OnUser(kind record.Kind) *hook.Hook[record.User] {
	return a.users.On(kind)
}

// OnProgress returns the progress hook for kind.
func (a *App) OnProgress(kind record.Kind) *hook.Hook[record.Progress] {
	return a.progress.On(kind)
}

// CreateCourse persists a new course and dispatches KindCreated.
// Ids are normalised and duplicate assignees dropped before persistence.
func (a *App) CreateCourse(ctx context.Context, c record.Course) (record.Course, error) {
	e := &hook.Event[record.Course]{Kind: record.KindCreated, Record: normalizeCourse(c)}
	err := a.courses.Created.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.Course]) error {
		created, err := a.records.CreateCourse(ctx, e.Record)
		if err != nil {
			return err
		}
		e.Record = created
		return nil
	})
	if err != nil {
		return record.Course{}, a.requestError("create", record.FamilyCourses, e.Record.ID, err)
	}
	return e.Record, nil
}

// UpdateCourse persists changes to an existing course and dispatches KindUpdated
// with the stored record as Original.
func (a *App) UpdateCourse(ctx context.Context, c record.Course) (record.Course, error) {
	c = normalizeCourse(c)
	original, err := a.records.FindCourse(ctx, c.ID)
	if err != nil {
		return record.Course{}, a.requestError("update", record.FamilyCourses, c.ID, err)
	}

	e := &hook.Event[record.Course]{Kind: record.KindUpdated, Record: c, Original: original}
	err = a.courses.Updated.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.Course]) error {
		return a.records.SaveCourse(ctx, e.Record)
	})
	if err != nil {
		return record.Course{}, a.requestError("update", record.FamilyCourses, c.ID, err)
	}
	return e.Record, nil
}

// DeleteCourse removes a course and dispatches KindDeleted with the removed record.
func (a *App) DeleteCourse(ctx context.Context, id string) error {
	id = record.NormalizeID(id)
	original, err := a.records.FindCourse(ctx, id)
	if err != nil {
		return a.requestError("delete", record.FamilyCourses, id, err)
	}

	e := &hook.Event[record.Course]{Kind: record.KindDeleted, Record: original, Original: original.Clone()}
	err = a.courses.Deleted.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.Course]) error {
		return a.records.DeleteCourse(ctx, e.Record.ID)
	})
	if err != nil {
		return a.requestError("delete", record.FamilyCourses, id, err)
	}
	return nil
}

// CreateUser persists a new user and dispatches KindCreated.
func (a *App) CreateUser(ctx context.Context, u record.User) (record.User, error) {
	u.ID = record.NormalizeID(u.ID)
	e := &hook.Event[record.User]{Kind: record.KindCreated, Record: u}
	err := a.users.Created.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.User]) error {
		created, err := a.records.CreateUser(ctx, e.Record)
		if err != nil {
			return err
		}
		e.Record = created
		return nil
	})
	if err != nil {
		return record.User{}, a.requestError("create", record.FamilyUsers, e.Record.ID, err)
	}
	return e.Record, nil
}

// UpdateUser persists changes to an existing user and dispatches KindUpdated.
func (a *App) UpdateUser(ctx context.Context, u record.User) (record.User, error) {
	u.ID = record.NormalizeID(u.ID)
	original, err := a.records.FindUser(ctx, u.ID)
	if err != nil {
		return record.User{}, a.requestError("update", record.FamilyUsers, u.ID, err)
	}

	e := &hook.Event[record.User]{Kind: record.KindUpdated, Record: u, Original: original}
	err = a.users.Updated.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.User]) error {
		return a.records.SaveUser(ctx, e.Record)
	})
	if err != nil {
		return record.User{}, a.requestError("update", record.FamilyUsers, u.ID, err)
	}
	return e.Record, nil
}

// DeleteUser removes a user and dispatches KindDeleted with the removed record.
func (a *App) DeleteUser(ctx context.Context, id string) error {
	id = record.NormalizeID(id)
	original, err := a.records.FindUser(ctx, id)
	if err != nil {
		return a.requestError("delete", record.FamilyUsers, id, err)
	}

	e := &hook.Event[record.User]{Kind: record.KindDeleted, Record: original, Original: original}
	err = a.users.Deleted.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.User]) error {
		return a.records.DeleteUser(ctx, e.Record.ID)
	})
	if err != nil {
		return a.requestError("delete", record.FamilyUsers, id, err)
	}
	return nil
}

// CreateProgress persists a new progress record and dispatches KindCreated.
// An empty status defaults to record.StatusNotStarted.
func (a *App) CreateProgress(ctx context.Context, p record.Progress) (record.Progress, error) {
	p = normalizeProgress(p)
	if p.Status == "" {
		p.Status = record.StatusNotStarted
	}

	e := &hook.Event[record.Progress]{Kind: record.KindCreated, Record: p}
	err := a.progress.Created.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.Progress]) error {
		created, err := a.records.CreateProgress(ctx, e.Record)
		if err != nil {
			return err
		}
		e.Record = created
		return nil
	})
	if err != nil {
		return record.Progress{}, a.requestError("create", record.FamilyProgress, e.Record.ID, err)
	}
	return e.Record, nil
}

// UpdateProgress persists changes to an existing progress record and
// dispatches KindUpdated with the stored record as Original.
func (a *App) UpdateProgress(ctx context.Context, p record.Progress) (record.Progress, error) {
	p = normalizeProgress(p)
	original, err := a.records.FindProgress(ctx, p.ID)
	if err != nil {
		return record.Progress{}, a.requestError("update", record.FamilyProgress, p.ID, err)
	}

	e := &hook.Event[record.Progress]{Kind: record.KindUpdated, Record: p, Original: original}
	err = a.progress.Updated.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.Progress]) error {
		return a.records.SaveProgress(ctx, e.Record)
	})
	if err != nil {
		return record.Progress{}, a.requestError("update", record.FamilyProgress, p.ID, err)
	}
	return e.Record, nil
}

// DeleteProgress removes a progress record and dispatches KindDeleted. The
// handlers receive the removed record, so its fields stay readable after deletion.
func (a *App) DeleteProgress(ctx context.Context, id string) error {
	id = record.NormalizeID(id)
	original, err := a.records.FindProgress(ctx, id)
	if err != nil {
		return a.requestError("delete", record.FamilyProgress, id, err)
	}

	e := &hook.Event[record.Progress]{Kind: record.KindDeleted, Record: original, Original: original}
	err = a.progress.Deleted.Trigger(ctx, e, func(ctx context.Context, e *hook.Event[record.Progress]) error {
		return a.records.DeleteProgress(ctx, e.Record.ID)
	})
	if err != nil {
		return a.requestError("delete", record.FamilyProgress, id, err)
	}
	return nil
}

func (a *App) requestError(op string, family record.Family, id string, err error) error {
	a.logger.Warn("request failed",
		zap.String("op", op),
		zap.String("family", string(family)),
		zap.String("id", id),
		zap.Error(err))
	if id == "" {
		return fmt.Errorf("%s %s: %w", op, family, err)
	}
	return fmt.Errorf("%s %s %q: %w", op, family, id, err)
}

func normalizeCourse(c record.Course) record.Course {
	c.ID = record.NormalizeID(c.ID)
	c.Assignees = record.NormalizeIDs(c.Assignees)
	return c
}

func normalizeProgress(p record.Progress) record.Progress {
	p.ID = record.NormalizeID(p.ID)
	p.Course = record.NormalizeID(p.Course)
	p.Assignee = record.NormalizeID(p.Assignee)
	return p
}
