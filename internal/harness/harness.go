package harness

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/app"
	"github.com/roach88/coursesync/internal/engine"
	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
	"github.com/roach88/coursesync/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs steps through a dispatching app with the consistency engine bound.
type Harness struct {
	store  *store.Store
	app    *app.App
	clock  *testutil.StepClock
	logger *zap.Logger
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger *zap.Logger
	driver string
}

// WithLogger routes store, app and engine logs to l. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(o *runOptions) {
		o.logger = l
	}
}

// WithDriver selects the SQLite driver for the in-memory store.
func WithDriver(driver string) Option {
	return func(o *runOptions) {
		o.driver = driver
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Step and assertion failures are reported in the result; a non-nil error
// means the scenario could not be executed at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := runOptions{logger: zap.NewNop(), driver: store.DriverMattn}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := store.Open(":memory:",
		store.WithDriver(o.driver),
		store.WithIDGenerator(record.NewSequenceGenerator()),
		store.WithLogger(o.logger.Named("store")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	a := app.New(st, app.WithLogger(o.logger.Named("app")))
	engine.New(st,
		engine.WithLogger(o.logger.Named("engine")),
		engine.WithStrictTransactions(scenario.StrictTransactions),
	).Register(a)

	h := &Harness{
		store:  st,
		app:    a,
		clock:  &testutil.StepClock{},
		logger: o.logger,
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	for _, errMsg := range EvaluateAssertions(ctx, st, result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	state, err := snapshotState(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	result.State = state

	h.logger.Debug("scenario finished",
		zap.String("scenario", scenario.Name),
		zap.Bool("pass", result.Pass),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// executeStep runs one step, traces it, and records an error in result if
// its outcome differs from the step's expectation.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	seq := h.clock.Tick()
	id, err := h.dispatch(ctx, step)
	result.AddTrace(seq, step.Op, id, err)

	switch {
	case step.ExpectError == "" && err != nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Op, err))
	case step.ExpectError != "" && err == nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error containing %q, got success", index, step.Op, step.ExpectError))
	case step.ExpectError != "" && !strings.Contains(err.Error(), step.ExpectError):
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error containing %q, got: %v", index, step.Op, step.ExpectError, err))
	}
}

// dispatch makes the step's request and returns the id of the record it touched.
func (h *Harness) dispatch(ctx context.Context, step Step) (string, error) {
	switch step.Op {
	case OpCreateUser:
		u, err := h.app.CreateUser(ctx, record.User{ID: step.ID, Name: step.Name})
		return u.ID, err
	case OpUpdateUser:
		u, err := h.app.UpdateUser(ctx, record.User{ID: step.ID, Name: step.Name})
		return firstNonEmpty(u.ID, step.ID), err
	case OpDeleteUser:
		return step.ID, h.app.DeleteUser(ctx, step.ID)

	case OpCreateCourse:
		c, err := h.app.CreateCourse(ctx, stepCourse(step))
		return c.ID, err
	case OpUpdateCourse:
		c, err := h.app.UpdateCourse(ctx, stepCourse(step))
		return firstNonEmpty(c.ID, step.ID), err
	case OpDeleteCourse:
		return step.ID, h.app.DeleteCourse(ctx, step.ID)

	case OpCreateProgress:
		p, err := h.app.CreateProgress(ctx, record.Progress{
			ID:       step.ID,
			Course:   step.Course,
			Assignee: step.Assignee,
			Status:   step.Status,
		})
		return p.ID, err
	case OpUpdateProgress:
		p, err := findProgress(ctx, h.store, step.ID, step.Match)
		if err != nil {
			return step.ID, err
		}
		if step.Course != "" {
			p.Course = step.Course
		}
		if step.Assignee != "" {
			p.Assignee = step.Assignee
		}
		if step.Status != "" {
			p.Status = step.Status
		}
		_, err = h.app.UpdateProgress(ctx, p)
		return p.ID, err
	case OpDeleteProgress:
		p, err := findProgress(ctx, h.store, step.ID, step.Match)
		if err != nil {
			return step.ID, err
		}
		return p.ID, h.app.DeleteProgress(ctx, p.ID)
	}
	return step.ID, fmt.Errorf("unknown op %q", step.Op)
}

func stepCourse(step Step) record.Course {
	return record.Course{
		ID:               step.ID,
		Assignees:        step.Assignees,
		AssignToEveryone: step.AssignToEveryone,
	}
}

// findProgress loads a progress record by id, or by its first (course,
// assignee) match when id is empty.
func findProgress(ctx context.Context, records store.Records, id string, match *ProgressMatch) (record.Progress, error) {
	if id != "" {
		return records.FindProgress(ctx, id)
	}
	matches, err := records.FindProgressRecords(ctx, store.ProgressFilter{Course: match.Course, Assignee: match.Assignee})
	if err != nil {
		return record.Progress{}, err
	}
	if len(matches) == 0 {
		return record.Progress{}, fmt.Errorf("progress for course %q assignee %q: %w", match.Course, match.Assignee, store.ErrNotFound)
	}
	return matches[0], nil
}

// snapshotState reads every record in creation order.
func snapshotState(ctx context.Context, records store.Records) (State, error) {
	users, err := records.UserIDs(ctx)
	if err != nil {
		return State{}, err
	}
	courses, err := records.FindCourses(ctx, store.CourseFilter{})
	if err != nil {
		return State{}, err
	}
	progress, err := records.FindProgressRecords(ctx, store.ProgressFilter{})
	if err != nil {
		return State{}, err
	}
	return State{Users: users, Courses: courses, Progress: progress}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
