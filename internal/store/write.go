package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/record"
)

// CreateCourse inserts a new course. An empty id is replaced with a generated one.
// The course is validated first; a rejected course returns *schema.ValidationError.
func (q *queries) CreateCourse(ctx context.Context, c record.Course) (record.Course, error) {
	c = c.Clone()
	if c.ID == "" {
		c.ID = q.ids.NewID(record.FamilyCourses)
	}
	if err := q.validator.ValidateCourse(c); err != nil {
		return record.Course{}, err
	}

	assignees, err := marshalAssignees(c.Assignees)
	if err != nil {
		return record.Course{}, fmt.Errorf("create course: %w", err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO courses (id, assignees, assign_to_everyone)
		VALUES (?, ?, ?)
	`, c.ID, assignees, c.AssignToEveryone)
	if err != nil {
		return record.Course{}, fmt.Errorf("create course %q: %w", c.ID, err)
	}

	q.logger.Debug("course created", zap.String("course", c.ID), zap.Int("assignees", len(c.Assignees)))
	return c, nil
}

// CreateUser inserts a new user. An empty id is replaced with a generated one.
func (q *queries) CreateUser(ctx context.Context, u record.User) (record.User, error) {
	if u.ID == "" {
		u.ID = q.ids.NewID(record.FamilyUsers)
	}
	if err := q.validator.ValidateUser(u); err != nil {
		return record.User{}, err
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, name)
		VALUES (?, ?)
	`, u.ID, u.Name)
	if err != nil {
		return record.User{}, fmt.Errorf("create user %q: %w", u.ID, err)
	}

	q.logger.Debug("user created", zap.String("user", u.ID))
	return u, nil
}

// CreateProgress inserts a new progress record. An empty id is replaced with a generated one.
func (q *queries) CreateProgress(ctx context.Context, p record.Progress) (record.Progress, error) {
	if p.ID == "" {
		p.ID = q.ids.NewID(record.FamilyProgress)
	}
	if err := q.validator.ValidateProgress(p); err != nil {
		return record.Progress{}, err
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO progress (id, course, assignee, status)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Course, p.Assignee, p.Status)
	if err != nil {
		return record.Progress{}, fmt.Errorf("create progress %q: %w", p.ID, err)
	}

	q.logger.Debug("progress created",
		zap.String("progress", p.ID),
		zap.String("course", p.Course),
		zap.String("assignee", p.Assignee))
	return p, nil
}

// SaveCourse overwrites an existing course.
// Returns an error wrapping ErrNotFound if the course does not exist.
func (q *queries) SaveCourse(ctx context.Context, c record.Course) error {
	if err := q.validator.ValidateCourse(c); err != nil {
		return err
	}

	assignees, err := marshalAssignees(c.Assignees)
	if err != nil {
		return fmt.Errorf("save course: %w", err)
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE courses
		SET assignees = ?, assign_to_everyone = ?
		WHERE id = ?
	`, assignees, c.AssignToEveryone, c.ID)
	if err != nil {
		return fmt.Errorf("save course %q: %w", c.ID, err)
	}
	return requireAffected(res, "course", c.ID)
}

// SaveUser overwrites an existing user.
func (q *queries) SaveUser(ctx context.Context, u record.User) error {
	if err := q.validator.ValidateUser(u); err != nil {
		return err
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?
		WHERE id = ?
	`, u.Name, u.ID)
	if err != nil {
		return fmt.Errorf("save user %q: %w", u.ID, err)
	}
	return requireAffected(res, "user", u.ID)
}

// SaveProgress overwrites an existing progress record, identity fields included.
// Identity protection is the engine's concern, not the store's.
func (q *queries) SaveProgress(ctx context.Context, p record.Progress) error {
	if err := q.validator.ValidateProgress(p); err != nil {
		return err
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE progress
		SET course = ?, assignee = ?, status = ?
		WHERE id = ?
	`, p.Course, p.Assignee, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("save progress %q: %w", p.ID, err)
	}
	return requireAffected(res, "progress", p.ID)
}

// DeleteCourse removes a course by id.
func (q *queries) DeleteCourse(ctx context.Context, id string) error {
	return q.deleteByID(ctx, "courses", "course", id)
}

// DeleteUser removes a user by id.
func (q *queries) DeleteUser(ctx context.Context, id string) error {
	return q.deleteByID(ctx, "users", "user", id)
}

// DeleteProgress removes a progress record by id.
func (q *queries) DeleteProgress(ctx context.Context, id string) error {
	return q.deleteByID(ctx, "progress", "progress", id)
}

// deleteByID deletes one row. table is a fixed identifier, never user input.
func (q *queries) deleteByID(ctx context.Context, table, noun, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", noun, id, err)
	}
	if err := requireAffected(res, noun, id); err != nil {
		return err
	}
	q.logger.Debug(noun+" deleted", zap.String("id", id))
	return nil
}

func requireAffected(res sql.Result, noun, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: rows affected: %w", noun, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", noun, id, ErrNotFound)
	}
	return nil
}
