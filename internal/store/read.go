package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/coursesync/internal/record"
)

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// FindCourse retrieves a single course by id.
// Returns an error wrapping ErrNotFound if the course does not exist.
func (q *queries) FindCourse(ctx context.Context, id string) (record.Course, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, assignees, assign_to_everyone
		FROM courses
		WHERE id = ?
	`, id)

	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Course{}, fmt.Errorf("course %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.Course{}, fmt.Errorf("find course %q: %w", id, err)
	}
	return c, nil
}

// FindCourses returns courses matching filter in insertion order.
// Returns an empty slice (not nil) if nothing matches.
func (q *queries) FindCourses(ctx context.Context, filter CourseFilter) ([]record.Course, error) {
	var (
		where []string
		args  []any
	)
	if filter.AssignToEveryone != nil {
		where = append(where, "assign_to_everyone = ?")
		args = append(args, *filter.AssignToEveryone)
	}
	if filter.Assignee != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(courses.assignees) WHERE json_each.value = ?)")
		args = append(args, filter.Assignee)
	}

	query := "SELECT id, assignees, assign_to_everyone FROM courses"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid ASC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	courses := []record.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, nil
}

// FindUser retrieves a single user by id.
// Returns an error wrapping ErrNotFound if the user does not exist.
func (q *queries) FindUser(ctx context.Context, id string) (record.User, error) {
	var u record.User
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name
		FROM users
		WHERE id = ?
	`, id).Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return record.User{}, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.User{}, fmt.Errorf("find user %q: %w", id, err)
	}
	return u, nil
}

// FindUsers returns every user in creation order.
func (q *queries) FindUsers(ctx context.Context) ([]record.User, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name
		FROM users
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []record.User{}
	for rows.Next() {
		var u record.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UserIDs returns the id of every user in creation order.
func (q *queries) UserIDs(ctx context.Context) ([]string, error) {
	users, err := q.FindUsers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// FindProgress retrieves a single progress record by id.
// Returns an error wrapping ErrNotFound if the record does not exist.
func (q *queries) FindProgress(ctx context.Context, id string) (record.Progress, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, course, assignee, status
		FROM progress
		WHERE id = ?
	`, id)

	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Progress{}, fmt.Errorf("progress %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.Progress{}, fmt.Errorf("find progress %q: %w", id, err)
	}
	return p, nil
}

// FindProgressRecords returns progress records matching filter in insertion order.
// Returns an empty slice (not nil) if nothing matches.
func (q *queries) FindProgressRecords(ctx context.Context, filter ProgressFilter) ([]record.Progress, error) {
	var (
		where []string
		args  []any
	)
	if filter.Course != "" {
		where = append(where, "course = ?")
		args = append(args, filter.Course)
	}
	if filter.Assignee != "" {
		where = append(where, "assignee = ?")
		args = append(args, filter.Assignee)
	}

	query := "SELECT id, course, assignee, status FROM progress"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid ASC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	records := []record.Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return records, nil
}

func scanCourse(row rowScanner) (record.Course, error) {
	var (
		c         record.Course
		assignees string
	)
	if err := row.Scan(&c.ID, &assignees, &c.AssignToEveryone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Course{}, err
		}
		return record.Course{}, fmt.Errorf("scan course: %w", err)
	}
	ids, err := unmarshalAssignees(assignees)
	if err != nil {
		return record.Course{}, fmt.Errorf("course %q: %w", c.ID, err)
	}
	c.Assignees = ids
	return c, nil
}

func scanProgress(row rowScanner) (record.Progress, error) {
	var p record.Progress
	if err := row.Scan(&p.ID, &p.Course, &p.Assignee, &p.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Progress{}, err
		}
		return record.Progress{}, fmt.Errorf("scan progress: %w", err)
	}
	return p, nil
}

// marshalAssignees encodes an assignee list as a JSON array. nil encodes as [].
func marshalAssignees(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("marshal assignees: %w", err)
	}
	return string(data), nil
}

func unmarshalAssignees(data string) ([]string, error) {
	ids := []string{}
	if data == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal assignees: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
