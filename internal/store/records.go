package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/schema"
)

// Records is the record store adapter surface shared by *Store and *Tx.
//
// Lookups of a missing id return an error wrapping ErrNotFound. Saves and
// deletes of a missing id do the same.
type Records interface {
	FindCourse(ctx context.Context, id string) (record.Course, error)
	FindCourses(ctx context.Context, filter CourseFilter) ([]record.Course, error)
	FindUser(ctx context.Context, id string) (record.User, error)
	FindUsers(ctx context.Context) ([]record.User, error)
	UserIDs(ctx context.Context) ([]string, error)
	FindProgress(ctx context.Context, id string) (record.Progress, error)
	FindProgressRecords(ctx context.Context, filter ProgressFilter) ([]record.Progress, error)

	CreateCourse(ctx context.Context, c record.Course) (record.Course, error)
	CreateUser(ctx context.Context, u record.User) (record.User, error)
	CreateProgress(ctx context.Context, p record.Progress) (record.Progress, error)

	SaveCourse(ctx context.Context, c record.Course) error
	SaveUser(ctx context.Context, u record.User) error
	SaveProgress(ctx context.Context, p record.Progress) error

	DeleteCourse(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	DeleteProgress(ctx context.Context, id string) error

	RunInTransaction(ctx context.Context, fn func(Records) error) error
}

// CourseFilter narrows FindCourses. Zero-value fields do not filter.
type CourseFilter struct {
	// AssignToEveryone, when set, matches the broadcast flag exactly.
	AssignToEveryone *bool

	// Assignee matches courses whose assignee set contains this user id.
	Assignee string
}

// Broadcast returns a filter matching courses with assign_to_everyone set.
func Broadcast() CourseFilter {
	on := true
	return CourseFilter{AssignToEveryone: &on}
}

// ProgressFilter narrows FindProgressRecords. Empty fields do not filter.
type ProgressFilter struct {
	Course   string
	Assignee string
}

// queries implements Records over any DBTX.
type queries struct {
	db        DBTX
	ids       record.IDGenerator
	validator *schema.Validator
	logger    *zap.Logger
}
