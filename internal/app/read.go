package app

import (
	"context"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// Course returns the course with id.
func (a *App) Course(ctx context.Context, id string) (record.Course, error) {
	return a.records.FindCourse(ctx, record.NormalizeID(id))
}

// Courses returns every course in creation order.
func (a *App) Courses(ctx context.Context) ([]record.Course, error) {
	return a.records.FindCourses(ctx, store.CourseFilter{})
}

// Users returns every user in creation order.
func (a *App) Users(ctx context.Context) ([]record.User, error) {
	return a.records.FindUsers(ctx)
}

// Progress returns the progress record with id.
func (a *App) Progress(ctx context.Context, id string) (record.Progress, error) {
	return a.records.FindProgress(ctx, record.NormalizeID(id))
}

// ProgressRecords returns progress records matching filter in creation order.
func (a *App) ProgressRecords(ctx context.Context, filter store.ProgressFilter) ([]record.Progress, error) {
	filter.Course = record.NormalizeID(filter.Course)
	filter.Assignee = record.NormalizeID(filter.Assignee)
	return a.records.FindProgressRecords(ctx, filter)
}
