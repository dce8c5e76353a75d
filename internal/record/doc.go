// Package record defines the three record families kept consistent by the
// engine: courses, users and progress.
//
// This package contains type definitions and pure helpers only. Every other
// internal package imports record; record imports nothing internal.
//
// Key constraints:
//   - Course.Assignees is stored as an ordered slice but is semantically a set
//   - Progress.Course and Progress.Assignee are identity fields, fixed at creation
//   - New progress records always start at StatusNotStarted
package record
