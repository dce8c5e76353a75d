// Package harness runs YAML consistency scenarios against a fresh store.
//
// A scenario is a list of requests made through the dispatching request
// surface (so the consistency engine reacts to every one of them) followed
// by assertions on the settled state.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	strict_transactions: false
//	steps:
//	  - op: create_user
//	    id: u1
//	  - op: create_course
//	    id: c1
//	    assignees: [u1]
//	  - op: update_progress
//	    match: { course: c1, assignee: u1 }
//	    status: Done
//	  - op: delete_course
//	    id: missing
//	    expect_error: "not found"
//	assertions:
//	  - type: course_assignees
//	    course: c1
//	    assignees: [u1]
//	  - type: progress_count
//	    course: c1
//	    count: 1
//	  - type: progress
//	    match: { course: c1, assignee: u1 }
//	    status: Done
//	  - type: audit_clean
//
// # Step Operations
//
//   - create_user, update_user, delete_user: id, name
//   - create_course, update_course, delete_course: id, assignees, assign_to_everyone
//   - create_progress: id (optional), course, assignee, status
//   - update_progress, delete_progress: id or match; update applies any of
//     course, assignee, status that are set
//
// # Assertion Types
//
//   - course_assignees: the course's assignees equal the list, in order
//   - progress_count: number of progress records for course and/or assignee
//   - progress: the progress record selected by id or match exists and has
//     the given course, assignee and status (where set)
//   - audit_clean: the audit checker reports no violations
//
// # Deterministic Testing
//
// Every run uses an in-memory SQLite database, sequential record ids
// ("progress-0001", ...) and a step clock, so the same scenario always
// produces the same trace and final state. RunWithGolden compares both
// against testdata/golden.
package harness
