// Package engine implements the consistency engine that keeps courses, users
// and progress records in sync.
//
// A course's assignee set and the set of progress records for that course are
// two views of one relation. Either side may change through a request; the
// engine reacts after the request's write has committed and issues
// compensating writes against the store so both views agree again.
//
// HANDLERS (all bound as After stages):
//
//	courses  created  derive progress from assignees, resolving broadcast first
//	courses  updated  resolve broadcast, then create/delete progress for the delta
//	courses  deleted  delete the course's progress records
//	progress created  add the assignee to the course
//	progress updated  revert course/assignee to their original values
//	progress deleted  remove the assignee from the course (transactional)
//	users    created  join every broadcast course
//	users    deleted  leave every course, delete the user's progress
//
// ORDERING:
// Within one event the writes are issued in a fixed sequence: broadcast
// recomputation, delta computation, creates, deletes. Later steps read the
// output of earlier ones.
//
// CONSISTENCY:
// Only the progress-deleted cascade runs its read-modify-write of the course
// inside a transaction. The other handlers read then write without one and
// can lose updates when two events touch the same course concurrently.
// WithStrictTransactions moves those read-modify-writes into transactions too.
//
// IDEMPOTENCE:
// Membership checks precede every append and removals filter, so re-running
// any handler for the same event is a no-op.
//
// A referenced record that no longer exists is skipped silently. Any other
// store failure is returned as a *CascadeError and fails the request.
package engine
