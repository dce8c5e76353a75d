// Package store provides SQLite-backed durable storage for course, user and
// progress records. It is the record store adapter the consistency engine
// issues its compensating writes against.
//
// # Operations
//
//   - Point lookups by id (FindCourse, FindUser, FindProgress)
//   - Filtered lookups (FindCourses, FindProgressRecords, FindUsers, UserIDs)
//   - Create, save and delete per family
//   - RunInTransaction: a scoped handle whose writes commit atomically together
//
// Both *Store and the transaction handle implement Records, so code written
// against Records runs unchanged inside or outside a transaction.
//
// # Deterministic Results
//
// Every multi-row read orders by insertion (rowid ASC). Broadcast assignee
// lists therefore follow user creation order.
//
// # Validation
//
// Every create and save is checked by schema.Validator. A rejected record
// returns a *schema.ValidationError and nothing is written.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Two drivers are supported: "sqlite3" (github.com/mattn/go-sqlite3, cgo,
// default) and "sqlite" (modernc.org/sqlite, pure Go).
package store
