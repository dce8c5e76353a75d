package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/coursesync/internal/record"
)

// CascadeError reports a compensating write that failed while handling an event.
// The triggering request's own write has already committed.
type CascadeError struct {
	// Handler identifies the handler that failed (e.g. HandlerCourseCreated).
	Handler string

	// Family and RecordID identify the record of the triggering event.
	Family   record.Family
	RecordID string

	Err error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade on %s %q: %v", e.Family, e.RecordID, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// IsCascadeError reports whether err wraps a *CascadeError.
func IsCascadeError(err error) bool {
	var ce *CascadeError
	return errors.As(err, &ce)
}
