// Package hook dispatches record lifecycle events to registered handlers.
//
// Each handler has two optional stages around the default persistence step:
// Before runs ahead of the write and may veto it by returning an error;
// After runs once the write has committed and receives the committed record
// together with its pre-event snapshot. Handlers run in registration order.
package hook

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/coursesync/internal/record"
)

// Event carries one lifecycle event for a record of type T.
//
// Record is the record being created, updated or deleted. After handlers may
// modify it; the caller of the triggering request sees the final value.
// Original is the pre-event snapshot for updates and deletes, and the zero
// value for creates. For deletes Record and Original are the same record.
type Event[T any] struct {
	Kind     record.Kind
	Record   T
	Original T
}

// Func handles one stage of an event.
type Func[T any] func(ctx context.Context, e *Event[T]) error

// Handler is a named pair of stages. Either stage may be nil.
type Handler[T any] struct {
	ID     string
	Before Func[T]
	After  Func[T]
}

// Hook holds the ordered handlers for one (family, kind) pair.
//
// Thread-safety: Bind and Trigger may be called from any goroutine. Trigger
// runs against a snapshot of the handlers bound when it started.
type Hook[T any] struct {
	mu       sync.RWMutex
	handlers []Handler[T]
}

// Bind appends h. Handlers run in the order they were bound.
func (h *Hook[T]) Bind(handler Handler[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, handler)
}

// BindAfter is shorthand for binding a handler with only an After stage.
func (h *Hook[T]) BindAfter(id string, fn Func[T]) {
	h.Bind(Handler[T]{ID: id, After: fn})
}

// Len returns the number of bound handlers.
func (h *Hook[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

// Trigger runs every Before stage, then persist, then every After stage.
// The first error stops the sequence and is returned wrapped with the
// handler id. An error from persist is returned unwrapped.
//
// A failing After stage does not undo persist: the primary write has already
// committed by then.
func (h *Hook[T]) Trigger(ctx context.Context, e *Event[T], persist Func[T]) error {
	h.mu.RLock()
	handlers := make([]Handler[T], len(h.handlers))
	copy(handlers, h.handlers)
	h.mu.RUnlock()

	for _, handler := range handlers {
		if handler.Before == nil {
			continue
		}
		if err := handler.Before(ctx, e); err != nil {
			return fmt.Errorf("%s: before %s: %w", handler.ID, e.Kind, err)
		}
	}

	if persist != nil {
		if err := persist(ctx, e); err != nil {
			return err
		}
	}

	for _, handler := range handlers {
		if handler.After == nil {
			continue
		}
		if err := handler.After(ctx, e); err != nil {
			return fmt.Errorf("%s: after %s: %w", handler.ID, e.Kind, err)
		}
	}

	return nil
}

// Set groups the created, updated and deleted hooks of one record family.
type Set[T any] struct {
	Created Hook[T]
	Updated Hook[T]
	Deleted Hook[T]
}

// On returns the hook for kind. Panics on an unknown kind: kinds are a
// closed set fixed at compile time.
func (s *Set[T]) On(kind record.Kind) *Hook[T] {
	switch kind {
	case record.KindCreated:
		return &s.Created
	case record.KindUpdated:
		return &s.Updated
	case record.KindDeleted:
		return &s.Deleted
	default:
		panic(fmt.Sprintf("hook: unknown event kind %q", kind))
	}
}
