// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import "sync/atomic"

// StepClock numbers scenario steps 1, 2, 3, ... so that two runs of the same
// scenario produce identical traces. The zero value is ready to use.
//
// Thread-safety: safe for concurrent use.
type StepClock struct {
	seq atomic.Int64
}

// Tick advances the clock and returns the new step number.
func (c *StepClock) Tick() int64 {
	return c.seq.Add(1)
}

// Last returns the most recent step number, 0 before the first Tick.
func (c *StepClock) Last() int64 {
	return c.seq.Load()
}

// Reset rewinds the clock so the next Tick returns 1.
func (c *StepClock) Reset() {
	c.seq.Store(0)
}
