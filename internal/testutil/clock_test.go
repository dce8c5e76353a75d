package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepClock_ZeroValue(t *testing.T) {
	var clock StepClock
	assert.Equal(t, int64(0), clock.Last())
	assert.Equal(t, int64(1), clock.Tick())
	assert.Equal(t, int64(2), clock.Tick())
	assert.Equal(t, int64(2), clock.Last())
}

func TestStepClock_Reset(t *testing.T) {
	var clock StepClock
	clock.Tick()
	clock.Tick()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Last())
	assert.Equal(t, int64(1), clock.Tick())
}

func TestStepClock_Concurrent(t *testing.T) {
	var clock StepClock
	const goroutines, ticks = 20, 50

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range ticks {
				clock.Tick()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*ticks), clock.Last())
}
