package simulator

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerSingleAttempt(t *testing.T) {
	s := NewPollScheduler(5 * time.Millisecond)

	var calls int32
	s.Schedule(1, func() bool {
		atomic.AddInt32(&calls, 1)
		return false
	})

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1 && !s.Pending()
	}, time.Second, time.Millisecond, "one attempt then stop, regardless of outcome")

	// Give it headroom to prove no extra attempt fires.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSchedulerExhaustsBudget(t *testing.T) {
	s := NewPollScheduler(2 * time.Millisecond)

	var calls int32
	s.Schedule(4, func() bool {
		atomic.AddInt32(&calls, 1)
		return false
	})

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 4 && !s.Pending()
	}, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "silent give-up after the budget")
}

func TestSchedulerStopsEarlyOnSuccess(t *testing.T) {
	s := NewPollScheduler(2 * time.Millisecond)

	var calls int32
	s.Schedule(10, func() bool {
		return atomic.AddInt32(&calls, 1) == 2
	})

	assert.Eventually(t, func() bool {
		return !s.Pending() && atomic.LoadInt32(&calls) == 2
	}, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSchedulerCancelBeforeFirstFire(t *testing.T) {
	s := NewPollScheduler(50 * time.Millisecond)

	var calls int32
	s.Schedule(5, func() bool {
		atomic.AddInt32(&calls, 1)
		return false
	})

	s.Cancel()
	assert.False(t, s.Pending())

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "cancelled loop must never fire")
}

func TestSchedulerRescheduleReplacesPendingLoop(t *testing.T) {
	s := NewPollScheduler(50 * time.Millisecond)

	var first, second int32
	s.Schedule(5, func() bool {
		atomic.AddInt32(&first, 1)
		return false
	})
	s.Schedule(1, func() bool {
		atomic.AddInt32(&second, 1)
		return true
	})

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&second) == 1
	}, time.Second, time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first), "superseded loop must never fire")
}

func TestSchedulerIgnoresEmptyBudget(t *testing.T) {
	s := NewPollScheduler(time.Millisecond)
	s.Schedule(0, func() bool { return false })
	assert.False(t, s.Pending())
}
