package simulator

import (
	"sync"
	"time"
)

// PollScheduler drives the bounded re-fetch loop that runs after a
// send produced no visible automated reply. One attempt fires per
// interval; attempts are strictly sequential (the next one is only
// scheduled after the previous poll returned). The whole loop is
// cancellable: a new send, an explicit reset or controller teardown
// must stop a pending fetch before it can overwrite newer state.
type PollScheduler struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewPollScheduler creates a scheduler firing at the given interval
func NewPollScheduler(interval time.Duration) *PollScheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &PollScheduler{interval: interval}
}

// Schedule cancels any pending loop and starts a new one with the
// given attempt budget. poll runs once per attempt and returns true
// to stop early (new data arrived, or the result went stale).
// Exhausting the budget is a silent give-up.
func (s *PollScheduler) Schedule(attempts int, poll func() bool) {
	if attempts <= 0 || poll == nil {
		return
	}

	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go s.run(stop, attempts, poll)
}

func (s *PollScheduler) run(stop chan struct{}, attempts int, poll func() bool) {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for remaining := attempts; remaining > 0; remaining-- {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		if poll() {
			s.finish(stop)
			return
		}

		if remaining > 1 {
			timer.Reset(s.interval)
		}
	}
	s.finish(stop)
}

// finish clears the stop handle if this loop still owns it
func (s *PollScheduler) finish(stop chan struct{}) {
	s.mu.Lock()
	if s.stop == stop {
		s.stop = nil
	}
	s.mu.Unlock()
}

// Cancel stops a pending loop. A poll already in flight has its
// result discarded by the caller's staleness guard; Cancel does not
// wait for it.
func (s *PollScheduler) Cancel() {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.mu.Unlock()
}

// Pending reports whether a poll loop is currently armed
func (s *PollScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}
