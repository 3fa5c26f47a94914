package backend

import "time"

// RefreshState is the state of a RefreshScheduler.
type RefreshState int

const (
	RefreshIdle RefreshState = iota
	RefreshPending
	RefreshSuspended
)

func (s RefreshState) String() string {
	switch s {
	case RefreshIdle:
		return "idle"
	case RefreshPending:
		return "pending"
	case RefreshSuspended:
		return "suspended"
	}
	return "unknown"
}

// Decision tells the caller what to do with a refresh request.
type Decision int

const (
	// RefreshNow means the caller must fetch immediately.
	RefreshNow Decision = iota
	// RefreshDeferred means the request was folded into a pending refresh
	// that becomes due at Deadline.
	RefreshDeferred
	// RefreshHeld means refreshes are suspended; Resume will fetch.
	RefreshHeld
)

func (d Decision) String() string {
	switch d {
	case RefreshNow:
		return "now"
	case RefreshDeferred:
		return "deferred"
	case RefreshHeld:
		return "held"
	}
	return "unknown"
}

// RefreshScheduler coalesces full-refresh requests. Requests arriving within
// interval of the previous request collapse into one refresh fired interval
// after the latest of them; requests further apart run immediately. It holds
// no timers: callers arm their own timer from Deadline and report it with Due.
// It is not safe for concurrent use.
type RefreshScheduler struct {
	interval time.Duration
	state    RefreshState
	deadline time.Time
	last     time.Time
}

// NewRefreshScheduler returns an idle scheduler.
func NewRefreshScheduler(interval time.Duration) *RefreshScheduler {
	if interval < 0 {
		interval = 0
	}
	return &RefreshScheduler{interval: interval}
}

// State returns the current state.
func (s *RefreshScheduler) State() RefreshState {
	return s.state
}

// Interval returns the coalescing window.
func (s *RefreshScheduler) Interval() time.Duration {
	return s.interval
}

// Deadline returns when the pending refresh becomes due.
func (s *RefreshScheduler) Deadline() (time.Time, bool) {
	if s.state != RefreshPending {
		return time.Time{}, false
	}
	return s.deadline, true
}

// Request records a refresh request made at now.
func (s *RefreshScheduler) Request(now time.Time) Decision {
	if s.state == RefreshSuspended {
		s.last = now
		return RefreshHeld
	}
	recent := !s.last.IsZero() && now.Sub(s.last) < s.interval
	s.last = now
	if recent {
		s.state = RefreshPending
		s.deadline = now.Add(s.interval)
		return RefreshDeferred
	}
	s.state = RefreshIdle
	s.deadline = time.Time{}
	return RefreshNow
}

// Due reports whether a pending refresh should run at now, and if so moves
// back to idle.
func (s *RefreshScheduler) Due(now time.Time) bool {
	if s.state != RefreshPending || now.Before(s.deadline) {
		return false
	}
	s.state = RefreshIdle
	s.deadline = time.Time{}
	return true
}

// Suspend cancels any pending refresh and holds further requests until
// Resume.
func (s *RefreshScheduler) Suspend() {
	s.state = RefreshSuspended
	s.deadline = time.Time{}
}

// Resume leaves the suspended state and cancels anything pending. The caller
// must always perform one refresh afterwards.
func (s *RefreshScheduler) Resume() {
	s.state = RefreshIdle
	s.deadline = time.Time{}
}
