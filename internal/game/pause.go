package game

import "time"

// PauseClock accumulates the time spent in feedback and timeout windows so it
// can be excluded from the player's clock. The zero value is a running clock
// with nothing accumulated. Methods return a new value.
type PauseClock struct {
	paused      bool
	startedAt   time.Time
	accumulated time.Duration
}

// Begin opens a pause at now. Opening an already open pause keeps the
// original start.
func (p PauseClock) Begin(now time.Time) PauseClock {
	if p.paused {
		return p
	}
	p.paused = true
	p.startedAt = now
	return p
}

// End closes the open pause and folds its length into the total.
func (p PauseClock) End(now time.Time) PauseClock {
	if !p.paused {
		return p
	}
	p.accumulated += p.Ongoing(now)
	p.paused = false
	p.startedAt = time.Time{}
	return p
}

func (p PauseClock) Paused() bool {
	return p.paused
}

// StartedAt is the zero time when no pause is open.
func (p PauseClock) StartedAt() time.Time {
	return p.startedAt
}

// Accumulated is the length of all closed pauses.
func (p PauseClock) Accumulated() time.Duration {
	return p.accumulated
}

// Ongoing is the length of the open pause so far, or 0.
func (p PauseClock) Ongoing(now time.Time) time.Duration {
	if !p.paused {
		return 0
	}
	if d := now.Sub(p.startedAt); d > 0 {
		return d
	}
	return 0
}

// Total is closed pauses plus the open one.
func (p PauseClock) Total(now time.Time) time.Duration {
	return p.accumulated + p.Ongoing(now)
}
