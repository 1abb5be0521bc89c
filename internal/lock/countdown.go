package lock

import (
	"time"

	"github.com/swanny246/TuroApp/pkg/clock"
)

// CountdownScheduler times the gap between an accepted trigger and the
// lock. Interrupts are detected by the engine; the scheduler only owns
// the timers.
type CountdownScheduler struct {
	timers *timerSet
}

func NewCountdownScheduler(c clock.Clock) *CountdownScheduler {
	return &CountdownScheduler{timers: newTimerSet(c)}
}

// Start arms the channel's countdown to call activate at deadline,
// superseding any countdown already running for it.
func (s *CountdownScheduler) Start(channelID string, deadline time.Time, activate func()) {
	s.timers.arm(channelID, deadline, activate)
}

// Cancel stops the channel's countdown, reporting whether one was stopped
// before it fired.
func (s *CountdownScheduler) Cancel(channelID string) bool {
	return s.timers.cancel(channelID)
}

// Deadline returns when the channel's pending countdown expires.
func (s *CountdownScheduler) Deadline(channelID string) (time.Time, bool) {
	return s.timers.deadline(channelID)
}

func (s *CountdownScheduler) Active(channelID string) bool {
	_, ok := s.timers.deadline(channelID)
	return ok
}

// Len returns the number of armed countdowns.
func (s *CountdownScheduler) Len() int { return s.timers.len() }

// Stop cancels every countdown.
func (s *CountdownScheduler) Stop() { s.timers.stopAll() }
