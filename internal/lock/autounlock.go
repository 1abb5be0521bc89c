package lock

import (
	"time"

	"github.com/swanny246/TuroApp/pkg/clock"
)

// AutoUnlockScheduler arms the reversion of timed locks. Permanent locks
// never reach it.
type AutoUnlockScheduler struct {
	timers *timerSet
}

func NewAutoUnlockScheduler(c clock.Clock) *AutoUnlockScheduler {
	return &AutoUnlockScheduler{timers: newTimerSet(c)}
}

// Schedule arms unlock to run at unlockAt, replacing any earlier schedule
// for the channel. unlock must re-check the registry before acting.
func (s *AutoUnlockScheduler) Schedule(channelID string, unlockAt time.Time, unlock func()) {
	s.timers.arm(channelID, unlockAt, unlock)
}

func (s *AutoUnlockScheduler) Cancel(channelID string) bool {
	return s.timers.cancel(channelID)
}

// UnlockAt returns when the channel is due to auto-unlock.
func (s *AutoUnlockScheduler) UnlockAt(channelID string) (time.Time, bool) {
	return s.timers.deadline(channelID)
}

func (s *AutoUnlockScheduler) Active(channelID string) bool {
	_, ok := s.timers.deadline(channelID)
	return ok
}

func (s *AutoUnlockScheduler) Len() int { return s.timers.len() }

func (s *AutoUnlockScheduler) Stop() { s.timers.stopAll() }
