package lock

import (
	"sync"
	"time"

	"github.com/swanny246/TuroApp/pkg/clock"
)

// timerSet holds at most one armed timer per channel.
type timerSet struct {
	clock clock.Clock

	mu     sync.Mutex
	timers map[string]*armedTimer
}

type armedTimer struct {
	timer *clock.Timer
	at    time.Time
}

func newTimerSet(c clock.Clock) *timerSet {
	return &timerSet{clock: c, timers: make(map[string]*armedTimer)}
}

// arm replaces any timer of channelID with one firing fire at at. The
// entry is dropped before fire runs.
func (s *timerSet) arm(channelID string, at time.Time, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[channelID]; ok {
		prev.timer.Stop()
	}

	armed := &armedTimer{at: at}
	armed.timer = s.clock.AfterFunc(at.Sub(s.clock.Now()), func() {
		s.mu.Lock()
		if s.timers[channelID] == armed {
			delete(s.timers, channelID)
		}
		s.mu.Unlock()
		fire()
	})
	s.timers[channelID] = armed
}

// cancel stops the channel's timer. It reports false when there was none
// or it had already started firing.
func (s *timerSet) cancel(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	armed, ok := s.timers[channelID]
	if !ok {
		return false
	}
	delete(s.timers, channelID)
	return armed.timer.Stop()
}

func (s *timerSet) deadline(channelID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	armed, ok := s.timers[channelID]
	if !ok {
		return time.Time{}, false
	}
	return armed.at, true
}

func (s *timerSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *timerSet) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, armed := range s.timers {
		armed.timer.Stop()
		delete(s.timers, id)
	}
}
