package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/swanny246/TuroApp/pkg/clock"
)

func TestCountdownSchedulerSupersedes(t *testing.T) {
	c := clock.Fake(time.Unix(0, 0))
	s := NewCountdownScheduler(c)

	var fired []string
	s.Start("ch", c.Now().Add(5*time.Second), func() { fired = append(fired, "first") })
	s.Start("ch", c.Now().Add(10*time.Second), func() { fired = append(fired, "second") })

	deadline, ok := s.Deadline("ch")
	assert.True(t, ok)
	assert.Equal(t, c.Now().Add(10*time.Second), deadline)
	assert.Equal(t, 1, s.Len())

	c.Advance(10 * time.Second)
	assert.Equal(t, []string{"second"}, fired)
	assert.False(t, s.Active("ch"))
	assert.Zero(t, s.Len())
}

func TestCountdownSchedulerCancel(t *testing.T) {
	c := clock.Fake(time.Unix(0, 0))
	s := NewCountdownScheduler(c)

	called := false
	s.Start("ch", c.Now().Add(time.Second), func() { called = true })
	assert.True(t, s.Cancel("ch"))
	assert.False(t, s.Cancel("ch"))

	c.Advance(time.Minute)
	assert.False(t, called)
}

func TestAutoUnlockScheduler(t *testing.T) {
	c := clock.Fake(time.Unix(0, 0))
	s := NewAutoUnlockScheduler(c)

	fired := map[string]bool{}
	s.Schedule("a", c.Now().Add(time.Minute), func() { fired["a"] = true })
	s.Schedule("b", c.Now().Add(time.Hour), func() { fired["b"] = true })

	at, ok := s.UnlockAt("a")
	assert.True(t, ok)
	assert.Equal(t, c.Now().Add(time.Minute), at)

	c.Advance(time.Minute)
	assert.True(t, fired["a"])
	assert.False(t, fired["b"])
	assert.True(t, s.Active("b"))

	s.Stop()
	c.Advance(time.Hour)
	assert.False(t, fired["b"])
	assert.Zero(t, s.Len())
}
