package scrollsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualSchedulerFrames(t *testing.T) {
	s := NewManualScheduler()
	var order []string

	s.RequestFrame(func() { order = append(order, "a") })
	cancel := s.RequestFrame(func() { order = append(order, "b") })
	s.RequestFrame(func() {
		order = append(order, "c")
		s.RequestFrame(func() { order = append(order, "d") })
	})
	cancel()

	assert.Equal(t, 2, s.RunFrames())
	assert.Equal(t, []string{"a", "c"}, order)

	assert.Equal(t, 1, s.RunFrames())
	assert.Equal(t, []string{"a", "c", "d"}, order)
	assert.Zero(t, s.RunFrames())
}

func TestManualSchedulerTimers(t *testing.T) {
	s := NewManualScheduler()
	var order []string

	s.AfterFunc(30*time.Millisecond, func() { order = append(order, "late") })
	s.AfterFunc(10*time.Millisecond, func() {
		order = append(order, "early")
		s.AfterFunc(0, func() { order = append(order, "chained") })
	})
	cancel := s.AfterFunc(20*time.Millisecond, func() { order = append(order, "cancelled") })
	cancel()

	assert.Zero(t, s.Advance(5*time.Millisecond))
	assert.Equal(t, 2, s.Advance(15*time.Millisecond))
	assert.Equal(t, []string{"early", "chained"}, order)

	frames, timers := s.Pending()
	assert.Zero(t, frames)
	assert.Equal(t, 1, timers)

	assert.Equal(t, 1, s.Advance(time.Second))
	assert.Equal(t, []string{"early", "chained", "late"}, order)
	assert.Equal(t, 1020*time.Millisecond, s.Now())
}
