package scrollsync

import (
	"sort"
	"time"
)

// CancelFunc cancels a scheduled callback. Calling it after the callback ran
// or more than once is harmless.
type CancelFunc func()

// Scheduler defers work to the host's event loop. Callbacks must run on the
// same goroutine that calls into the manager.
type Scheduler interface {
	// RequestFrame runs fn before the next frame is drawn
	RequestFrame(fn func()) CancelFunc
	// AfterFunc runs fn once d has elapsed
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

type scheduled struct {
	fn        func()
	due       time.Duration
	seq       int
	cancelled bool
}

// ManualScheduler runs frames when the host calls RunFrames and timers when
// the host calls Advance. The interactive viewer drives it from its event
// loop; tests drive it directly.
type ManualScheduler struct {
	now    time.Duration
	seq    int
	frames []*scheduled
	timers []*scheduled
}

// NewManualScheduler creates a scheduler at time zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame queues fn for the next RunFrames call
func (s *ManualScheduler) RequestFrame(fn func()) CancelFunc {
	task := &scheduled{fn: fn, seq: s.next()}
	s.frames = append(s.frames, task)
	return func() { task.cancelled = true }
}

// AfterFunc queues fn to run once the clock passes now+d
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	task := &scheduled{fn: fn, due: s.now + d, seq: s.next()}
	s.timers = append(s.timers, task)
	return func() { task.cancelled = true }
}

// RunFrames runs the frame callbacks queued so far and returns how many ran.
// Frames requested by those callbacks wait for the next call.
func (s *ManualScheduler) RunFrames() int {
	frames := s.frames
	s.frames = nil
	ran := 0
	for _, task := range frames {
		if task.cancelled {
			continue
		}
		task.cancelled = true
		task.fn()
		ran++
	}
	return ran
}

// Advance moves the clock forward and runs every timer that became due, in
// due order. Returns how many ran.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.now += d
	ran := 0
	for {
		task := s.popDue()
		if task == nil {
			return ran
		}
		task.cancelled = true
		task.fn()
		ran++
	}
}

// Now returns the scheduler clock
func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of live frame and timer callbacks
func (s *ManualScheduler) Pending() (frames, timers int) {
	for _, task := range s.frames {
		if !task.cancelled {
			frames++
		}
	}
	for _, task := range s.timers {
		if !task.cancelled {
			timers++
		}
	}
	return frames, timers
}

func (s *ManualScheduler) popDue() *scheduled {
	live := s.timers[:0]
	for _, task := range s.timers {
		if !task.cancelled {
			live = append(live, task)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].due != s.timers[j].due {
			return s.timers[i].due < s.timers[j].due
		}
		return s.timers[i].seq < s.timers[j].seq
	})
	if len(s.timers) == 0 || s.timers[0].due > s.now {
		return nil
	}
	task := s.timers[0]
	s.timers = s.timers[1:]
	return task
}

func (s *ManualScheduler) next() int {
	s.seq++
	return s.seq
}
