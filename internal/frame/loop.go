package frame

import (
	"context"
	"sync"
	"time"
)

// Loop re-requests a frame callback after every step until stopped.
// The stop flag is checked before each step and before each re-request, so
// a stopped loop never steps again and leaves nothing scheduled.
//
// Stop from another goroutine does not wait for a step that is already
// running; wrap it in Window.Do when the caller needs that guarantee.
type Loop struct {
	sched Scheduler
	step  Callback

	mu      sync.Mutex
	handle  Handle
	stopped bool
	frames  uint64
}

// StartLoop schedules the first frame of a new loop and returns it.
func StartLoop(s Scheduler, step Callback) *Loop {
	l := &Loop{sched: s, step: step}
	l.mu.Lock()
	l.handle = s.RequestFrame(l.fire)
	l.mu.Unlock()
	return l
}

func (l *Loop) fire(now time.Time) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.handle = 0
	l.mu.Unlock()

	l.step(now)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames++
	if l.stopped {
		return
	}
	l.handle = l.sched.RequestFrame(l.fire)
}

// Stop cancels the outstanding frame request. It is safe to call more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	if l.handle != 0 {
		l.sched.CancelFrame(l.handle)
		l.handle = 0
	}
}

// Running reports whether the loop has not been stopped.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.stopped
}

// Frames is the number of completed steps.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Drive advances w every interval until ctx is done. It stands in for a
// display refresh when there is no display.
func Drive(ctx context.Context, w *Window, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			w.Advance(now)
		}
	}
}
