package game

import "time"

// frameTap records the intervals between the last N updates into a ring
// buffer so the stats overlay can report the frame rate the hero actually got.
type frameTap struct {
	buffer    []time.Duration
	nextIndex int
	filled    int
	last      time.Time
}

func newFrameTap(ringSize int) *frameTap {
	if ringSize < 1 {
		ringSize = 1
	}
	return &frameTap{buffer: make([]time.Duration, ringSize)}
}

// record notes a frame at now. The first call only sets the reference point.
func (t *frameTap) record(now time.Time) {
	if !t.last.IsZero() {
		t.buffer[t.nextIndex] = now.Sub(t.last)
		t.nextIndex++
		if t.nextIndex >= len(t.buffer) {
			t.nextIndex = 0
		}
		if t.filled < len(t.buffer) {
			t.filled++
		}
	}
	t.last = now
}

// snapshot returns up to the last n intervals (most recent last).
func (t *frameTap) snapshot(n int) []time.Duration {
	if n > t.filled {
		n = t.filled
	}
	out := make([]time.Duration, 0, n)
	// Walk backwards from nextIndex - 1
	idx := t.nextIndex - 1
	if idx < 0 {
		idx = len(t.buffer) - 1
	}
	for i := 0; i < n; i++ {
		out = append(out, t.buffer[idx])
		idx--
		if idx < 0 {
			idx = len(t.buffer) - 1
		}
	}
	// reverse to chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// fps is the mean frame rate over the recorded window, 0 when nothing was recorded.
func (t *frameTap) fps() float64 {
	var total time.Duration
	for _, d := range t.snapshot(t.filled) {
		total += d
	}
	if total <= 0 {
		return 0
	}
	return float64(t.filled) / total.Seconds()
}
