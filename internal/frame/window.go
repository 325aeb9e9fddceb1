// Package frame provides the scheduling environment the hero renderer runs
// in: a per-frame callback scheduler, a resize notifier and a render loop
// that can be cancelled from outside.
//
// Window is the single concrete environment. The ebiten host advances it
// once per Update, the headless renderer advances it in a plain for loop and
// the preview server advances it from a ticker (see Drive).
package frame

import (
	"sort"
	"sync"
	"time"
)

// Handle identifies a requested frame callback or a resize listener.
// The zero Handle never refers to anything.
type Handle uint64

// Callback is invoked once per frame with the time of that frame.
type Callback func(now time.Time)

// Scheduler is the per-frame callback primitive.
type Scheduler interface {
	RequestFrame(cb Callback) Handle
	CancelFrame(h Handle)
}

// ResizeNotifier delivers viewport resize events.
type ResizeNotifier interface {
	AddResizeListener(fn func()) Handle
	RemoveResizeListener(h Handle)
}

// Window implements Scheduler and ResizeNotifier. Callbacks are never run
// concurrently with each other, whichever goroutines call Advance and Resize.
type Window struct {
	dispatch sync.Mutex // serializes callback execution

	mu        sync.Mutex
	next      Handle
	frames    map[Handle]Callback
	listeners map[Handle]func()
	dpr       float64
	fired     uint64
	resizes   uint64
}

// NewWindow returns an environment reporting the given device pixel ratio.
func NewWindow(dpr float64) *Window {
	return &Window{
		frames:    make(map[Handle]Callback),
		listeners: make(map[Handle]func()),
		dpr:       dpr,
	}
}

func (w *Window) handle() Handle {
	w.next++
	return w.next
}

func (w *Window) RequestFrame(cb Callback) Handle {
	if cb == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.frames[h] = cb
	return h
}

func (w *Window) CancelFrame(h Handle) {
	w.mu.Lock()
	delete(w.frames, h)
	w.mu.Unlock()
}

func (w *Window) AddResizeListener(fn func()) Handle {
	if fn == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.handle()
	w.listeners[h] = fn
	return h
}

func (w *Window) RemoveResizeListener(h Handle) {
	w.mu.Lock()
	delete(w.listeners, h)
	w.mu.Unlock()
}

// DevicePixelRatio reports the ratio of physical to logical pixels.
func (w *Window) DevicePixelRatio() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dpr
}

// SetDevicePixelRatio changes the reported ratio, e.g. when the window moves
// to another monitor. It does not fire resize listeners by itself.
func (w *Window) SetDevicePixelRatio(dpr float64) {
	w.mu.Lock()
	w.dpr = dpr
	w.mu.Unlock()
}

// Advance runs every frame callback requested before the call, in request
// order, and returns how many ran. Callbacks requested while dispatching are
// held for the next Advance. A callback cancelled by an earlier one in the
// same batch does not run.
func (w *Window) Advance(now time.Time) int {
	w.dispatch.Lock()
	defer w.dispatch.Unlock()

	w.mu.Lock()
	batch := make([]Handle, 0, len(w.frames))
	for h := range w.frames {
		batch = append(batch, h)
	}
	w.mu.Unlock()
	sort.Slice(batch, func(i, j int) bool { return batch[i] < batch[j] })

	ran := 0
	for _, h := range batch {
		w.mu.Lock()
		cb, ok := w.frames[h]
		delete(w.frames, h)
		if ok {
			w.fired++
		}
		w.mu.Unlock()
		if !ok {
			continue
		}
		cb(now)
		ran++
	}
	return ran
}

// Resize notifies every registered listener.
func (w *Window) Resize() {
	w.dispatch.Lock()
	defer w.dispatch.Unlock()

	w.mu.Lock()
	w.resizes++
	handles := make([]Handle, 0, len(w.listeners))
	for h := range w.listeners {
		handles = append(handles, h)
	}
	w.mu.Unlock()
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		w.mu.Lock()
		fn, ok := w.listeners[h]
		w.mu.Unlock()
		if ok {
			fn()
		}
	}
}

// Do runs fn serialized with callback dispatch, so fn observes state that
// frame and resize callbacks are not touching.
func (w *Window) Do(fn func()) {
	w.dispatch.Lock()
	defer w.dispatch.Unlock()
	fn()
}

// PendingFrames is the number of requested, not yet fired or cancelled, frame callbacks.
func (w *Window) PendingFrames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.frames)
}

// Listeners is the number of registered resize listeners.
func (w *Window) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// Fired is the total number of frame callbacks dispatched.
func (w *Window) Fired() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Resizes is the total number of resize notifications delivered.
func (w *Window) Resizes() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resizes
}
