package player

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Default pacing between narration completion and the next page: a settle
// pause before the page turns, then a shorter pause before narration
// resumes, so the new page has rendered and the listener gets a breath.
const (
	DefaultSettleDelay = 1000 * time.Millisecond
	DefaultResumeDelay = 500 * time.Millisecond
)

// Autoplay chains narration completion into page advance and restart,
// staying cancelable at every step. It never touches the audio session
// directly; it only drives the Controller's public operations.
type Autoplay struct {
	mu      sync.Mutex
	active  bool
	pending func() // cancel for the one scheduled continuation, nil if none

	cursor   *Cursor
	playback *Controller
	clock    Scheduler
	settle   time.Duration
	resume   time.Duration

	onChange   func(active bool)
	onFinished func()
}

// NewAutoplay wires a coordinator over the session's cursor and controller.
func NewAutoplay(cursor *Cursor, playback *Controller, clock Scheduler, settle, resume time.Duration) *Autoplay {
	if clock == nil {
		clock = WallClock()
	}
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	if resume <= 0 {
		resume = DefaultResumeDelay
	}
	return &Autoplay{
		cursor:   cursor,
		playback: playback,
		clock:    clock,
		settle:   settle,
		resume:   resume,
	}
}

// OnChange registers the active-state observer. Call before use.
func (a *Autoplay) OnChange(fn func(bool)) { a.onChange = fn }

// OnFinished registers the end-of-book observer.
func (a *Autoplay) OnFinished(fn func()) { a.onFinished = fn }

func (a *Autoplay) IsActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Start activates autoplay and begins narrating from wherever the cursor
// already is; it does not advance on entry. No-op when already active or
// when there is no storybook to narrate.
func (a *Autoplay) Start() {
	a.mu.Lock()
	if a.active || a.cursor == nil {
		a.mu.Unlock()
		return
	}
	a.active = true
	a.mu.Unlock()

	a.emitChange(true)
	// A start failure (no audio, rejected play) comes back through
	// HandlePlaybackError and deactivates us again.
	_ = a.playback.Start()
}

// Stop deactivates autoplay, cancels any pending continuation and stops
// playback. Safe to call at any time, in any state.
func (a *Autoplay) Stop() {
	changed := a.deactivate()
	a.playback.Stop()
	if changed {
		a.emitChange(false)
	}
}

// HandleCompleted reacts to a natural narration end. While active: schedule
// the settle pause, then advance, then the resume pause, then restart. At
// the last page: deactivate and report the book finished.
func (a *Autoplay) HandleCompleted() {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	if !a.cursor.CanGoForward() {
		a.active = false
		a.cancelPendingLocked()
		a.mu.Unlock()
		a.emitChange(false)
		a.emitFinished()
		return
	}
	a.scheduleLocked(a.settle, a.advance)
	a.mu.Unlock()
}

// HandlePlaybackError is the policy for narration failures mid-sequence:
// deactivate and report the run finished rather than skipping ahead, so a
// book of broken audio cannot loop silently.
func (a *Autoplay) HandlePlaybackError(err error) {
	if !a.deactivate() {
		return
	}
	logrus.WithError(err).Info("autoplay stopped by playback failure")
	a.emitChange(false)
	a.emitFinished()
}

// advance is the first continuation: turn the page, then wait again before
// restarting narration.
func (a *Autoplay) advance() {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.pending = nil
	a.cursor.Forward()
	a.scheduleLocked(a.resume, a.restart)
	a.mu.Unlock()
}

// restart is the second continuation: begin narrating the new page.
func (a *Autoplay) restart() {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.pending = nil
	a.mu.Unlock()

	_ = a.playback.Start()
}

// scheduleLocked replaces the pending continuation. Caller holds a.mu; the
// fired fn re-checks active before acting.
func (a *Autoplay) scheduleLocked(d time.Duration, fn func()) {
	a.cancelPendingLocked()
	a.pending = a.clock.AfterFunc(d, fn)
}

func (a *Autoplay) cancelPendingLocked() {
	if a.pending != nil {
		a.pending()
		a.pending = nil
	}
}

// deactivate clears the mode flag and pending work, reporting whether it
// was active.
func (a *Autoplay) deactivate() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.active {
		a.cancelPendingLocked()
		return false
	}
	a.active = false
	a.cancelPendingLocked()
	return true
}

func (a *Autoplay) emitChange(active bool) {
	if a.onChange != nil {
		a.onChange(active)
	}
}

func (a *Autoplay) emitFinished() {
	if a.onFinished != nil {
		a.onFinished()
	}
}
