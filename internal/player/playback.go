package player

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"talecanvas/internal/player/audio"
)

// ErrNoAudio means the current cover/page carries no narration. Reported to
// the listener, never fatal.
var ErrNoAudio = errors.New("no narration audio for this page")

// State is the playback state machine position.
type State int

const (
	StateStopped State = iota
	StateStarting
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// IsActive reports whether the state counts as "playing" for button
// affordance purposes; a starting session already shows as playing.
func (s State) IsActive() bool {
	return s == StateStarting || s == StatePlaying
}

// Controller owns the single narration session and is its sole mutator.
// It binds playback to "whatever the cursor currently points to" via the
// resolve func handed in at construction.
type Controller struct {
	mu      sync.Mutex
	source  audio.Source
	resolve func() string // audio ref for the current position, "" if none
	state   State
	track   audio.Track
	gen     uint64 // bumped on every stop/start; stale async events are discarded

	onChange    func(isPlaying bool)
	onCompleted func()
	onError     func(err error)
}

// NewController builds a stopped controller. resolve derives the current
// audio ref from cursor + storybook; the callbacks may be nil.
func NewController(source audio.Source, resolve func() string) *Controller {
	return &Controller{source: source, resolve: resolve}
}

// OnChange registers the is-playing observer. Call before use, not after.
func (c *Controller) OnChange(fn func(bool)) { c.onChange = fn }

// OnCompleted registers the natural-completion observer.
func (c *Controller) OnCompleted(fn func()) { c.onCompleted = fn }

// OnError registers the failure observer.
func (c *Controller) OnError(fn func(error)) { c.onError = fn }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsPlaying() bool {
	return c.State().IsActive()
}

// Toggle stops an active session or starts one for the current page.
func (c *Controller) Toggle() error {
	if c.IsPlaying() {
		c.Stop()
		return nil
	}
	return c.Start()
}

// Start tears down any existing session and begins playback of the current
// page's narration. The underlying start is asynchronous; failures surface
// through OnError and the return value, never as a panic.
func (c *Controller) Start() error {
	c.mu.Lock()
	ref := c.resolve()
	if ref == "" {
		c.mu.Unlock()
		c.Stop() // force a stable Stopped state whatever we were doing
		c.emitError(ErrNoAudio)
		return ErrNoAudio
	}

	// At most one session: supersede whatever is active.
	prev := c.track
	c.track = nil
	c.gen++
	gen := c.gen
	changed := !c.state.IsActive()
	c.state = StateStarting
	src := c.source
	c.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	if changed {
		c.emitChange(true)
	}

	track, err := src.Play(ref, func(err error) { c.sessionDone(gen, err) })

	c.mu.Lock()
	if gen != c.gen {
		// Superseded while the start was resolving; discard the late result.
		c.mu.Unlock()
		if track != nil {
			track.Stop()
		}
		return nil
	}
	if err != nil {
		c.state = StateStopped
		c.mu.Unlock()
		logrus.WithError(err).WithField("ref", ref).Warn("narration start rejected")
		c.emitChange(false)
		c.emitError(err)
		return err
	}
	c.track = track
	c.state = StatePlaying
	c.mu.Unlock()
	return nil
}

// Stop pauses and resets the session. Synchronous, idempotent, emits no
// completion event; distinguishes a user stop from a natural end.
func (c *Controller) Stop() {
	c.mu.Lock()
	track := c.track
	c.track = nil
	c.gen++
	changed := c.state != StateStopped
	c.state = StateStopped
	c.mu.Unlock()

	if track != nil {
		track.Stop()
	}
	if changed {
		c.emitChange(false)
	}
}

// sessionDone is the terminal event of one audio session. gen guards
// against a stale session finishing after it was superseded or stopped.
func (c *Controller) sessionDone(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.track = nil
	c.gen++
	c.state = StateStopped
	c.mu.Unlock()

	c.emitChange(false)
	if err != nil {
		logrus.WithError(err).Warn("narration playback failed")
		c.emitError(err)
		return
	}
	if c.onCompleted != nil {
		c.onCompleted()
	}
}

func (c *Controller) emitChange(playing bool) {
	if c.onChange != nil {
		c.onChange(playing)
	}
}

func (c *Controller) emitError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
