package player

import (
	"time"

	"github.com/sirupsen/logrus"

	"talecanvas/internal/domain/storybook"
	"talecanvas/internal/player/audio"
)

// Events is the presentation-facing surface: the rendering layer registers
// callbacks here and the player core drives them. Any field may be nil.
type Events struct {
	NavigationChanged    NavFunc
	PlaybackStateChanged func(isPlaying bool)
	AutoplayStateChanged func(isActive bool)
	AutoplayFinished     func()
	PlaybackError        func(err error)
}

// Options tunes a session. Zero values fall back to wall clock and the
// default pacing.
type Options struct {
	Clock       Scheduler
	SettleDelay time.Duration
	ResumeDelay time.Duration
}

// Session binds one loaded storybook to one cursor, one playback controller
// and one autoplay coordinator. A session is created per generated storybook
// and discarded whole when a new one replaces it.
type Session struct {
	book     *storybook.Storybook
	Cursor   *Cursor
	Playback *Controller
	Autoplay *Autoplay
	events   Events
}

// NewSession wires up the components around a freshly received storybook:
// cursor at the cover, playback stopped, autoplay inactive.
func NewSession(book *storybook.Storybook, source audio.Source, events Events, opts Options) *Session {
	s := &Session{book: book, events: events}

	s.Cursor = NewCursor(len(book.Pages), events.NavigationChanged)

	s.Playback = NewController(source, s.currentAudioRef)
	s.Playback.OnChange(func(playing bool) {
		if events.PlaybackStateChanged != nil {
			events.PlaybackStateChanged(playing)
		}
	})

	s.Autoplay = NewAutoplay(s.Cursor, s.Playback, opts.Clock, opts.SettleDelay, opts.ResumeDelay)
	s.Autoplay.OnChange(func(active bool) {
		if events.AutoplayStateChanged != nil {
			events.AutoplayStateChanged(active)
		}
	})
	s.Autoplay.OnFinished(func() {
		if events.AutoplayFinished != nil {
			events.AutoplayFinished()
		}
	})

	s.Playback.OnCompleted(s.Autoplay.HandleCompleted)
	s.Playback.OnError(func(err error) {
		if events.PlaybackError != nil {
			events.PlaybackError(err)
		}
		s.Autoplay.HandlePlaybackError(err)
	})

	return s
}

// Book returns the bound storybook, or nil after teardown.
func (s *Session) Book() *storybook.Storybook {
	return s.book
}

// currentAudioRef derives the narration handle for whatever the cursor
// points to right now.
func (s *Session) currentAudioRef() string {
	if s.book == nil {
		return ""
	}
	pos := s.Cursor.Current()
	if pos.IsCover() {
		return s.book.Cover.AudioRef()
	}
	if pos.Page() >= len(s.book.Pages) {
		return ""
	}
	return s.book.Pages[pos.Page()].AudioRef()
}

// CurrentPage returns the page under the cursor; ok is false at the cover.
func (s *Session) CurrentPage() (storybook.Page, bool) {
	pos := s.Cursor.Current()
	if s.book == nil || pos.IsCover() || pos.Page() >= len(s.book.Pages) {
		return storybook.Page{}, false
	}
	return s.book.Pages[pos.Page()], true
}

// GoBack navigates one step cover-ward. With autoplay inactive, a playing
// narration is stopped before the page changes so a detached track cannot
// follow the wrong page.
func (s *Session) GoBack() bool {
	s.stopForManualNav()
	return s.Cursor.Back()
}

// GoForward navigates one step toward the last page; same stop rule as
// GoBack.
func (s *Session) GoForward() bool {
	s.stopForManualNav()
	return s.Cursor.Forward()
}

// Manual navigation does not deactivate a running autoplay sequence; the
// coordinator only reacts to its own completion chain.
func (s *Session) stopForManualNav() {
	if !s.Autoplay.IsActive() {
		s.Playback.Stop()
	}
}

// TogglePlayback flips narration for the current page.
func (s *Session) TogglePlayback() error {
	return s.Playback.Toggle()
}

// ToggleAutoplay flips the self-narrating mode.
func (s *Session) ToggleAutoplay() {
	if s.Autoplay.IsActive() {
		s.Autoplay.Stop()
		return
	}
	s.Autoplay.Start()
}

// Teardown cancels pending autoplay work, stops playback and releases the
// book. Must complete before a replacement session is installed.
func (s *Session) Teardown() {
	s.Autoplay.Stop()
	s.Playback.Stop()
	s.book = nil
}

// Player owns the current session, replacing it wholesale whenever a new
// storybook arrives.
type Player struct {
	source  audio.Source
	events  Events
	opts    Options
	session *Session
}

func New(source audio.Source, events Events, opts Options) *Player {
	return &Player{source: source, events: events, opts: opts}
}

// LoadStorybook tears down the previous session, then installs a fresh one
// around book and announces the initial cover position.
func (p *Player) LoadStorybook(book *storybook.Storybook) *Session {
	if p.session != nil {
		p.session.Teardown()
	}
	logrus.WithFields(logrus.Fields{
		"id":    book.ID,
		"theme": book.Theme,
		"pages": len(book.Pages),
	}).Info("storybook loaded")

	p.session = NewSession(book, p.source, p.events, p.opts)
	if p.events.NavigationChanged != nil {
		c := p.session.Cursor
		p.events.NavigationChanged(c.CanGoBack(), c.CanGoForward(), c.Label())
	}
	return p.session
}

// Session returns the current session, nil before the first load.
func (p *Player) Session() *Session {
	return p.session
}
