package player

import (
	"testing"

	"talecanvas/internal/domain/storybook"
	"talecanvas/internal/player/audio"
)

func narratedBook(pageRefs ...string) *storybook.Storybook {
	book := &storybook.Storybook{
		ID:    "bk-1",
		Theme: "Space Adventure",
		Cover: storybook.Renderable{
			Success:      true,
			AudioURL:     "cover.mp3",
			AudioSuccess: true,
		},
	}
	for i, ref := range pageRefs {
		page := storybook.Page{PageNumber: i + 1, Text: "Once upon a time."}
		if ref != "" {
			page.AudioURL = ref
			page.AudioSuccess = true
		}
		book.Pages = append(book.Pages, page)
	}
	return book
}

func TestSessionResolvesAudioForCursorPosition(t *testing.T) {
	mock := audio.NewMock()
	s := NewSession(narratedBook("p1.mp3", "p2.mp3"), mock, Events{}, Options{Clock: newFakeClock()})

	if err := s.TogglePlayback(); err != nil {
		t.Fatalf("cover playback: %v", err)
	}
	s.GoForward()
	if err := s.TogglePlayback(); err != nil {
		t.Fatalf("page playback: %v", err)
	}

	got := mock.Plays()
	want := []string{"cover.mp3", "p1.mp3"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("plays = %v, want %v", got, want)
	}
}

func TestSessionSilentPageHasNoAudioRef(t *testing.T) {
	mock := audio.NewMock()
	s := NewSession(narratedBook(""), mock, Events{}, Options{Clock: newFakeClock()})
	s.GoForward()

	if err := s.TogglePlayback(); err == nil {
		t.Fatal("expected an error starting narration on a silent page")
	}
	if len(mock.Plays()) != 0 {
		t.Errorf("plays = %v, want none", mock.Plays())
	}
}

func TestManualNavStopsPlaybackWhenAutoplayInactive(t *testing.T) {
	mock := audio.NewMock()
	s := NewSession(narratedBook("p1.mp3"), mock, Events{}, Options{Clock: newFakeClock()})

	if err := s.TogglePlayback(); err != nil {
		t.Fatal(err)
	}
	track := mock.Current()
	s.GoForward()

	if !track.Stopped() {
		t.Error("manual navigation should stop the running narration")
	}
	if s.Playback.State() != StateStopped {
		t.Errorf("playback = %v, want stopped", s.Playback.State())
	}
	if len(mock.Plays()) != 1 {
		t.Errorf("navigation alone must not start narration, plays = %v", mock.Plays())
	}
}

func TestManualNavDoesNotDisturbAutoplay(t *testing.T) {
	mock := audio.NewMock()
	clock := newFakeClock()
	s := NewSession(narratedBook("p1.mp3", "p2.mp3"), mock, Events{}, Options{Clock: clock})
	s.GoForward() // page 1

	s.ToggleAutoplay()
	track := mock.Current()
	s.GoForward() // reader skips ahead mid-narration

	if !s.Autoplay.IsActive() {
		t.Error("manual navigation must not deactivate autoplay")
	}
	if track.Stopped() {
		t.Error("manual navigation must not stop narration while autoplay runs")
	}
}

func TestToggleAutoplayFlips(t *testing.T) {
	mock := audio.NewMock()
	s := NewSession(narratedBook("p1.mp3"), mock, Events{}, Options{Clock: newFakeClock()})
	s.GoForward()

	s.ToggleAutoplay()
	if !s.Autoplay.IsActive() {
		t.Fatal("first toggle should activate")
	}
	s.ToggleAutoplay()
	if s.Autoplay.IsActive() {
		t.Fatal("second toggle should deactivate")
	}
	if s.Playback.State() != StateStopped {
		t.Errorf("playback = %v after autoplay stop, want stopped", s.Playback.State())
	}
}

func TestTeardownSilencesSession(t *testing.T) {
	mock := audio.NewMock()
	clock := newFakeClock()
	s := NewSession(narratedBook("p1.mp3", "p2.mp3"), mock, Events{}, Options{Clock: clock})
	s.GoForward()
	s.ToggleAutoplay()
	mock.FinishCurrent() // completion schedules the page-turn continuation

	s.Teardown()
	clock.fire()
	clock.fire()

	if s.Book() != nil {
		t.Error("teardown should release the storybook")
	}
	if len(mock.Plays()) != 1 {
		t.Errorf("pending continuation fired after teardown, plays = %v", mock.Plays())
	}
	if s.Cursor.Current() != PositionPage(0) {
		t.Errorf("cursor moved after teardown, at %v", s.Cursor.Current())
	}
}

func TestLoadStorybookReplacesSessionWholesale(t *testing.T) {
	mock := audio.NewMock()
	clock := newFakeClock()
	var labels []string
	p := New(mock, Events{
		NavigationChanged: func(_, _ bool, label string) { labels = append(labels, label) },
	}, Options{Clock: clock})

	first := p.LoadStorybook(narratedBook("a1.mp3", "a2.mp3"))
	first.GoForward()
	first.ToggleAutoplay()
	mock.FinishCurrent() // pending page turn in the old session

	second := p.LoadStorybook(narratedBook("b1.mp3"))
	clock.fire()
	clock.fire()

	if p.Session() != second {
		t.Fatal("player should hand out the new session")
	}
	if first.Autoplay.IsActive() {
		t.Error("old session's autoplay should be torn down")
	}
	if !second.Cursor.Current().IsCover() {
		t.Errorf("new session starts at the cover, got %v", second.Cursor.Current())
	}
	for _, ref := range mock.Plays() {
		if ref == "a2.mp3" {
			t.Error("stale continuation from the replaced session started narration")
		}
	}
	if len(labels) == 0 || labels[len(labels)-1] != "Cover" {
		t.Errorf("load should announce the cover position, labels = %v", labels)
	}
}

func TestCurrentPage(t *testing.T) {
	s := NewSession(narratedBook("p1.mp3"), audio.NewMock(), Events{}, Options{Clock: newFakeClock()})

	if _, ok := s.CurrentPage(); ok {
		t.Error("cover position has no current page")
	}
	s.GoForward()
	page, ok := s.CurrentPage()
	if !ok || page.PageNumber != 1 {
		t.Errorf("CurrentPage = %+v, %v; want page 1", page, ok)
	}
}
