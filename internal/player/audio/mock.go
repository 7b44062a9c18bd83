package audio

import "sync"

// Mock is a scripted Source for tests and --mock runs. Tracks finish only
// when the test (or nobody) says so.
type Mock struct {
	mu      sync.Mutex
	playErr error
	current *MockTrack
	plays   []string
}

func NewMock() *Mock {
	return &Mock{}
}

// FailNextPlay makes the next Play call reject with err.
func (m *Mock) FailNextPlay(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) Play(ref string, done DoneFunc) (Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays = append(m.plays, ref)
	if m.playErr != nil {
		err := m.playErr
		m.playErr = nil
		return nil, err
	}
	m.current = &MockTrack{done: done}
	return m.current, nil
}

// Plays returns every ref handed to Play, in order.
func (m *Mock) Plays() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.plays))
	copy(out, m.plays)
	return out
}

// Current returns the most recently started track, which may already be
// stopped or finished.
func (m *Mock) Current() *MockTrack {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// FinishCurrent simulates the current track draining naturally.
func (m *Mock) FinishCurrent() {
	if t := m.Current(); t != nil {
		t.finish(nil)
	}
}

// FailCurrent simulates a media error on the current track.
func (m *Mock) FailCurrent(err error) {
	if t := m.Current(); t != nil {
		t.finish(err)
	}
}

type MockTrack struct {
	mu      sync.Mutex
	done    DoneFunc
	stopped bool
}

func (t *MockTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.done = nil
}

// Stopped reports whether Stop was called before the track ended.
func (t *MockTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *MockTrack) finish(err error) {
	t.mu.Lock()
	done := t.done
	t.done = nil
	t.mu.Unlock()
	if done != nil {
		done(err)
	}
}
