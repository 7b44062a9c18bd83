package audio

import (
	"crypto/md5"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/sirupsen/logrus"
)

// SpeakerSource plays mp3 narration through the system speaker. Remote refs
// are fetched once into a local cache keyed by a hash of the ref, so paging
// back and forth does not refetch.
type SpeakerSource struct {
	mu       sync.Mutex
	cacheDir string
	client   *http.Client
	rate     beep.SampleRate
}

func NewSpeakerSource(cacheDir string) *SpeakerSource {
	return &SpeakerSource{
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Play decodes the referenced mp3 and starts it on the speaker. done fires
// from the speaker goroutine when the stream drains; stopping the returned
// track suppresses it.
func (s *SpeakerSource) Play(ref string, done DoneFunc) (Track, error) {
	path, err := s.localPath(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open narration %s: %w", path, err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode narration %s: %w", path, err)
	}

	s.mu.Lock()
	if s.rate == 0 {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			s.mu.Unlock()
			streamer.Close()
			return nil, fmt.Errorf("init speaker: %w", err)
		}
		s.rate = format.SampleRate
	}
	t := &speakerTrack{streamer: streamer}
	var stream beep.Streamer = streamer
	if format.SampleRate != s.rate {
		stream = beep.Resample(4, format.SampleRate, s.rate, streamer)
	}
	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		t.finish(done)
	})))
	s.mu.Unlock()

	return t, nil
}

// localPath resolves a ref to a playable file, fetching http(s) refs into
// the cache first.
func (s *SpeakerSource) localPath(ref string) (string, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("create audio cache dir: %w", err)
	}

	name := fmt.Sprintf("%x.mp3", md5.Sum([]byte(ref)))
	path := filepath.Join(s.cacheDir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	logrus.WithField("ref", ref).Debug("fetching narration audio")
	resp, err := s.client.Get(ref)
	if err != nil {
		return "", fmt.Errorf("fetch narration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch narration: HTTP %d", resp.StatusCode)
	}

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("cache narration: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("cache narration: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("cache narration: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("cache narration: %w", err)
	}
	return path, nil
}

type speakerTrack struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	stopped  bool
}

func (t *speakerTrack) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	// Clear drops the queued streamer without draining it, so the
	// completion callback never fires for a stopped track.
	speaker.Clear()
	t.streamer.Close()
}

func (t *speakerTrack) finish(done DoneFunc) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	t.streamer.Close()
	if done != nil {
		done(nil)
	}
}
