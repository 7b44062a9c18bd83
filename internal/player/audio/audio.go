// Package audio abstracts narration playback behind a small Source/Track
// contract so the player core can be driven by a real speaker or by a
// scripted fake in tests.
package audio

// DoneFunc reports the terminal outcome of one playing track: nil on
// natural completion, non-nil when the media fails mid-play. It fires at
// most once and never after Track.Stop.
type DoneFunc func(err error)

// Source opens narration tracks identified by an opaque audio ref (a URL or
// local file path). Play begins playback asynchronously; an immediate error
// means playback never started.
type Source interface {
	Play(ref string, done DoneFunc) (Track, error)
}

// Track is one bound playback session. Stop pauses and rewinds
// synchronously; after Stop the track's DoneFunc will not fire.
type Track interface {
	Stop()
}
