package player

import "time"

// Scheduler defers a continuation by a delay and hands back a cancel func.
// The wall-clock implementation wraps time.AfterFunc; tests substitute a
// manual one so the autoplay pacing can be stepped deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type wallScheduler struct{}

// WallClock returns the time.AfterFunc-backed scheduler.
func WallClock() Scheduler {
	return wallScheduler{}
}

func (wallScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
