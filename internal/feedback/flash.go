package feedback

import "time"

// Flash overlay defaults.
const (
	FlashPeak     = 0.3
	FlashDuration = 150 * time.Millisecond
)

// Flash is a full-screen overlay whose opacity jumps to a peak when
// triggered and fades linearly back to zero.
type Flash struct {
	peak     float64
	duration time.Duration
	start    time.Time
	active   bool
}

// NewFlash creates a flash with the given peak opacity and fade time.
func NewFlash(peak float64, duration time.Duration) *Flash {
	return &Flash{peak: peak, duration: duration}
}

// Trigger restarts the fade from the peak.
func (f *Flash) Trigger(now time.Time) {
	f.start = now
	f.active = true
}

// Opacity returns the overlay opacity at now.
func (f *Flash) Opacity(now time.Time) float64 {
	if !f.active {
		return 0
	}
	elapsed := now.Sub(f.start)
	if elapsed >= f.duration || f.duration <= 0 {
		f.active = false
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return f.peak * (1 - float64(elapsed)/float64(f.duration))
}

// Active reports whether the overlay may still be visible.
func (f *Flash) Active() bool {
	return f.active
}
