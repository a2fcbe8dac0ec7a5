package mode

import "time"

// Interval fires every period while running. It is driven by the caller's
// tick clock, so a stopped interval never fires.
type Interval struct {
	period  time.Duration
	next    time.Time
	running bool
}

// NewInterval creates a stopped interval.
func NewInterval(period time.Duration) *Interval {
	return &Interval{period: period}
}

// Start schedules the first firing one period after now.
func (i *Interval) Start(now time.Time) {
	i.next = now.Add(i.period)
	i.running = true
}

// Stop cancels all future firings.
func (i *Interval) Stop() {
	i.running = false
}

// Running reports whether the interval is started.
func (i *Interval) Running() bool {
	return i.running
}

// Due returns how many firings elapsed up to and including now, and
// schedules the next one.
func (i *Interval) Due(now time.Time) int {
	if !i.running || i.period <= 0 {
		return 0
	}
	n := 0
	for !now.Before(i.next) {
		n++
		i.next = i.next.Add(i.period)
	}
	return n
}

// Delay fires once, d after it was started.
type Delay struct {
	d       time.Duration
	at      time.Time
	pending bool
}

// NewDelay creates an idle delay.
func NewDelay(d time.Duration) *Delay {
	return &Delay{d: d}
}

// Start (re)schedules the delay from now.
func (d *Delay) Start(now time.Time) {
	d.at = now.Add(d.d)
	d.pending = true
}

// Stop cancels a pending delay.
func (d *Delay) Stop() {
	d.pending = false
}

// Pending reports whether the delay is scheduled and has not fired.
func (d *Delay) Pending() bool {
	return d.pending
}

// Fired returns true exactly once, on the first call at or after the
// scheduled time.
func (d *Delay) Fired(now time.Time) bool {
	if !d.pending || now.Before(d.at) {
		return false
	}
	d.pending = false
	return true
}

// Remaining returns the time left before the delay fires, or 0.
func (d *Delay) Remaining(now time.Time) time.Duration {
	if !d.pending {
		return 0
	}
	return max(d.at.Sub(now), 0)
}
