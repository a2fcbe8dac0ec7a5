// Package peck collapses candidate spikes from every modality into a single
// stream of debounced peck events.
package peck

import (
	"time"

	"github.com/tomz197/peckplay/internal/sensor"
)

// DefaultWindow is the minimum separation between two accepted pecks.
const DefaultWindow = 150 * time.Millisecond

// Event is one accepted peck. Seq is the ordering authority consumed by game
// modes: it starts at 1 and grows by one per accepted event.
type Event struct {
	Seq    uint64
	Source sensor.Source
	At     time.Time
}

// Debouncer is the single chokepoint every candidate spike passes through.
// It is not safe for concurrent use; the session loop owns it.
type Debouncer struct {
	window       time.Duration
	lastAccepted time.Time
	seq          uint64
}

// NewDebouncer creates a debouncer with the given window (DefaultWindow if
// window <= 0).
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window}
}

// Accept admits a candidate spike iff more than the window has elapsed since
// the previous accepted event. Rejections are silent.
func (d *Debouncer) Accept(candidate bool, src sensor.Source, now time.Time) (Event, bool) {
	if !candidate {
		return Event{}, false
	}
	if d.seq > 0 && now.Sub(d.lastAccepted) <= d.window {
		return Event{}, false
	}
	d.lastAccepted = now
	d.seq++
	return Event{Seq: d.seq, Source: src, At: now}, true
}

// Last returns the sequence number of the most recent accepted event, or 0.
func (d *Debouncer) Last() uint64 {
	return d.seq
}

// Window returns the debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Cursor remembers the last sequence number a consumer has processed, so a
// redraw or repeated tick never re-applies the same peck.
type Cursor struct {
	seen uint64
}

// NewCursor starts a cursor at seq; events up to and including it are
// considered already handled.
func NewCursor(seq uint64) Cursor {
	return Cursor{seen: seq}
}

// Advance returns true exactly once for every sequence number greater than
// the last one seen.
func (c *Cursor) Advance(seq uint64) bool {
	if seq <= c.seen {
		return false
	}
	c.seen = seq
	return true
}

// Seen returns the last processed sequence number.
func (c *Cursor) Seen() uint64 {
	return c.seen
}
