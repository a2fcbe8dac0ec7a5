package feedback

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/peckplay/internal/peck"
	"github.com/tomz197/peckplay/internal/sensor"
)

// Dispatcher reacts to every accepted peck, whatever game mode is active.
type Dispatcher struct {
	player  Player
	flash   *Flash
	logger  *log.Logger
	enabled bool // Tones on; the flash always runs

	pecks   int
	sources map[sensor.Source]int
}

// NewDispatcher creates a dispatcher playing through player.
func NewDispatcher(player Player, logger *log.Logger, enabled bool) *Dispatcher {
	if player == nil {
		player = Mute{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		player:  player,
		flash:   NewFlash(FlashPeak, FlashDuration),
		logger:  logger,
		enabled: enabled,
		sources: make(map[sensor.Source]int),
	}
}

// ToneFor returns the cue for a peck source: sound pecks get their own
// chirp, every other source the pop.
func ToneFor(src sensor.Source) Tone {
	if src == sensor.SourceSound {
		return PeckTone
	}
	return PopTone
}

// OnPeck plays the source's tone and triggers the flash.
func (d *Dispatcher) OnPeck(ev peck.Event, now time.Time) {
	d.pecks++
	d.sources[ev.Source]++
	d.flash.Trigger(now)
	if d.enabled {
		d.player.Play(ToneFor(ev.Source))
	}
	d.logger.Debug("peck", "seq", ev.Seq, "source", ev.Source)
}

// OnScore plays the success tone.
func (d *Dispatcher) OnScore() {
	if d.enabled {
		d.player.Play(SuccessTone)
	}
}

// SetEnabled toggles tones.
func (d *Dispatcher) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// Enabled reports whether tones are on.
func (d *Dispatcher) Enabled() bool {
	return d.enabled
}

// Flash returns the overlay opacity at now.
func (d *Dispatcher) Flash(now time.Time) float64 {
	return d.flash.Opacity(now)
}

// Count returns how many pecks were dispatched, in total and for src.
func (d *Dispatcher) Count(src sensor.Source) (total, fromSource int) {
	return d.pecks, d.sources[src]
}
