package client

import (
	"math"
	"time"

	"github.com/tomz197/peckplay/internal/peck"
	"github.com/tomz197/peckplay/internal/sensor"
)

// Pipeline runs one session's candidate spikes through the normalizer and
// the single debouncer in arrival order: queued motion samples carry the time
// they were received, so they go first, then this tick's taps and sound level.
type Pipeline struct {
	normalizer *sensor.Normalizer
	debouncer  *peck.Debouncer
	samples    []sensor.MotionSample
	events     []peck.Event

	level float64 // Last polled sound level (debug overlay)
	z     float64 // Last |z| seen (debug overlay)
}

// NewPipeline creates an inactive pipeline with the given debounce window.
func NewPipeline(window time.Duration) *Pipeline {
	return &Pipeline{
		normalizer: sensor.NewNormalizer(),
		debouncer:  peck.NewDebouncer(window),
	}
}

// SetActive gates sensing on the play surface being foreground.
func (p *Pipeline) SetActive(active bool) {
	p.normalizer.SetActive(active)
}

// Active reports whether the pipeline is sensing.
func (p *Pipeline) Active() bool {
	return p.normalizer.Active()
}

// Sense collects this tick's candidates and returns the accepted pecks. The
// returned slice is reused by the next call.
//
// Motion samples are always drained so a disabled modality never replays a
// backlog once it is re-enabled.
func (p *Pipeline) Sense(cfg sensor.DetectionConfig, taps int, motion *sensor.MotionSubscription, level float64, now time.Time) []peck.Event {
	p.events = p.events[:0]

	p.samples = p.samples[:0]
	if motion != nil {
		p.samples, _ = motion.Drain(p.samples)
	}
	if p.normalizer.PollMotion(cfg) {
		for _, s := range p.samples {
			p.z = math.Abs(s.Z)
			at := s.At
			if at.IsZero() || at.After(now) {
				at = now
			}
			p.accept(p.normalizer.Motion(cfg, s.Z), sensor.SourceMotion, at)
		}
	}

	for range taps {
		p.accept(p.normalizer.Touch(cfg), sensor.SourceTouch, now)
	}

	if p.normalizer.PollSound(cfg) {
		p.level = level
		p.accept(p.normalizer.Sound(cfg, level), sensor.SourceSound, now)
	} else {
		p.level = 0
	}

	return p.events
}

func (p *Pipeline) accept(candidate bool, src sensor.Source, at time.Time) {
	if ev, ok := p.debouncer.Accept(candidate, src, at); ok {
		p.events = append(p.events, ev)
	}
}

// Last returns the global peck counter.
func (p *Pipeline) Last() uint64 {
	return p.debouncer.Last()
}

// Readings returns the last sound level and |z| for the debug overlay.
func (p *Pipeline) Readings() (level, z float64) {
	return p.level, p.z
}
