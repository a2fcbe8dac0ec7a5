// Package feedback turns accepted pecks into modality-agnostic reinforcement:
// a short synthesized tone and a full-screen flash.
package feedback

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
)

// Ramp moves a parameter from From to To over Over, then holds To.
type Ramp struct {
	From, To    float64
	Over        time.Duration
	Exponential bool // Exponential ramps need From and To of the same sign
}

// At returns the ramp value t into the ramp.
func (r Ramp) At(t time.Duration) float64 {
	if r.Over <= 0 || t >= r.Over {
		return r.To
	}
	if t <= 0 {
		return r.From
	}
	p := float64(t) / float64(r.Over)
	if r.Exponential && r.From*r.To > 0 {
		return r.From * math.Pow(r.To/r.From, p)
	}
	return r.From + (r.To-r.From)*p
}

// Tone is a single oscillator with frequency and gain envelopes.
type Tone struct {
	Wave     Wave
	Freq     Ramp // Hz
	Gain     Ramp // Linear amplitude
	Duration time.Duration
}

// Feedback tones.
var (
	// PeckTone answers sound-sourced pecks: a falling triangle chirp.
	PeckTone = Tone{
		Wave:     WaveTriangle,
		Freq:     Ramp{From: 800, To: 100, Over: 100 * time.Millisecond, Exponential: true},
		Gain:     Ramp{From: 0.5, To: 0.01, Over: 100 * time.Millisecond, Exponential: true},
		Duration: 100 * time.Millisecond,
	}

	// PopTone answers touch and motion pecks: a low square blip.
	PopTone = Tone{
		Wave:     WaveSquare,
		Freq:     Ramp{From: 200, To: 50, Over: 100 * time.Millisecond, Exponential: true},
		Gain:     Ramp{From: 0.3, To: 0.01, Over: 100 * time.Millisecond, Exponential: true},
		Duration: 100 * time.Millisecond,
	}

	// SuccessTone plays when a target is scored.
	SuccessTone = Tone{
		Wave:     WaveSine,
		Freq:     Ramp{From: 1200, To: 1800, Over: 100 * time.Millisecond},
		Gain:     Ramp{From: 0.3, To: 0, Over: 300 * time.Millisecond},
		Duration: 300 * time.Millisecond,
	}
)

// Streamer renders the tone at the given rate.
func (t Tone) Streamer(rate beep.SampleRate) beep.Streamer {
	return &toneStreamer{tone: t, rate: rate, total: rate.N(t.Duration)}
}

// toneStreamer generates the tone sample by sample.
type toneStreamer struct {
	tone     Tone
	rate     beep.SampleRate
	phase    float64
	position int
	total    int
}

func (s *toneStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.position >= s.total {
			return i, i > 0
		}

		elapsed := s.rate.D(s.position)
		val := s.tone.Gain.At(elapsed) * wave(s.tone.Wave, s.phase)
		samples[i][0] = val
		samples[i][1] = val

		s.phase += s.tone.Freq.At(elapsed) / float64(s.rate)
		s.phase -= math.Floor(s.phase) // Keep in [0, 1)
		s.position++
	}
	return len(samples), true
}

func (s *toneStreamer) Err() error { return nil }

func wave(w Wave, phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveTriangle:
		return 1 - 4*math.Abs(phase-0.5)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// withVolume scales a streamer by a linear volume in [0,1].
// math.Log2(0) is -Inf, so zero volume is mapped to silence.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
